package e2e

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsplitter/api/internal/identity"
)

func TestBanner(t *testing.T) {
	ta := setupApp(t, nil)

	resp, err := doRequest(ta.app, http.MethodGet, "/", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Music Separation REST API")
}

func TestSeparateReturnsHash(t *testing.T) {
	ta := setupApp(t, nil)

	payload := []byte{0x00, 0x01, 0x02, 0x03, 0xfe}
	body := `{"mp3": "` + base64.StdEncoding.EncodeToString(payload) + `", "callback": null}`

	resp, err := doRequest(ta.app, http.MethodPost, "/apiv1/separate", body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Hash   string `json:"hash"`
		Reason string `json:"reason"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, identity.Hash(payload), result.Hash)
	assert.Len(t, result.Hash, identity.HashLength)
	assert.Equal(t, "Song enqueued for separation", result.Reason)

	n, err := ta.queue.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSeparateRejectsBadBody(t *testing.T) {
	ta := setupApp(t, nil)

	cases := []struct {
		name string
		body string
	}{
		{"missing mp3", `{"callback": null}`},
		{"invalid base64", `{"mp3": "%%%%"}`},
		{"empty payload", `{"mp3": ""}`},
		{"not json", `not json at all`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := doRequest(ta.app, http.MethodPost, "/apiv1/separate", tc.body)
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var result struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
			assert.NotEmpty(t, result.Error)
		})
	}
}

func TestQueueListing(t *testing.T) {
	ta := setupApp(t, nil)

	resp, err := doRequest(ta.app, http.MethodGet, "/apiv1/queue", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var empty struct {
		Queue []string `json:"queue"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&empty))
	assert.Empty(t, empty.Queue)

	var wantHashes []string
	for _, p := range []string{"one", "two", "three"} {
		body := `{"mp3": "` + base64.StdEncoding.EncodeToString([]byte(p)) + `"}`
		resp, err := doRequest(ta.app, http.MethodPost, "/apiv1/separate", body)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		wantHashes = append(wantHashes, identity.Hash([]byte(p)))
	}

	resp, err = doRequest(ta.app, http.MethodGet, "/apiv1/queue", "")
	require.NoError(t, err)
	var listed struct {
		Queue []string `json:"queue"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.Equal(t, wantHashes, listed.Queue)
}

func TestTrackWithoutStorage(t *testing.T) {
	ta := setupApp(t, nil)

	resp, err := doRequest(ta.app, http.MethodGet, "/apiv1/track/abc123/vocals", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestTrackFetch(t *testing.T) {
	store := newMemStore()
	ta := setupApp(t, store)

	require.NoError(t, store.Put(context.Background(), "output", "abc123-vocals.mp3", []byte("fake mp3 bytes")))

	resp, err := doRequest(ta.app, http.MethodGet, "/apiv1/track/abc123/vocals", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "fake mp3 bytes", string(body))

	resp, err = doRequest(ta.app, http.MethodGet, "/apiv1/track/abc123/drums", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRemovePlaceholder(t *testing.T) {
	ta := setupApp(t, nil)

	resp, err := doRequest(ta.app, http.MethodGet, "/apiv1/remove/abc123", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, strings.Contains(result.Message, "abc123"))
}
