package model

import "encoding/json"

// JobEnvelope is the unit of work placed on the toWorker queue. The wire
// format round-trips the keys songhash, mp3 and callback verbatim; mp3 holds
// the base64-encoded audio payload.
type JobEnvelope struct {
	SongHash string  `json:"songhash"`
	MP3      string  `json:"mp3"`
	Callback *string `json:"callback"`
}

// Encode serializes the envelope for the queue.
func (e *JobEnvelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEnvelope parses a serialized envelope from the queue.
func DecodeEnvelope(data []byte) (*JobEnvelope, error) {
	var env JobEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Stem is one isolated audio component produced by the separation step.
type Stem string

const (
	StemBass   Stem = "bass"
	StemDrums  Stem = "drums"
	StemVocals Stem = "vocals"
	StemOther  Stem = "other"
)

// AllStems lists every stem the separator is expected to produce.
var AllStems = []Stem{StemBass, StemDrums, StemVocals, StemOther}

// ArtifactKey returns the object-store key for one stem of a job.
func ArtifactKey(jobID string, stem Stem) string {
	return jobID + "-" + string(stem) + ".mp3"
}

// ArtifactSet is the output of processing one job: the stems that were
// actually produced, keyed by stem name. Stems the separator failed to emit
// are simply absent.
type ArtifactSet struct {
	JobID string
	Stems map[Stem][]byte
}
