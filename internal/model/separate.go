package model

// SeparateRequest is the body of POST /apiv1/separate.
type SeparateRequest struct {
	MP3      string  `json:"mp3" validate:"required"`
	Callback *string `json:"callback"`
}

// SeparateResponse acknowledges a queued submission.
type SeparateResponse struct {
	Hash   string `json:"hash"`
	Reason string `json:"reason"`
}

// QueueResponse lists the ids of currently pending jobs, oldest first.
type QueueResponse struct {
	Queue []string `json:"queue"`
}

// RemoveResponse is the canned reply of the removal placeholder.
type RemoveResponse struct {
	Message string `json:"message"`
}
