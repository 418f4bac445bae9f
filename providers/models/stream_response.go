package models

// StreamResponse is one chunk of a streamed answer. Done marks the end of the stream.
type StreamResponse struct {
	Content string
	Err     error
	Done    bool
}

// AIError is the error body returned by chat endpoints.
type AIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
