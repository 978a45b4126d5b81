package backend

import (
	"errors"
	"fmt"
)

// ErrMissingFilename is returned when an upload succeeds without naming the stored file
var ErrMissingFilename = errors.New("backend did not return a filename")

// UploadResponse represents the JSON body returned by /upload
type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// CurrentResponse represents the JSON body returned by /current
type CurrentResponse struct {
	CurrentFile *string `json:"current_file"`
	Message     string  `json:"message,omitempty"`
}

// AskResponse is the raw result of /ask. The body is either JSON or an image
// payload, depending on ContentType.
type AskResponse struct {
	ContentType string
	Body        []byte
}

// errorBody is the JSON shape the backend uses for failures
type errorBody struct {
	Message string `json:"message"`
	Detail  any    `json:"detail"`
}

// StatusError reports a non-success HTTP status from the backend
type StatusError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
}
