package interpreter

import (
	"mime"
	"strings"

	"eda-client/internal/backend"
)

// DownloadFilename is the name image answers are saved under
const DownloadFilename = "grafico.png"

// Kind tells the render layer what to do with an outcome
type Kind int

const (
	TextOutcome Kind = iota
	DownloadOutcome
)

func (k Kind) String() string {
	switch k {
	case TextOutcome:
		return "text"
	case DownloadOutcome:
		return "download"
	default:
		return "unknown"
	}
}

// Result is a normalized textual answer
type Result struct {
	Answer      Answer
	DisplayText string
	Table       *Table // nil unless DisplayText is a JSON array
}

// Download is an image answer to be saved to disk
type Download struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// Outcome is the interpretation of one /ask response. Exactly one of
// Result and Download is set, matching Kind.
type Outcome struct {
	Kind     Kind
	Result   *Result
	Download *Download
}

// Interpret classifies a raw /ask response and normalizes it for display
func Interpret(resp *backend.AskResponse) Outcome {
	if IsImage(resp.ContentType) {
		return Outcome{
			Kind: DownloadOutcome,
			Download: &Download{
				Filename:    DownloadFilename,
				ContentType: resp.ContentType,
				Payload:     resp.Body,
			},
		}
	}

	return Outcome{Kind: TextOutcome, Result: interpretText(resp.Body)}
}

func interpretText(body []byte) *Result {
	r := &Result{}

	answer, err := DecodeAnswer(body)
	if err != nil {
		// not JSON: show what the backend sent
		r.DisplayText = strings.TrimSpace(string(body))
	} else {
		r.Answer = answer
		r.DisplayText = DisplayText(answer)
	}

	if t, ok := TryParseTable(r.DisplayText); ok {
		r.Table = t
	}

	return r
}

// IsImage reports whether a declared content type is a PNG image
func IsImage(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
		mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	}
	return mediaType == "image/png"
}
