package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	contentTypeHALJSON     = "application/hal+json"
	contentTypeJSON        = "application/json"
	contentTypeProblemJSON = "application/problem+json"
)

// jsonAPI ignores unknown input properties and renders indented output.
var jsonAPI = jsoniter.Config{
	IndentionStep:          2,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// writeJSON writes body with the given status code and content type.
func writeJSON(w http.ResponseWriter, status int, contentType string, body any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if body == nil {
		return
	}
	out, err := jsonAPI.Marshal(body)
	if err != nil {
		return
	}
	_, _ = w.Write(append(out, '\n'))
}

func decodeJSON(r io.Reader, v any) error {
	return jsonAPI.NewDecoder(r).Decode(v)
}

// Layouts accepted for timestamps in request bodies. Zone-less values are
// read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// jsonTime is a time.Time that also accepts zone-less ISO-8601 input.
type jsonTime struct {
	time.Time
}

var errEmptyTime = errors.New("timestamp must not be empty")

func (t *jsonTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		return errEmptyTime
	}
	var lastErr error
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed.UTC()
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t *jsonTime) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
