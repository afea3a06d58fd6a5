package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

var errBodyTooLarge = errors.New("request body too large")

// decodeBody turns a JSON or urlencoded body into the untyped record the form
// validator expects. Undecodable JSON yields nil rather than an error so the
// validator reports it as a malformed body.
func decodeBody(w http.ResponseWriter, r *http.Request, maxBytes int64) (any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return nil, classifyReadError(err)
		}
		record := make(map[string]any, len(r.PostForm))
		for key, values := range r.PostForm {
			if len(values) > 0 {
				record[key] = values[0]
			}
		}
		return record, nil
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, classifyReadError(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, nil
	}
	return body, nil
}

func classifyReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return fmt.Errorf("failed to read request body: %w", err)
}
