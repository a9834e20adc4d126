package validators

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
)

// MultipartFile is one uploaded file read fully into memory.
type MultipartFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadMultipartFile extracts the named file part from a multipart form.
// maxBytes bounds the whole request body; exceeding it yields a
// validation error rather than a connection reset.
func ReadMultipartFile(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (*MultipartFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file is too large").WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file part is missing").WithDetails(map[string]any{"field": field})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file is empty").WithDetails(map[string]any{"field": field})
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &MultipartFile{
		Name:        filepath.Base(strings.TrimSpace(header.Filename)),
		ContentType: contentType,
		Data:        data,
	}, nil
}
