package public

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

const multipartMemory = 8 << 20

type uploadedImage struct {
	Name string
	Data []byte
}

// uploadError is a client-fault rejection of a multipart upload.
type uploadError struct {
	status  int
	message string
}

// readImage parses the multipart body and returns the "image" part.
// missing is the message used when no image was sent.
func (h *Handler) readImage(w http.ResponseWriter, r *http.Request, missing string) (*uploadedImage, *uploadError) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &uploadError{status: http.StatusRequestEntityTooLarge, message: "Image file is too large"}
		}
		return nil, &uploadError{status: http.StatusBadRequest, message: missing}
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, &uploadError{status: http.StatusBadRequest, message: missing}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &uploadError{status: http.StatusBadRequest, message: "Failed to read the uploaded image"}
	}
	if len(data) == 0 {
		return nil, &uploadError{status: http.StatusBadRequest, message: missing}
	}
	return &uploadedImage{Name: header.Filename, Data: data}, nil
}

func imageExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".bmp":
		return ext
	}
	return ".jpg"
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
