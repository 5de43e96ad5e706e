package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"github.com/gorilla/mux"
)

const imageFormField = "image"

type presignRequest struct {
	Filename string `json:"filename"`
}

// uploadImage accepts a multipart form with the file in the "image" field.
func (s *HTTPServer) uploadImage(w http.ResponseWriter, r *http.Request) {
	// room for multipart framing on top of the file itself
	limit := s.maxUploadSize + 1<<20
	if r.ContentLength > limit {
		s.respondError(w, r, common.ErrUploadTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, common.ErrUploadTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", common.ErrInvalidUpload, err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(imageFormField)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: missing %q field", common.ErrInvalidUpload, imageFormField))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		// sniff from the first bytes
		buf := make([]byte, 512)
		n, _ := io.ReadFull(file, buf)
		contentType = http.DetectContentType(buf[:n])
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	up, err := s.uploads.UploadImage(r.Context(), currentUser(r), services.ImageFile{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, up)
}

// presignUpload returns a URL the client can PUT an image to. The body is
// optional.
func (s *HTTPServer) presignUpload(w http.ResponseWriter, r *http.Request) {
	var in presignRequest
	if err := decodeJSON(w, r, &in); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, r, err)
		return
	}

	up, err := s.uploads.GetPresignedPutUrl(r.Context(), in.Filename)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, up)
}

func (s *HTTPServer) imageRedirect(w http.ResponseWriter, r *http.Request) {
	url, err := s.uploads.GetPresignedGetUrl(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}
