package controllers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/roadtrack-backend/api/responses"
	"github.com/angelmondragon/roadtrack-backend/internal/uploads"
	pkgerrors "github.com/angelmondragon/roadtrack-backend/pkg/errors"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
)

type UploadService interface {
	Upload(ctx context.Context, folder string, files []uploads.File) ([]uploads.Result, error)
	FileURL(ctx context.Context, object string) (string, error)
}

// Upload stores every multipart "file" part under the requested folder. A single
// file answers {path, url}; several answer {files: [...]}.
func Upload(svc UploadService, maxMemory int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload service unavailable"))
			return
		}

		if err := r.ParseMultipartForm(maxMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		headers := r.MultipartForm.File["file"]
		if len(headers) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no file provided"))
			return
		}

		files := make([]uploads.File, 0, len(headers))
		for _, fh := range headers {
			files = append(files, fileFromHeader(fh))
		}

		results, err := svc.Upload(r.Context(), r.FormValue("folder"), files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if len(results) == 1 {
			responses.WriteSuccess(w, results[0])
			return
		}
		responses.WriteSuccess(w, map[string]any{"files": results})
	}
}

// FileURL answers a short lived signed URL for the object named by the wildcard.
func FileURL(svc UploadService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload service unavailable"))
			return
		}

		object := strings.TrimSpace(chi.URLParam(r, "*"))
		if object == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file path is required"))
			return
		}

		url, err := svc.FileURL(r.Context(), object)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"url": url})
	}
}

func fileFromHeader(fh *multipart.FileHeader) uploads.File {
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return uploads.File{
		Name:        fh.Filename,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
