package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/service"
)

// maxUploadBytes caps document and receipt uploads at 10 MiB.
const maxUploadBytes = 10 << 20

func uploadHandler(svc *service.UploadService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/uploads/{folder}")
		defer span.End()

		folder := chi.URLParam(r, "folder")
		body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
		defer body.Close()

		path, err := svc.Upload(ctx, folder, r.Header.Get("Content-Type"), body)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"path": path})
	}
}
