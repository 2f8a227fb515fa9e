package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/form"
	"github.com/cuide-se/cuidese-api/internal/service"
)

// ============================================================
// Client intake drafts
// ============================================================

type draftResponse struct {
	DraftID string      `json:"draft_id"`
	Values  form.Values `json:"values"`
}

func openIntakeDraftHandler(svc *service.IntakeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/intake/clients")
		defer span.End()

		var in struct {
			ClientID string `json:"client_id"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		draftID, values, err := svc.OpenDraft(ctx, in.ClientID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, draftResponse{DraftID: draftID, Values: values})
	}
}

func setIntakeFieldsHandler(svc *service.IntakeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "PUT /v1/intake/clients/{draftId}")
		defer span.End()

		draftID := chi.URLParam(r, "draftId")
		span.SetAttributes(attribute.String("draft.id", draftID))

		var fields map[string]string
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		values, err := svc.SetFields(draftID, fields)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, draftResponse{DraftID: draftID, Values: values})
	}
}

func submitIntakeDraftHandler(svc *service.IntakeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/intake/clients/{draftId}/submit")
		defer span.End()

		draftID := chi.URLParam(r, "draftId")
		span.SetAttributes(attribute.String("draft.id", draftID))

		if err := svc.Submit(ctx, draftID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func discardIntakeDraftHandler(svc *service.IntakeService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "DELETE /v1/intake/clients/{draftId}")
		defer span.End()

		draftID := chi.URLParam(r, "draftId")
		span.SetAttributes(attribute.String("draft.id", draftID))

		if err := svc.Discard(draftID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
