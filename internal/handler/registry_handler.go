package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/service"
)

// ============================================================
// Clients
// ============================================================

func listClientsHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/clients")
		defer span.End()

		clients, err := svc.ListClients(ctx, parseListOptions(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if clients == nil {
			clients = []domain.Client{}
		}
		writeJSON(w, http.StatusOK, clients)
	}
}

func getClientHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/clients/{clientId}")
		defer span.End()

		client, err := svc.GetClient(ctx, chi.URLParam(r, "clientId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, client)
	}
}

func createClientHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/clients")
		defer span.End()

		var in domain.ClientInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		client, err := svc.CreateClient(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, client)
	}
}

func updateClientHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/clients/{clientId}")
		defer span.End()

		var in domain.ClientInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		client, err := svc.UpdateClient(ctx, chi.URLParam(r, "clientId"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, client)
	}
}

func deleteClientHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/clients/{clientId}")
		defer span.End()

		if err := svc.DeleteClient(ctx, chi.URLParam(r, "clientId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// ============================================================
// Professionals
// ============================================================

func listProfessionalsHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/professionals")
		defer span.End()

		pros, err := svc.ListProfessionals(ctx, parseListOptions(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if pros == nil {
			pros = []domain.Professional{}
		}
		writeJSON(w, http.StatusOK, pros)
	}
}

func getProfessionalHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/professionals/{professionalId}")
		defer span.End()

		pro, err := svc.GetProfessional(ctx, chi.URLParam(r, "professionalId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pro)
	}
}

func createProfessionalHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/professionals")
		defer span.End()

		var in domain.ProfessionalInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		pro, err := svc.CreateProfessional(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, pro)
	}
}

func updateProfessionalHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/professionals/{professionalId}")
		defer span.End()

		var in domain.ProfessionalInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		pro, err := svc.UpdateProfessional(ctx, chi.URLParam(r, "professionalId"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pro)
	}
}

func deleteProfessionalHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/professionals/{professionalId}")
		defer span.End()

		if err := svc.DeleteProfessional(ctx, chi.URLParam(r, "professionalId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// ============================================================
// Catalog: services & packages
// ============================================================

func listServicesHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/services")
		defer span.End()

		services, err := svc.ListServices(ctx, parseListOptions(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if services == nil {
			services = []domain.Service{}
		}
		writeJSON(w, http.StatusOK, services)
	}
}

func getServiceHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/services/{serviceId}")
		defer span.End()

		item, err := svc.GetService(ctx, chi.URLParam(r, "serviceId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func createServiceHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/services")
		defer span.End()

		var in domain.ServiceInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		item, err := svc.CreateService(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func updateServiceHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/services/{serviceId}")
		defer span.End()

		var in domain.ServiceInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		item, err := svc.UpdateService(ctx, chi.URLParam(r, "serviceId"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func deleteServiceHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/services/{serviceId}")
		defer span.End()

		if err := svc.DeleteService(ctx, chi.URLParam(r, "serviceId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func listPackagesHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/packages")
		defer span.End()

		packages, err := svc.ListPackages(ctx, parseListOptions(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if packages == nil {
			packages = []domain.ServicePackage{}
		}
		writeJSON(w, http.StatusOK, packages)
	}
}

func getPackageHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/packages/{packageId}")
		defer span.End()

		pkg, err := svc.GetPackage(ctx, chi.URLParam(r, "packageId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pkg)
	}
}

func createPackageHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/packages")
		defer span.End()

		var in domain.ServicePackageInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		pkg, err := svc.CreatePackage(ctx, &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, pkg)
	}
}

func updatePackageHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/packages/{packageId}")
		defer span.End()

		var in domain.ServicePackageInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		pkg, err := svc.UpdatePackage(ctx, chi.URLParam(r, "packageId"), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, pkg)
	}
}

func deletePackageHandler(svc *service.SalonService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/packages/{packageId}")
		defer span.End()

		if err := svc.DeletePackage(ctx, chi.URLParam(r, "packageId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
