package handlers

import (
	"net/http"

	"smartproduct-backend/application/services"
	"smartproduct-backend/pkg/auth"
	"smartproduct-backend/pkg/common"
	apperrors "smartproduct-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegistrationHandler exposes the registration workflow over HTTP.
type RegistrationHandler struct {
	registrations *services.RegistrationService
	logger        *zap.Logger
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(registrations *services.RegistrationService, logger *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, logger: logger}
}

// CreateRegistration handles POST /registration
func (h *RegistrationHandler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req services.CreateRegistrationRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation(apperrors.KindBadRequest,
			"invalid request body"))
		return
	}

	reg, err := h.registrations.CreateRegistration(r.Context(), ticket.Sub, req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, reg)
}

// ListRegistrations handles GET /registration
func (h *RegistrationHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	list, err := h.registrations.ListRegistrations(r.Context(), ticket.Sub,
		r.URL.Query().Get("lastevalkey"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, list)
}

// DeleteRegistration handles DELETE /registration/{deviceId}
func (h *RegistrationHandler) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.registrations.DeleteRegistration(r.Context(), ticket.Sub,
		chi.URLParam(r, "deviceId")); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "registration deleted"})
}
