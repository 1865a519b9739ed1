package handlers

import (
	"net/http"

	"smartproduct-backend/application/services"
	"smartproduct-backend/pkg/auth"
	"smartproduct-backend/pkg/common"
	apperrors "smartproduct-backend/pkg/errors"

	"go.uber.org/zap"
)

// SettingHandler exposes per-user alert preferences over HTTP.
type SettingHandler struct {
	settings *services.SettingService
	logger   *zap.Logger
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(settings *services.SettingService, logger *zap.Logger) *SettingHandler {
	return &SettingHandler{settings: settings, logger: logger}
}

// GetSetting handles GET /settings
func (h *SettingHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	setting, err := h.settings.GetSetting(r.Context(), ticket.Sub)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, setting)
}

// UpdateSetting handles PUT /settings
func (h *SettingHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req services.UpdateSettingRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation(apperrors.KindBadRequest,
			"invalid request body"))
		return
	}

	setting, err := h.settings.UpdateSetting(r.Context(), ticket.Sub, req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, setting)
}
