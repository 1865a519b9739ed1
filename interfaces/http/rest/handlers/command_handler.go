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

const maxBodyBytes = 1 << 20

// CommandHandler exposes the command engine over HTTP.
type CommandHandler struct {
	commands *services.CommandService
	logger   *zap.Logger
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(commands *services.CommandService, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{commands: commands, logger: logger}
}

// CreateCommand handles POST /devices/{deviceId}/commands
func (h *CommandHandler) CreateCommand(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req services.CreateCommandRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondAppError(w, apperrors.NewValidation(apperrors.KindBadRequest,
			"invalid request body"))
		return
	}

	cmd, err := h.commands.CreateCommand(r.Context(), ticket.Sub, chi.URLParam(r, "deviceId"), req)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, cmd)
}

// GetCommand handles GET /devices/{deviceId}/commands/{commandId}
func (h *CommandHandler) GetCommand(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	cmd, err := h.commands.GetCommand(r.Context(), ticket.Sub,
		chi.URLParam(r, "deviceId"), chi.URLParam(r, "commandId"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, cmd)
}

// GetCommands handles GET /devices/{deviceId}/commands
func (h *CommandHandler) GetCommands(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	list, err := h.commands.GetCommands(r.Context(), ticket.Sub,
		chi.URLParam(r, "deviceId"),
		r.URL.Query().Get("commandStatus"),
		r.URL.Query().Get("lastevalkey"),
	)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, list)
}
