package handlers

import (
	"net/http"

	"smartproduct-backend/application/services"
	"smartproduct-backend/pkg/auth"
	"smartproduct-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EventHandler exposes event history and alert reads over HTTP.
type EventHandler struct {
	events *services.EventService
	alerts *services.AlertService
	logger *zap.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events *services.EventService, alerts *services.AlertService, logger *zap.Logger) *EventHandler {
	return &EventHandler{events: events, alerts: alerts, logger: logger}
}

// GetEvent handles GET /devices/{deviceId}/events/{eventId}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	ev, err := h.events.GetEvent(r.Context(), ticket.Sub,
		chi.URLParam(r, "deviceId"), chi.URLParam(r, "eventId"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ev)
}

// AckEvent handles PUT /devices/{deviceId}/events/{eventId}
func (h *EventHandler) AckEvent(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	ev, err := h.events.AckEvent(r.Context(), ticket.Sub,
		chi.URLParam(r, "deviceId"), chi.URLParam(r, "eventId"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, ev)
}

// GetDeviceEvents handles GET /devices/{deviceId}/events
func (h *EventHandler) GetDeviceEvents(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	list, err := h.events.GetEventHistory(r.Context(), ticket.Sub,
		chi.URLParam(r, "deviceId"),
		r.URL.Query().Get("eventType"),
		r.URL.Query().Get("lastevalkey"),
	)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, list)
}

// GetUserEvents handles GET /devices/events (cross-device history)
func (h *EventHandler) GetUserEvents(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	list, err := h.events.GetUserEventHistory(r.Context(), ticket.Sub,
		r.URL.Query().Get("deviceId"),
		r.URL.Query().Get("eventType"),
		r.URL.Query().Get("lastevalkey"),
	)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, list)
}

// GetAlerts handles GET /devices/alerts
func (h *EventHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	list, err := h.alerts.GetAlerts(r.Context(), ticket.Sub,
		r.URL.Query().Get("deviceId"),
		r.URL.Query().Get("lastevalkey"),
	)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, list)
}

// GetAlertsCount handles GET /devices/alerts/count
func (h *EventHandler) GetAlertsCount(w http.ResponseWriter, r *http.Request) {
	ticket, err := auth.TicketFrom(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	count, err := h.alerts.GetAlertsCount(r.Context(), ticket.Sub,
		r.URL.Query().Get("deviceId"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]int{"count": count})
}
