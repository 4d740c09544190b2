package handler

import (
	"net/http"

	"villaops/internal/analytics/service"
	httputil "villaops/pkg/http"
	"villaops/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AnalyticsHandler struct {
	service service.AnalyticsService
	log     *logger.Logger
}

func NewAnalyticsHandler(service service.AnalyticsService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		log:     log,
	}
}

// Assignments serves the staff performance report for ?from=&to=.
func (h *AnalyticsHandler) Assignments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var window service.Window
	var err error

	if window.From, err = httputil.ParseTimeParam(r, "from"); err == nil {
		window.To, err = httputil.ParseTimeParam(r, "to")
	}
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Assignments", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	report, err := h.service.Report(r.Context(), window)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Assignments", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "Assignments", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AnalyticsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/analytics/assignments", h.Assignments)
}
