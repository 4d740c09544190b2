package handler

import (
	"net/http"

	"villaops/internal/jobs/service"
	apperrors "villaops/pkg/errors"
	httputil "villaops/pkg/http"
	"villaops/pkg/logger"
	"villaops/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type JobHandler struct {
	materializer service.Materializer
	tasks        service.TaskService
	log          *logger.Logger
}

func NewJobHandler(materializer service.Materializer, tasks service.TaskService, log *logger.Logger) *JobHandler {
	return &JobHandler{
		materializer: materializer,
		tasks:        tasks,
		log:          log,
	}
}

// Materialize is the manual re-trigger for one booking.
func (h *JobHandler) Materialize(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		h.writeError(w, "Materialize", apperrors.InvalidInput("Booking ID parameter is required"))
		return
	}

	result, err := h.materializer.Materialize(r.Context(), id)
	if err != nil {
		h.writeError(w, "Materialize", err)
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Materialize", "operation", "WriteCreated", "error", err)
	}
}

func (h *JobHandler) ListByBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tasks, err := h.tasks.ListByBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ListByBooking", err)
		return
	}

	if err := httputil.WriteList(w, tasks, len(tasks)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListByBooking", "operation", "WriteList", "error", err)
	}
}

func (h *JobHandler) DeleteBookingJobs(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	deleted, err := h.tasks.DeleteBookingJobs(r.Context(), id)
	if err != nil {
		h.writeError(w, "DeleteBookingJobs", err)
		return
	}

	h.log.Info("Booking jobs deleted", "booking_id", id, "deleted", deleted)
	if err := httputil.WriteSuccess(w, map[string]any{"booking_id": id, "deleted": deleted}); err != nil {
		h.log.Error("failed to write success response", "handler", "DeleteBookingJobs", "operation", "WriteSuccess", "error", err)
	}
}

func (h *JobHandler) Reassign(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	task, err := h.tasks.Reassign(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Reassign", err)
		return
	}

	if err := httputil.WriteSuccess(w, task); err != nil {
		h.log.Error("failed to write success response", "handler", "Reassign", "operation", "WriteSuccess", "error", err)
	}
}

func (h *JobHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.TaskStatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	task, err := h.tasks.UpdateStatus(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, task); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *JobHandler) Templates(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	templates := h.tasks.Templates()
	if err := httputil.WriteList(w, templates, len(templates)); err != nil {
		h.log.Error("failed to write list response", "handler", "Templates", "operation", "WriteList", "error", err)
	}
}

func (h *JobHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *JobHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/:id/jobs", h.Materialize)
	router.GET("/api/v1/bookings/:id/jobs", h.ListByBooking)
	router.DELETE("/api/v1/bookings/:id/jobs", h.DeleteBookingJobs)
	router.POST("/api/v1/jobs/:id/reassign", h.Reassign)
	router.PATCH("/api/v1/jobs/:id/status", h.UpdateStatus)
	router.GET("/api/v1/templates", h.Templates)
}
