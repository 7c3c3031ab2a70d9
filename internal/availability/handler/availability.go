package handler

import (
	"net/http"
	"time"

	"vintrek/internal/availability/repository"
	"vintrek/internal/availability/service"
	apperrors "vintrek/pkg/errors"
	httputil "vintrek/pkg/http"
	"vintrek/pkg/logger"
	"vintrek/pkg/middleware"
	"vintrek/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CheckRequest struct {
	Resources []model.ResourceRef `json:"resources"`
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
}

type WindowRequest struct {
	Resource     model.ResourceRef  `json:"resource"`
	StartDate    string             `json:"start_date"`
	EndDate      string             `json:"end_date"`
	Status       model.WindowStatus `json:"status"`
	Notes        string             `json:"notes,omitempty"`
	InclusiveEnd bool               `json:"inclusive_end,omitempty"`
}

type WindowUpdateRequest struct {
	StartDate    *string             `json:"start_date,omitempty"`
	EndDate      *string             `json:"end_date,omitempty"`
	Status       *model.WindowStatus `json:"status,omitempty"`
	Notes        *string             `json:"notes,omitempty"`
	InclusiveEnd bool                `json:"inclusive_end,omitempty"`
}

type AvailabilityHandler struct {
	service   service.AvailabilityService
	jwtSecret string
	log       *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, jwtSecret string, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service:   service,
		jwtSecret: jwtSecret,
		log:       log,
	}
}

func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req CheckRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Check", err)
		return
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		h.writeError(w, "Check", err)
		return
	}

	result, err := h.service.CheckAll(r.Context(), req.Resources, start, end)
	if err != nil {
		h.writeError(w, "Check", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Check", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) ListWindows(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListWindows", err)
		return
	}

	query := r.URL.Query()
	q := repository.WindowQuery{
		Status: model.WindowStatus(query.Get("status")),
		Limit:  limit,
		Offset: offset,
	}

	if kind, id := query.Get("kind"), query.Get("id"); kind != "" || id != "" {
		ref, err := model.ParseResourceRef(kind, id)
		if err != nil {
			h.writeError(w, "ListWindows", err)
			return
		}
		q.Resource = &ref
	}
	if from := query.Get("from"); from != "" {
		if q.StartDate, err = httputil.ParseDate("from", from); err != nil {
			h.writeError(w, "ListWindows", err)
			return
		}
	}
	if to := query.Get("to"); to != "" {
		if q.EndDate, err = httputil.ParseDate("to", to); err != nil {
			h.writeError(w, "ListWindows", err)
			return
		}
	}

	windows, total, err := h.service.ListWindows(r.Context(), q)
	if err != nil {
		h.writeError(w, "ListWindows", err)
		return
	}

	if err := httputil.WritePaginated(w, windows, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListWindows", "operation", "WritePaginated", "error", err)
	}
}

func (h *AvailabilityHandler) CreateWindow(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req WindowRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateWindow", err)
		return
	}

	start, end, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		h.writeError(w, "CreateWindow", err)
		return
	}

	window := &model.AvailabilityWindow{
		Resource:  req.Resource,
		StartDate: start,
		EndDate:   end,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	if err := h.service.CreateWindow(r.Context(), window, req.InclusiveEnd); err != nil {
		h.writeError(w, "CreateWindow", err)
		return
	}

	if err := httputil.WriteCreated(w, window); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateWindow", "operation", "WriteCreated", "error", err)
	}
}

func (h *AvailabilityHandler) UpdateWindow(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req WindowUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UpdateWindow", err)
		return
	}

	upd := &model.WindowUpdate{Status: req.Status, Notes: req.Notes}
	if req.StartDate != nil {
		t, err := httputil.ParseDate("start_date", *req.StartDate)
		if err != nil {
			h.writeError(w, "UpdateWindow", err)
			return
		}
		upd.StartDate = &t
	}
	if req.EndDate != nil {
		t, err := httputil.ParseDate("end_date", *req.EndDate)
		if err != nil {
			h.writeError(w, "UpdateWindow", err)
			return
		}
		upd.EndDate = &t
	}

	window, err := h.service.UpdateWindow(r.Context(), ps.ByName("id"), upd, req.InclusiveEnd)
	if err != nil {
		h.writeError(w, "UpdateWindow", err)
		return
	}

	if err := httputil.WriteSuccess(w, window); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateWindow", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) DeleteWindow(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteWindow(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteWindow", err)
		return
	}
	httputil.WriteNoContent(w)
}

func parseDates(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := httputil.ParseDate("start_date", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := httputil.ParseDate("end_date", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// parseRange is parseDates for availability queries, which must be non-empty.
func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, end, err := parseDates(startStr, endStr)
	if err != nil {
		return start, end, err
	}
	if !start.Before(end) {
		return start, end, apperrors.Validation("start_date must be before end_date", map[string]any{
			"start_date": startStr,
			"end_date":   endStr,
		})
	}
	return start, end, nil
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	manage := middleware.RequireRole(h.jwtSecret, h.log, middleware.RoleProvider, middleware.RoleAdmin)

	router.POST("/api/v1/availability/check", h.Check)
	router.GET("/api/v1/availability/windows", h.ListWindows)
	router.POST("/api/v1/availability/windows", manage(h.CreateWindow))
	router.PATCH("/api/v1/availability/windows/:id", manage(h.UpdateWindow))
	router.DELETE("/api/v1/availability/windows/:id", manage(h.DeleteWindow))
}
