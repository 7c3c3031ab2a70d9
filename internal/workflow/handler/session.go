package handler

import (
	"net/http"

	"vintrek/internal/payment"
	"vintrek/internal/workflow"
	"vintrek/internal/workflow/service"
	httputil "vintrek/pkg/http"
	"vintrek/pkg/logger"
	"vintrek/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// DraftRequest edits the booking draft. Absent fields are left unchanged;
// dates are YYYY-MM-DD.
type DraftRequest struct {
	TrailID         *string            `json:"trail_id,omitempty"`
	Campsite        *model.ResourceRef `json:"campsite,omitempty"`
	StartDate       *string            `json:"start_date,omitempty"`
	EndDate         *string            `json:"end_date,omitempty"`
	PartySize       *int               `json:"party_size,omitempty"`
	SpecialRequests *string            `json:"special_requests,omitempty"`
	TermsAccepted   *bool              `json:"terms_accepted,omitempty"`
	Contact         *model.Contact     `json:"contact,omitempty"`
}

type AddItemRequest struct {
	Resource model.ResourceRef `json:"resource"`
	Quantity *int              `json:"quantity,omitempty"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type PayRequest struct {
	Method  payment.Method  `json:"method"`
	Details payment.Details `json:"details"`
}

type SessionHandler struct {
	service service.WorkflowService
	log     *logger.Logger
}

func NewSessionHandler(service service.WorkflowService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log,
	}
}

func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var upd *workflow.DraftUpdate
	if r.ContentLength != 0 {
		var req DraftRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			h.writeError(w, "Open", err)
			return
		}
		var err error
		if upd, err = req.toUpdate(); err != nil {
			h.writeError(w, "Open", err)
			return
		}
	}

	sess, err := h.service.Open(r.Context(), upd)
	if err != nil {
		h.writeError(w, "Open", err)
		return
	}

	if err := httputil.WriteCreated(w, sess); err != nil {
		h.log.Error("failed to write created response", "handler", "Open", "operation", "WriteCreated", "error", err)
	}
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.service.Get(r.Context(), ps.ByName("id"))
	h.respond(w, "Get", sess, err)
}

func (h *SessionHandler) Abandon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Abandon(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Abandon", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *SessionHandler) UpdateDraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req DraftRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UpdateDraft", err)
		return
	}
	upd, err := req.toUpdate()
	if err != nil {
		h.writeError(w, "UpdateDraft", err)
		return
	}

	sess, err := h.service.UpdateDraft(r.Context(), ps.ByName("id"), upd)
	h.respond(w, "UpdateDraft", sess, err)
}

func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req AddItemRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "AddItem", err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	sess, err := h.service.AddItem(r.Context(), ps.ByName("id"), req.Resource, quantity)
	h.respond(w, "AddItem", sess, err)
}

func (h *SessionHandler) SetQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ref, err := model.ParseResourceRef(ps.ByName("kind"), ps.ByName("rid"))
	if err != nil {
		h.writeError(w, "SetQuantity", err)
		return
	}
	var req QuantityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "SetQuantity", err)
		return
	}

	sess, err := h.service.SetQuantity(r.Context(), ps.ByName("id"), ref, req.Quantity)
	h.respond(w, "SetQuantity", sess, err)
}

func (h *SessionHandler) RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ref, err := model.ParseResourceRef(ps.ByName("kind"), ps.ByName("rid"))
	if err != nil {
		h.writeError(w, "RemoveItem", err)
		return
	}

	sess, err := h.service.RemoveItem(r.Context(), ps.ByName("id"), ref)
	h.respond(w, "RemoveItem", sess, err)
}

func (h *SessionHandler) ClearCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.service.ClearCart(r.Context(), ps.ByName("id"))
	h.respond(w, "ClearCart", sess, err)
}

func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.service.Submit(r.Context(), ps.ByName("id"))
	h.respond(w, "Submit", sess, err)
}

func (h *SessionHandler) Acknowledge(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.service.Acknowledge(r.Context(), ps.ByName("id"))
	h.respond(w, "Acknowledge", sess, err)
}

func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.service.Back(r.Context(), ps.ByName("id"))
	h.respond(w, "Back", sess, err)
}

func (h *SessionHandler) Pay(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req PayRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Pay", err)
		return
	}

	sess, err := h.service.Pay(r.Context(), ps.ByName("id"), req.Method, req.Details)
	h.respond(w, "Pay", sess, err)
}

func (h *SessionHandler) NewBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sess, err := h.service.NewBooking(r.Context(), ps.ByName("id"))
	h.respond(w, "NewBooking", sess, err)
}

func (r *DraftRequest) toUpdate() (*workflow.DraftUpdate, error) {
	upd := &workflow.DraftUpdate{
		TrailID:         r.TrailID,
		Campsite:        r.Campsite,
		PartySize:       r.PartySize,
		SpecialRequests: r.SpecialRequests,
		TermsAccepted:   r.TermsAccepted,
		Contact:         r.Contact,
	}
	if r.StartDate != nil {
		start, err := httputil.ParseDate("start_date", *r.StartDate)
		if err != nil {
			return nil, err
		}
		upd.StartDate = &start
	}
	if r.EndDate != nil {
		end, err := httputil.ParseDate("end_date", *r.EndDate)
		if err != nil {
			return nil, err
		}
		upd.EndDate = &end
	}
	return upd, nil
}

func (h *SessionHandler) respond(w http.ResponseWriter, handler string, sess *workflow.Session, err error) {
	if err != nil {
		h.writeError(w, handler, err)
		return
	}
	if err := httputil.WriteSuccess(w, sess); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *SessionHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *SessionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/sessions", h.Open)
	router.GET("/api/v1/sessions/:id", h.Get)
	router.DELETE("/api/v1/sessions/:id", h.Abandon)
	router.PATCH("/api/v1/sessions/:id/draft", h.UpdateDraft)

	router.POST("/api/v1/sessions/:id/cart", h.AddItem)
	router.DELETE("/api/v1/sessions/:id/cart", h.ClearCart)
	router.PUT("/api/v1/sessions/:id/cart/:kind/:rid", h.SetQuantity)
	router.DELETE("/api/v1/sessions/:id/cart/:kind/:rid", h.RemoveItem)

	router.POST("/api/v1/sessions/:id/submit", h.Submit)
	router.POST("/api/v1/sessions/:id/acknowledge", h.Acknowledge)
	router.POST("/api/v1/sessions/:id/back", h.Back)
	router.POST("/api/v1/sessions/:id/pay", h.Pay)
	router.POST("/api/v1/sessions/:id/new", h.NewBooking)
}
