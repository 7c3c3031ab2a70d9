package handler

import (
	"net/http"

	"vintrek/internal/resources/service"
	apperrors "vintrek/pkg/errors"
	httputil "vintrek/pkg/http"
	"vintrek/pkg/logger"
	"vintrek/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ResourceHandler struct {
	service service.ResourceService
	log     *logger.Logger
}

func NewResourceHandler(service service.ResourceService, log *logger.Logger) *ResourceHandler {
	return &ResourceHandler{
		service: service,
		log:     log,
	}
}

func (h *ResourceHandler) GetByRef(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ref, err := model.ParseResourceRef(ps.ByName("kind"), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByRef", err)
		return
	}

	res, err := h.service.GetResource(r.Context(), ref)
	if err != nil {
		h.writeError(w, "GetByRef", err)
		return
	}

	if err := httputil.WriteSuccess(w, res); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByRef", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	filter := model.ResourceFilter{
		Kind:       model.ResourceKind(query.Get("kind")),
		Category:   query.Get("category"),
		ActiveOnly: query.Get("include_inactive") != "true",
		Limit:      limit,
		Offset:     offset,
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		h.writeError(w, "List", apperrors.InvalidInput("kind must be campsite or rental_item"))
		return
	}

	resources, total, err := h.service.ListResources(r.Context(), filter)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, resources, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *ResourceHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ResourceHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/resources", h.List)
	router.GET("/api/v1/resources/:kind/:id", h.GetByRef)
}
