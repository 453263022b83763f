package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/restriction"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type SecurityHandler interface {
	ListIPRestrictions(w http.ResponseWriter, r *http.Request)
	GetIPRestriction(w http.ResponseWriter, r *http.Request)
	CreateIPRestriction(w http.ResponseWriter, r *http.Request)
	UpdateIPRestriction(w http.ResponseWriter, r *http.Request)
	DeleteIPRestriction(w http.ResponseWriter, r *http.Request)

	ListGeoRestrictions(w http.ResponseWriter, r *http.Request)
	GetGeoRestriction(w http.ResponseWriter, r *http.Request)
	CreateGeoRestriction(w http.ResponseWriter, r *http.Request)
	UpdateGeoRestriction(w http.ResponseWriter, r *http.Request)
	DeleteGeoRestriction(w http.ResponseWriter, r *http.Request)

	ListAssignments(w http.ResponseWriter, r *http.Request)
	Assign(w http.ResponseWriter, r *http.Request)
	Unassign(w http.ResponseWriter, r *http.Request)
}

type securityHandlerImpl struct {
	restrictionService restriction.Service
}

func NewSecurityHandler(restrictionService restriction.Service) SecurityHandler {
	return &securityHandlerImpl{restrictionService: restrictionService}
}

// ========================================
// IP RESTRICTIONS
// ========================================

func (h *securityHandlerImpl) ListIPRestrictions(w http.ResponseWriter, r *http.Request) {
	items, err := h.restrictionService.ListIPRestrictions(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, items)
}

func (h *securityHandlerImpl) GetIPRestriction(w http.ResponseWriter, r *http.Request) {
	item, err := h.restrictionService.GetIPRestriction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, item)
}

func (h *securityHandlerImpl) CreateIPRestriction(w http.ResponseWriter, r *http.Request) {
	var req restriction.CreateIPRestrictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	item, err := h.restrictionService.CreateIPRestriction(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "IP restriction created", item)
}

func (h *securityHandlerImpl) UpdateIPRestriction(w http.ResponseWriter, r *http.Request) {
	var req restriction.UpdateIPRestrictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	item, err := h.restrictionService.UpdateIPRestriction(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "IP restriction updated", item)
}

func (h *securityHandlerImpl) DeleteIPRestriction(w http.ResponseWriter, r *http.Request) {
	if err := h.restrictionService.DeleteIPRestriction(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "IP restriction deleted", nil)
}

// ========================================
// GEO RESTRICTIONS
// ========================================

func (h *securityHandlerImpl) ListGeoRestrictions(w http.ResponseWriter, r *http.Request) {
	items, err := h.restrictionService.ListGeoRestrictions(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, items)
}

func (h *securityHandlerImpl) GetGeoRestriction(w http.ResponseWriter, r *http.Request) {
	item, err := h.restrictionService.GetGeoRestriction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, item)
}

func (h *securityHandlerImpl) CreateGeoRestriction(w http.ResponseWriter, r *http.Request) {
	var req restriction.CreateGeoRestrictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	item, err := h.restrictionService.CreateGeoRestriction(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Geo restriction created", item)
}

func (h *securityHandlerImpl) UpdateGeoRestriction(w http.ResponseWriter, r *http.Request) {
	var req restriction.UpdateGeoRestrictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	item, err := h.restrictionService.UpdateGeoRestriction(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Geo restriction updated", item)
}

func (h *securityHandlerImpl) DeleteGeoRestriction(w http.ResponseWriter, r *http.Request) {
	if err := h.restrictionService.DeleteGeoRestriction(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Geo restriction deleted", nil)
}

// ========================================
// ASSIGNMENTS
// ========================================

func (h *securityHandlerImpl) ListAssignments(w http.ResponseWriter, r *http.Request) {
	var filter restriction.AssignmentFilter
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if t := r.URL.Query().Get("restriction_type"); t != "" {
		rt := restriction.Type(t)
		filter.Type = &rt
	}

	items, err := h.restrictionService.ListAssignments(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, items)
}

func (h *securityHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	var req restriction.AssignRestrictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	item, err := h.restrictionService.Assign(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Restriction assigned", item)
}

func (h *securityHandlerImpl) Unassign(w http.ResponseWriter, r *http.Request) {
	if err := h.restrictionService.Unassign(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Restriction unassigned", nil)
}
