package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/AdamBeresnev/koe-contest/internal/httputil"
	"github.com/AdamBeresnev/koe-contest/internal/service"
)

type ResultHandler struct {
	results *service.ResultService
}

func NewResultHandler(results *service.ResultService) *ResultHandler {
	return &ResultHandler{results: results}
}

type resultRequest struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	RoundID        uuid.UUID `json:"round_id"`
	Score          float64   `json:"score"`
	Position       *int      `json:"position"`
	Advanced       bool      `json:"advanced"`
	Observations   *string   `json:"observations"`
}

type bulkResultRequest struct {
	Results []resultRequest `json:"results"`
}

func (h *ResultHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	result, err := h.results.Submit(r.Context(), service.ResultInput(req))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}

// SubmitBulk stores every result or none of them.
func (h *ResultHandler) SubmitBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkResultRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	inputs := make([]service.ResultInput, len(req.Results))
	for i, res := range req.Results {
		inputs[i] = service.ResultInput(res)
	}
	results, err := h.results.SubmitBulk(r.Context(), inputs)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, results)
}

func (h *ResultHandler) List(w http.ResponseWriter, r *http.Request) {
	roundID, err := queryUUID(r, "round_id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	registrationID, err := queryUUID(r, "registration_id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	results, err := h.results.List(r.Context(), roundID, registrationID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, results)
}
