package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/AdamBeresnev/koe-contest/internal/httputil"
	"github.com/AdamBeresnev/koe-contest/internal/service"
)

type RoundHandler struct {
	rounds *service.RoundService
}

func NewRoundHandler(rounds *service.RoundService) *RoundHandler {
	return &RoundHandler{rounds: rounds}
}

type createRoundRequest struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	VenueID     uuid.UUID `json:"venue_id"`
	Type        string    `json:"type"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type updateRoundRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	VenueID     *uuid.UUID `json:"venue_id"`
	Type        *string    `json:"type"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Active      *bool      `json:"active"`
}

func (h *RoundHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoundRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	round, err := h.rounds.Create(r.Context(), service.RoundInput(req))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, round)
}

func (h *RoundHandler) List(w http.ResponseWriter, r *http.Request) {
	venueID, err := queryUUID(r, "venue_id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	activeOnly, err := queryBool(r, "active_only")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	rounds, err := h.rounds.List(r.Context(), venueID, activeOnly != nil && *activeOnly)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, rounds)
}

func (h *RoundHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var req updateRoundRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	round, err := h.rounds.Update(r.Context(), id, service.RoundPatch(req))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, round)
}
