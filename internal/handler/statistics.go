package handler

import (
	"net/http"

	"github.com/AdamBeresnev/koe-contest/internal/httputil"
	"github.com/AdamBeresnev/koe-contest/internal/service"
	"github.com/AdamBeresnev/koe-contest/views"
)

type StatisticsHandler struct {
	statistics *service.StatisticsService
}

func NewStatisticsHandler(statistics *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statistics: statistics}
}

func (h *StatisticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statistics.Statistics(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, stats)
}

// Dashboard renders the statistics as an HTML page.
func (h *StatisticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statistics.Statistics(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	data := views.PrepareDashboardData(stats)
	data.SignedInAs = views.SignedInAs(r.Context())
	if err := views.Render(w, r, views.Dashboard(data)); err != nil {
		httputil.InternalServerError(w, r, "failed to render dashboard", err)
	}
}
