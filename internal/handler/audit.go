package handler

import (
	"net/http"
	"strings"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/httputil"
	"github.com/AdamBeresnev/koe-contest/internal/service"
)

type AuditHandler struct {
	audit *service.AuditService
}

func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	q := r.URL.Query()
	events, err := h.audit.List(r.Context(), contest.AuditFilter{
		TableName: strings.TrimSpace(q.Get("table_name")),
		RecordID:  strings.TrimSpace(q.Get("record_id")),
		Limit:     limit,
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, events)
}
