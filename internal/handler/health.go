package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AdamBeresnev/koe-contest/internal/httputil"
	"github.com/AdamBeresnev/koe-contest/internal/logging"
)

const pingTimeout = 2 * time.Second

type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health reports 200 while the database answers a ping and 503 otherwise.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logging.FromContextOr(r.Context(), zap.L()).Warn("health check failed", zap.Error(err))
			httputil.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
		httputil.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
