package contest

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// MaxScore is the largest value a NUMERIC(5,2) score column holds.
const MaxScore = 999.99

type Result struct {
	ID             uuid.UUID `db:"id" json:"id"`
	RegistrationID uuid.UUID `db:"registration_id" json:"registration_id"`
	RoundID        uuid.UUID `db:"round_id" json:"round_id"`
	Score          float64   `db:"score" json:"score"`
	Position       *int      `db:"position" json:"position,omitempty"`
	Advanced       bool      `db:"advanced" json:"advanced"`
	Observations   *string   `db:"observations" json:"observations,omitempty"`
	EvaluatedAt    time.Time `db:"evaluated_at" json:"evaluated_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// RoundScore rounds half away from zero to two decimals.
func RoundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
