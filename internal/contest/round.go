package contest

import (
	"time"

	"github.com/google/uuid"
)

type RoundType string

const (
	RoundQualifier     RoundType = "qualifier"
	RoundIntersection  RoundType = "intersection"
	RoundIntercity     RoundType = "intercity"
	RoundInterstate    RoundType = "interstate"
	RoundInternational RoundType = "international"
)

func (t RoundType) Valid() bool {
	switch t {
	case RoundQualifier, RoundIntersection, RoundIntercity, RoundInterstate, RoundInternational:
		return true
	}
	return false
}

type Round struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	VenueID     uuid.UUID `db:"venue_id" json:"venue_id"`
	Type        RoundType `db:"round_type" json:"type"`
	ScheduledAt time.Time `db:"scheduled_at" json:"scheduled_at"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
