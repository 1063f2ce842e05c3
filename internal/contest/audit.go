package contest

import (
	"time"

	"github.com/google/uuid"
)

const (
	TableRegistrations = "registrations"
	TableVenues        = "venues"
	TableRounds        = "rounds"
	TableResults       = "results"
	TableVideos        = "videos"
	TableUsers         = "users"
)

const (
	ActionRegistrationCreated = "registration.created"
	ActionRegistrationUpdated = "registration.updated"
	ActionProofUploaded       = "registration.proof_uploaded"
	ActionVideoReviewed       = "video.reviewed"
	ActionVideoUploaded       = "video.uploaded"
	ActionVideoLinked         = "video.linked"
	ActionVenueCreated        = "venue.created"
	ActionVenueUpdated        = "venue.updated"
	ActionVenueDeactivated    = "venue.deactivated"
	ActionRoundCreated        = "round.created"
	ActionRoundUpdated        = "round.updated"
	ActionResultRecorded      = "result.recorded"
	ActionUserCreated         = "user.created"
)

// StatusChangedAction names a status transition, e.g. "registration.status_changed:pending->approved".
func StatusChangedAction(from, to RegistrationStatus) string {
	return "registration.status_changed:" + string(from) + "->" + string(to)
}

// AuditEvent is an append-only record of a mutation. Previous and new values hold JSON snapshots.
type AuditEvent struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	UserID         *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Action         string     `db:"action" json:"action"`
	TableName      string     `db:"table_name" json:"table_name"`
	RecordID       string     `db:"record_id" json:"record_id"`
	PreviousValues *string    `db:"previous_values" json:"previous_values,omitempty"`
	NewValues      *string    `db:"new_values" json:"new_values,omitempty"`
	IPAddress      *string    `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent      *string    `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

type AuditFilter struct {
	TableName string
	RecordID  string
	Limit     int
}
