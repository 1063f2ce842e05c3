package contest

import (
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	RegistrationID  uuid.UUID  `db:"registration_id" json:"registration_id"`
	Title           *string    `db:"title" json:"title,omitempty"`
	Description     *string    `db:"description" json:"description,omitempty"`
	URL             string     `db:"url" json:"url"`
	DurationSeconds *int       `db:"duration_seconds" json:"duration_seconds,omitempty"`
	Format          *string    `db:"format" json:"format,omitempty"`
	SizeMB          *float64   `db:"size_mb" json:"size_mb,omitempty"`
	Approved        bool       `db:"approved" json:"approved"`
	Featured        bool       `db:"featured" json:"featured"`
	Observations    *string    `db:"observations" json:"observations,omitempty"`
	UploadedAt      time.Time  `db:"uploaded_at" json:"uploaded_at"`
	ReviewedAt      *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

type VideoFilter struct {
	RegistrationID *uuid.UUID
	Approved       *bool
}
