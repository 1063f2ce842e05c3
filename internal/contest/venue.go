package contest

import (
	"time"

	"github.com/google/uuid"
)

type Venue struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	State        string    `db:"state" json:"state"`
	Municipality string    `db:"municipality" json:"municipality"`
	Address      *string   `db:"address" json:"address,omitempty"`
	ContactName  *string   `db:"contact_name" json:"contact_name,omitempty"`
	ContactPhone *string   `db:"contact_phone" json:"contact_phone,omitempty"`
	ContactEmail *string   `db:"contact_email" json:"contact_email,omitempty"`
	Capacity     int       `db:"capacity" json:"capacity"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
