package contest

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "pending"
	StatusApproved RegistrationStatus = "approved"
	StatusRejected RegistrationStatus = "rejected"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Statuses lists every registration status in display order.
var Statuses = []RegistrationStatus{StatusPending, StatusApproved, StatusRejected}

type Category string

const (
	CategoryKoeSan     Category = "KOE SAN"
	CategoryKoeSai     Category = "KOE SAI"
	CategoryTsukamuKoe Category = "TSUKAMU KOE"
)

const DefaultCategory = CategoryKoeSan

func (c Category) Valid() bool {
	switch c {
	case CategoryKoeSan, CategoryKoeSai, CategoryTsukamuKoe:
		return true
	}
	return false
}

var Categories = []Category{CategoryKoeSan, CategoryKoeSai, CategoryTsukamuKoe}

type Registration struct {
	ID           uuid.UUID          `db:"id" json:"id"`
	FullName     string             `db:"full_name" json:"full_name"`
	StageName    string             `db:"stage_name" json:"stage_name"`
	Phone        string             `db:"phone" json:"phone"`
	Email        *string            `db:"email" json:"email,omitempty"`
	Category     Category           `db:"category" json:"category"`
	Municipality string             `db:"municipality" json:"municipality"`
	VenueID      *uuid.UUID         `db:"venue_id" json:"venue_id,omitempty"`
	Observations *string            `db:"observations" json:"observations,omitempty"`
	PaymentProof *string            `db:"payment_proof" json:"-"`
	Status       RegistrationStatus `db:"status" json:"status"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updated_at"`
}

// HasPaymentProof reports whether a proof image is attached.
func (r *Registration) HasPaymentProof() bool {
	return r.PaymentProof != nil && *r.PaymentProof != ""
}

// MarshalJSON reports has_payment_proof in place of the proof image, which is served on its own.
func (r Registration) MarshalJSON() ([]byte, error) {
	type registration Registration
	return json.Marshal(struct {
		registration
		HasPaymentProof bool `json:"has_payment_proof"`
	}{registration(r), r.HasPaymentProof()})
}

type RegistrationFilter struct {
	Status   *RegistrationStatus
	Category *Category
	VenueID  *uuid.UUID
	Search   string
	Skip     int
	Limit    int
}

type RegistrationPage struct {
	Items []Registration `json:"items"`
	Total int            `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}
