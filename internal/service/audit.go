package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/requesttrace"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	"github.com/AdamBeresnev/koe-contest/internal/utils"
)

// AuditWriter appends an event inside the transaction of the mutation it describes.
type AuditWriter interface {
	Append(ctx context.Context, tx *sqlx.Tx, event *contest.AuditEvent) error
}

// AuditCreatePolicy decides whether creating a registration writes an audit event.
type AuditCreatePolicy string

const (
	AuditCreateAlways        AuditCreatePolicy = "always"
	AuditCreateAuthenticated AuditCreatePolicy = "authenticated"
	AuditCreateNever         AuditCreatePolicy = "never"
)

func ParseAuditCreatePolicy(s string) (AuditCreatePolicy, error) {
	switch p := AuditCreatePolicy(s); p {
	case AuditCreateAlways, AuditCreateAuthenticated, AuditCreateNever:
		return p, nil
	case "":
		return AuditCreateAuthenticated, nil
	}
	return "", fmt.Errorf("unknown audit create policy %q", s)
}

func (p AuditCreatePolicy) applies(actor requesttrace.AuditInfo) bool {
	switch p {
	case AuditCreateAlways:
		return true
	case AuditCreateAuthenticated:
		return actor.Authenticated()
	}
	return false
}

// newID returns a time-ordered UUIDv7. List queries order by id to get creation order.
func newID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// newAuditEvent stamps the request actor and serialises both snapshots. Nil snapshots stay NULL.
func newAuditEvent(ctx context.Context, action, table, recordID string, previous, next any) (*contest.AuditEvent, error) {
	actor := requesttrace.FromContextOrSystem(ctx)

	event := &contest.AuditEvent{
		ID:        newID(),
		UserID:    actor.UserID,
		Action:    action,
		TableName: table,
		RecordID:  recordID,
		IPAddress: utils.StringOrNil(actor.IPAddress),
		UserAgent: utils.StringOrNil(actor.UserAgent),
		CreatedAt: now(),
	}

	var err error
	if event.PreviousValues, err = snapshot(previous); err != nil {
		return nil, err
	}
	if event.NewValues, err = snapshot(next); err != nil {
		return nil, err
	}
	return event, nil
}

func snapshot(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit snapshot: %w", err)
	}
	s := string(b)
	return &s, nil
}

func appendAudit(ctx context.Context, tx *sqlx.Tx, w AuditWriter, action, table, recordID string, previous, next any) error {
	event, err := newAuditEvent(ctx, action, table, recordID, previous, next)
	if err != nil {
		return err
	}
	if err := w.Append(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to append audit event: %w", store.Classify(err))
	}
	return nil
}

type AuditService struct {
	store *store.AuditStore
}

func NewAuditService(store *store.AuditStore) *AuditService {
	return &AuditService{store: store}
}

// List returns the newest events first. Limit defaults to 100 and is capped at 1000.
func (s *AuditService) List(ctx context.Context, f contest.AuditFilter) ([]contest.AuditEvent, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > 1000 {
		f.Limit = 1000
	}
	events, err := s.store.ListEvents(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", store.Classify(err))
	}
	return events, nil
}
