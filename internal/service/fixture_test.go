package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/db/dbtest"
	"github.com/AdamBeresnev/koe-contest/internal/requesttrace"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	users "github.com/AdamBeresnev/koe-contest/internal/user"
	"github.com/AdamBeresnev/koe-contest/internal/utils"
)

type fixture struct {
	db            *sqlx.DB
	registrations *store.RegistrationStore
	venueStore    *store.VenueStore
	roundStore    *store.RoundStore
	videoStore    *store.VideoStore
	audit         *store.AuditStore
	userStore     *store.UserStore

	registrationService *RegistrationService
	venueService        *VenueService
	roundService        *RoundService
	userService         *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, dbtest.New(t))
}

func newFixtureOn(t *testing.T, conn *sqlx.DB) *fixture {
	t.Helper()

	f := &fixture{
		db:            conn,
		registrations: store.NewRegistrationStore(conn),
		venueStore:    store.NewVenueStore(conn),
		roundStore:    store.NewRoundStore(conn),
		videoStore:    store.NewVideoStore(conn),
		audit:         store.NewAuditStore(conn),
		userStore:     store.NewUserStore(conn),
	}
	f.registrationService = NewRegistrationService(conn, f.registrations, f.venueStore, f.audit, AuditCreateAuthenticated)
	f.venueService = NewVenueService(conn, f.venueStore, f.registrations, f.audit)
	f.roundService = NewRoundService(conn, f.roundStore, f.venueStore, f.audit)
	f.userService = NewUserService(conn, f.userStore, f.audit)
	return f
}

// adminContext returns a context acting as a freshly created admin.
func (f *fixture) adminContext(t *testing.T) (context.Context, *users.User) {
	t.Helper()
	admin, err := f.userService.CreateUser(context.Background(), CreateUserInput{
		Name:     "Admin",
		Email:    "admin-" + uuid.NewString()[:8] + "@koe.mx",
		Password: "correct horse battery",
		Role:     string(users.RoleAdmin),
	})
	require.NoError(t, err)

	trace := requesttrace.ForUser(admin.ID, "req-test")
	trace.IPAddress = "198.51.100.7"
	trace.UserAgent = "koe-test"
	ctx := users.WithUser(requesttrace.IntoContext(context.Background(), trace), admin)
	return ctx, admin
}

func (f *fixture) venue(t *testing.T, name, municipality string) *contest.Venue {
	t.Helper()
	v, err := f.venueService.Create(context.Background(), VenueInput{
		Name:         name,
		State:        "Querétaro",
		Municipality: municipality,
		Capacity:     100,
	})
	require.NoError(t, err)
	return v
}

func (f *fixture) registration(t *testing.T, ctx context.Context, stageName string, category contest.Category, venue *contest.Venue) *contest.Registration {
	t.Helper()
	in := CreateRegistrationInput{
		FullName:     stageName + " Full Name",
		StageName:    stageName,
		Phone:        "4421234567",
		Email:        utils.Ptr(stageName + "@mail.mx"),
		Category:     string(category),
		Municipality: "Querétaro",
	}
	if venue != nil {
		in.VenueID = &venue.ID
		in.Municipality = venue.Municipality
	}
	r, err := f.registrationService.Create(ctx, in)
	require.NoError(t, err)
	return r
}

func (f *fixture) events(t *testing.T, recordID string) []contest.AuditEvent {
	t.Helper()
	events, err := f.audit.ListEvents(context.Background(), contest.AuditFilter{RecordID: recordID, Limit: 100})
	require.NoError(t, err)
	return events
}

type failingAuditWriter struct{}

func (failingAuditWriter) Append(context.Context, *sqlx.Tx, *contest.AuditEvent) error {
	return errors.New("audit table unavailable")
}
