package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/db/dbtest"
	"github.com/AdamBeresnev/koe-contest/internal/requesttrace"
	"github.com/AdamBeresnev/koe-contest/internal/utils"
)

func TestCreateRegistrationDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.registrationService.Create(ctx, CreateRegistrationInput{
		FullName:     "  Ana Ruiz  ",
		StageName:    "Ana",
		Phone:        "4421234567",
		Email:        utils.Ptr("Ana@Mail.MX"),
		Municipality: "Querétaro",
	})
	require.NoError(t, err)

	assert.Equal(t, contest.StatusPending, r.Status)
	assert.Equal(t, contest.CategoryKoeSan, r.Category)
	assert.Equal(t, "Ana Ruiz", r.FullName)
	assert.Equal(t, "ana@mail.mx", *r.Email)
	assert.False(t, r.HasPaymentProof())

	stored, err := f.registrationService.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, stored.ID)
	assert.Equal(t, contest.StatusPending, stored.Status)
}

func TestCreateRegistrationValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.registrationService.Create(ctx, CreateRegistrationInput{
		FullName:  "",
		StageName: "Ana",
		Phone:     "4421234567",
		Email:     utils.Ptr("not-an-email"),
		Category:  "KOE ZEN",
	})
	require.ErrorIs(t, err, contest.ErrInvalidArgument)

	var validationErr *contest.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "full_name")
	assert.Contains(t, validationErr.Fields, "email")
	assert.Contains(t, validationErr.Fields, "category")
	assert.Contains(t, validationErr.Fields, "municipality")

	page, err := f.registrationService.List(ctx, contest.RegistrationFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestCreateRegistrationRequiresActiveVenue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	venue := f.venue(t, "Centro", "Querétaro")
	require.NoError(t, f.venueService.Delete(ctx, venue.ID))

	_, err := f.registrationService.Create(ctx, CreateRegistrationInput{
		FullName: "Ana Ruiz", StageName: "Ana", Phone: "1", Municipality: "Querétaro", VenueID: &venue.ID,
	})
	assert.ErrorIs(t, err, contest.ErrNotFound)

	missing := uuid.New()
	_, err = f.registrationService.Create(ctx, CreateRegistrationInput{
		FullName: "Ana Ruiz", StageName: "Ana", Phone: "1", Municipality: "Querétaro", VenueID: &missing,
	})
	assert.ErrorIs(t, err, contest.ErrNotFound)
}

func TestCreateRegistrationAuditPolicy(t *testing.T) {
	tests := []struct {
		name          string
		policy        AuditCreatePolicy
		authenticated bool
		wantEvents    int
	}{
		{"authenticated policy with admin", AuditCreateAuthenticated, true, 1},
		{"authenticated policy anonymous", AuditCreateAuthenticated, false, 0},
		{"always anonymous", AuditCreateAlways, false, 1},
		{"never with admin", AuditCreateNever, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.registrationService = NewRegistrationService(f.db, f.registrations, f.venueStore, f.audit, tt.policy)

			ctx := requesttrace.IntoContext(context.Background(), requesttrace.Anonymous("req-anon"))
			if tt.authenticated {
				ctx, _ = f.adminContext(t)
			}

			r := f.registration(t, ctx, "Ana", contest.CategoryKoeSai, nil)
			events := f.events(t, r.ID.String())
			require.Len(t, events, tt.wantEvents)
			if tt.wantEvents > 0 {
				assert.Equal(t, contest.ActionRegistrationCreated, events[0].Action)
				assert.Nil(t, events[0].PreviousValues)
				require.NotNil(t, events[0].NewValues)
				assert.Contains(t, *events[0].NewValues, `"status":"pending"`)
			}
		})
	}
}

func TestSetStatusWritesOneAuditEvent(t *testing.T) {
	f := newFixture(t)
	ctx, admin := f.adminContext(t)
	r := f.registration(t, context.Background(), "Ana", contest.CategoryKoeSan, nil)

	updated, err := f.registrationService.SetStatus(ctx, r.ID, contest.StatusApproved, utils.Ptr("Pago verificado"))
	require.NoError(t, err)
	assert.Equal(t, contest.StatusApproved, updated.Status)
	assert.Equal(t, "Pago verificado", *updated.Observations)

	events := f.events(t, r.ID.String())
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, "registration.status_changed:pending->approved", event.Action)
	assert.Equal(t, contest.TableRegistrations, event.TableName)
	require.NotNil(t, event.UserID)
	assert.Equal(t, admin.ID, *event.UserID)
	assert.Equal(t, "198.51.100.7", *event.IPAddress)
	assert.Equal(t, "koe-test", *event.UserAgent)

	var previous, next map[string]any
	require.NoError(t, json.Unmarshal([]byte(*event.PreviousValues), &previous))
	require.NoError(t, json.Unmarshal([]byte(*event.NewValues), &next))
	assert.Equal(t, "pending", previous["status"])
	assert.Equal(t, "approved", next["status"])
	assert.Equal(t, "Pago verificado", next["observations"])
}

func TestSetStatusAnyTransition(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.adminContext(t)
	r := f.registration(t, ctx, "Ana", contest.CategoryKoeSan, nil)

	for _, status := range []contest.RegistrationStatus{contest.StatusRejected, contest.StatusApproved, contest.StatusPending, contest.StatusPending} {
		got, err := f.registrationService.SetStatus(ctx, r.ID, status, nil)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}

	// One create event plus one per transition, same-status included.
	assert.Len(t, f.events(t, r.ID.String()), 5)
}

func TestConcurrentSetStatusOnFileDatabase(t *testing.T) {
	f := newFixtureOn(t, dbtest.NewFile(t))
	ctx, _ := f.adminContext(t)

	regs := make([]*contest.Registration, 20)
	for i := range regs {
		regs[i] = f.registration(t, ctx, "Voz "+string(rune('A'+i)), contest.CategoryKoeSan, nil)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(regs))
	for i, r := range regs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.registrationService.SetStatus(ctx, r.ID, contest.StatusApproved, nil)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "registration %d", i)
	}
	for _, r := range regs {
		got, err := f.registrationService.Get(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, contest.StatusApproved, got.Status)
		assert.Len(t, f.events(t, r.ID.String()), 2)
	}
}

func TestSetStatusRollsBackWhenAuditFails(t *testing.T) {
	f := newFixture(t)
	r := f.registration(t, context.Background(), "Ana", contest.CategoryKoeSan, nil)

	failing := NewRegistrationService(f.db, f.registrations, f.venueStore, failingAuditWriter{}, AuditCreateAuthenticated)
	_, err := failing.SetStatus(context.Background(), r.ID, contest.StatusApproved, utils.Ptr("should not persist"))
	require.Error(t, err)
	assert.ErrorIs(t, err, contest.ErrStoreUnavailable)

	stored, err := f.registrationService.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, contest.StatusPending, stored.Status)
	assert.Nil(t, stored.Observations)
	assert.Empty(t, f.events(t, r.ID.String()))
}

func TestSetStatusErrors(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.adminContext(t)
	r := f.registration(t, ctx, "Ana", contest.CategoryKoeSan, nil)

	_, err := f.registrationService.SetStatus(ctx, r.ID, "archived", nil)
	assert.ErrorIs(t, err, contest.ErrInvalidArgument)

	_, err = f.registrationService.SetStatus(ctx, uuid.New(), contest.StatusApproved, nil)
	assert.ErrorIs(t, err, contest.ErrNotFound)

	// Only the create event.
	assert.Len(t, f.events(t, r.ID.String()), 1)
}

func TestUpdateFieldsRecordsChangedFields(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.adminContext(t)
	venue := f.venue(t, "Norte", "Corregidora")
	r := f.registration(t, context.Background(), "Ana", contest.CategoryKoeSan, nil)

	updated, err := f.registrationService.UpdateFields(ctx, r.ID, RegistrationPatch{
		StageName: utils.Ptr("Ana K"),
		Category:  utils.Ptr("TSUKAMU KOE"),
		VenueID:   &venue.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana K", updated.StageName)
	assert.Equal(t, contest.CategoryTsukamuKoe, updated.Category)
	assert.Equal(t, venue.ID, *updated.VenueID)
	assert.Equal(t, r.FullName, updated.FullName)
	assert.Equal(t, contest.StatusPending, updated.Status)

	events := f.events(t, r.ID.String())
	require.Len(t, events, 1)
	assert.Equal(t, contest.ActionRegistrationUpdated, events[0].Action)

	var previous, next map[string]any
	require.NoError(t, json.Unmarshal([]byte(*events[0].PreviousValues), &previous))
	require.NoError(t, json.Unmarshal([]byte(*events[0].NewValues), &next))
	assert.Len(t, next, 3)
	assert.Equal(t, "Ana", previous["stage_name"])
	assert.Equal(t, "Ana K", next["stage_name"])
	assert.Equal(t, "KOE SAN", previous["category"])
	assert.Nil(t, previous["venue_id"])
	assert.Equal(t, venue.ID.String(), next["venue_id"])
}

func TestUpdateFieldsValidation(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.adminContext(t)
	r := f.registration(t, ctx, "Ana", contest.CategoryKoeSan, nil)

	_, err := f.registrationService.UpdateFields(ctx, r.ID, RegistrationPatch{})
	assert.ErrorIs(t, err, contest.ErrInvalidArgument)

	_, err = f.registrationService.UpdateFields(ctx, r.ID, RegistrationPatch{Phone: utils.Ptr("   ")})
	assert.ErrorIs(t, err, contest.ErrInvalidArgument)

	_, err = f.registrationService.UpdateFields(ctx, uuid.New(), RegistrationPatch{Phone: utils.Ptr("123")})
	assert.ErrorIs(t, err, contest.ErrNotFound)

	stored, err := f.registrationService.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "4421234567", stored.Phone)
	assert.Len(t, f.events(t, r.ID.String()), 1)
}

func TestListRegistrations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	centro := f.venue(t, "Centro", "Querétaro")

	ana := f.registration(t, ctx, "Ana", contest.CategoryKoeSan, centro)
	f.registration(t, ctx, "Beto", contest.CategoryKoeSai, nil)
	f.registration(t, ctx, "Carla_50%", contest.CategoryKoeSan, nil)
	_, err := f.registrationService.SetStatus(ctx, ana.ID, contest.StatusApproved, nil)
	require.NoError(t, err)

	page, err := f.registrationService.List(ctx, contest.RegistrationFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 100, page.Limit)
	assert.Equal(t, "Carla_50%", page.Items[0].StageName, "newest first")

	approved := contest.StatusApproved
	page, err = f.registrationService.List(ctx, contest.RegistrationFilter{Status: &approved})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, ana.ID, page.Items[0].ID)

	san := contest.CategoryKoeSan
	page, err = f.registrationService.List(ctx, contest.RegistrationFilter{Category: &san, VenueID: &centro.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = f.registrationService.List(ctx, contest.RegistrationFilter{Search: "50%"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Carla_50%", page.Items[0].StageName)

	page, err = f.registrationService.List(ctx, contest.RegistrationFilter{Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 1)

	page, err = f.registrationService.List(ctx, contest.RegistrationFilter{Skip: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Empty(t, page.Items)
}

func TestListRegistrationsRejectsBadPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, filter := range []contest.RegistrationFilter{{Skip: -1}, {Limit: -5}, {Limit: 1001}} {
		_, err := f.registrationService.List(ctx, filter)
		assert.ErrorIs(t, err, contest.ErrInvalidArgument)
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ana@koe.mx", true},
		{"ana.ruiz+koe@correo.koe.mx", true},
		{"not-an-email", false},
		{"ana@localhost", false},
		{"ana@.koe.mx", false},
		{"ana@koe.mx.", false},
		{"@koe.mx", false},
		{"ana@", false},
		{"ana@@koe.mx", false},
		{"ana ruiz@koe.mx", false},
		{"Ana <ana@koe.mx>", false},
		{"ana@koe..mx", false},
		{"ana,beto@koe.mx", false},
		{"ana@koe.mx\n", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validEmail(tt.in), "validEmail(%q)", tt.in)
	}
}
