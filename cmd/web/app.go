package main

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/AdamBeresnev/koe-contest/internal/api"
	"github.com/AdamBeresnev/koe-contest/internal/auth"
	"github.com/AdamBeresnev/koe-contest/internal/config"
	"github.com/AdamBeresnev/koe-contest/internal/handler"
	"github.com/AdamBeresnev/koe-contest/internal/media"
	"github.com/AdamBeresnev/koe-contest/internal/service"
	"github.com/AdamBeresnev/koe-contest/internal/store"
)

const mediaURLPrefix = "/media"

// app holds everything the router needs.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	db       *sqlx.DB
	spec     *openapi3.T
	mediaDir string

	authService *service.AuthService
	userService *service.UserService

	registrations *handler.RegistrationHandler
	media         *handler.MediaHandler
	venues        *handler.VenueHandler
	rounds        *handler.RoundHandler
	results       *handler.ResultHandler
	statistics    *handler.StatisticsHandler
	auth          *handler.AuthHandler
	audit         *handler.AuditHandler
}

func newApp(cfg config.Config, logger *zap.Logger, conn *sqlx.DB, blobs media.BlobStore, mediaDir string) (*app, error) {
	spec, err := api.Load()
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	policy, err := service.ParseAuditCreatePolicy(cfg.AuditCreatePolicy)
	if err != nil {
		return nil, err
	}

	registrationStore := store.NewRegistrationStore(conn)
	venueStore := store.NewVenueStore(conn)
	roundStore := store.NewRoundStore(conn)
	resultStore := store.NewResultStore(conn)
	videoStore := store.NewVideoStore(conn)
	auditStore := store.NewAuditStore(conn)
	userStore := store.NewUserStore(conn)

	registrationService := service.NewRegistrationService(conn, registrationStore, venueStore, auditStore, policy)
	mediaService := service.NewMediaService(conn, registrationStore, videoStore, auditStore, blobs, service.MediaLimits{
		MaxVideoBytes: cfg.MaxVideoBytes,
		MaxProofBytes: cfg.MaxProofBytes,
	})
	authService := service.NewAuthService(userStore, tokens)
	userService := service.NewUserService(conn, userStore, auditStore)

	return &app{
		cfg:         cfg,
		logger:      logger,
		db:          conn,
		spec:        spec,
		mediaDir:    mediaDir,
		authService: authService,
		userService: userService,

		registrations: handler.NewRegistrationHandler(registrationService),
		media:         handler.NewMediaHandler(mediaService),
		venues:        handler.NewVenueHandler(service.NewVenueService(conn, venueStore, registrationStore, auditStore)),
		rounds:        handler.NewRoundHandler(service.NewRoundService(conn, roundStore, venueStore, auditStore)),
		results:       handler.NewResultHandler(service.NewResultService(conn, resultStore, registrationStore, roundStore, auditStore)),
		statistics:    handler.NewStatisticsHandler(service.NewStatisticsService(conn, store.NewStatisticsStore(conn))),
		auth:          handler.NewAuthHandler(authService, userService),
		audit:         handler.NewAuditHandler(service.NewAuditService(auditStore)),
	}, nil
}

// newBlobStore returns the configured media backend. The directory is set only for the local backend,
// whose files the server itself serves.
func newBlobStore(ctx context.Context, cfg config.Config) (media.BlobStore, string, error) {
	switch cfg.MediaBackend {
	case media.BackendGCS:
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("init gcs client: %w", err)
		}
		return media.NewGCSStore(client, cfg.MediaBucket), "", nil
	case media.BackendLocal:
		local, err := media.NewLocalStore(cfg.MediaLocalDir, mediaURLPrefix)
		if err != nil {
			return nil, "", err
		}
		return local, local.Dir, nil
	default:
		return nil, "", fmt.Errorf("unsupported media backend %q", cfg.MediaBackend)
	}
}
