package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/logging"
	"github.com/AdamBeresnev/koe-contest/internal/media"
	"github.com/AdamBeresnev/koe-contest/internal/store"
	"github.com/AdamBeresnev/koe-contest/internal/utils"
	"github.com/AdamBeresnev/koe-contest/internal/video"
)

const (
	DefaultMaxVideoBytes int64 = 50 << 20
	DefaultMaxProofBytes int64 = 10 << 20
)

type MediaLimits struct {
	MaxVideoBytes int64
	MaxProofBytes int64
}

// MediaService accepts payment proofs and performance videos for registrations.
type MediaService struct {
	db            *sqlx.DB
	registrations *store.RegistrationStore
	videos        *store.VideoStore
	audit         AuditWriter
	blobs         media.BlobStore
	limits        MediaLimits
}

func NewMediaService(db *sqlx.DB, registrations *store.RegistrationStore, videos *store.VideoStore, audit AuditWriter, blobs media.BlobStore, limits MediaLimits) *MediaService {
	if limits.MaxVideoBytes <= 0 {
		limits.MaxVideoBytes = DefaultMaxVideoBytes
	}
	if limits.MaxProofBytes <= 0 {
		limits.MaxProofBytes = DefaultMaxProofBytes
	}
	return &MediaService{db: db, registrations: registrations, videos: videos, audit: audit, blobs: blobs, limits: limits}
}

func (s *MediaService) Limits() MediaLimits {
	return s.limits
}

type VideoUpload struct {
	Filename        string
	ContentType     string
	Title           *string
	Description     *string
	DurationSeconds *int
}

type VideoLinkInput struct {
	URL             string
	Title           *string
	Description     *string
	DurationSeconds *int
}

type VideoReview struct {
	Approved     *bool
	Featured     *bool
	Observations *string
}

// UploadProof stores an image inline on the registration as a data URI.
func (s *MediaService) UploadProof(ctx context.Context, registrationID uuid.UUID, contentType string, r io.Reader) (*contest.Registration, error) {
	mediaType, err := declaredType(contentType, "image/")
	if err != nil {
		return nil, contest.Invalid("file", "payment proof must be an image")
	}

	data, err := readLimited(r, s.limits.MaxProofBytes)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, contest.Invalid("file", "file is empty")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer tx.Rollback()

	registration, err := s.registrations.GetRegistrationTx(ctx, tx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", store.Classify(err))
	}

	previous := map[string]any{"has_payment_proof": registration.HasPaymentProof()}
	registration.PaymentProof = utils.Ptr("data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data))
	registration.UpdatedAt = now()

	if err := s.registrations.UpdateRegistration(ctx, tx, registration); err != nil {
		return nil, fmt.Errorf("failed to store payment proof: %w", store.Classify(err))
	}

	next := map[string]any{"has_payment_proof": true, "content_type": mediaType, "size_bytes": len(data)}
	err = appendAudit(ctx, tx, s.audit, contest.ActionProofUploaded, contest.TableRegistrations, registrationID.String(), previous, next)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, store.Classify(err)
	}
	return registration, nil
}

type PaymentProof struct {
	ContentType string
	Data        []byte
}

// PaymentProof decodes the proof image stored on a registration.
func (s *MediaService) PaymentProof(ctx context.Context, registrationID uuid.UUID) (*PaymentProof, error) {
	registration, err := s.registrations.GetRegistration(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", store.Classify(err))
	}
	if !registration.HasPaymentProof() {
		return nil, fmt.Errorf("registration %s has no payment proof: %w", registrationID, contest.ErrNotFound)
	}

	header, encoded, ok := strings.Cut(*registration.PaymentProof, ",")
	mediaType, isBase64 := strings.CutSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if !ok || !isBase64 || !strings.HasPrefix(header, "data:image/") {
		return nil, fmt.Errorf("payment proof of %s is not an image data URI", registrationID)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payment proof: %w", err)
	}
	return &PaymentProof{ContentType: mediaType, Data: data}, nil
}

// UploadVideo writes the blob first and removes it again when the video row cannot be saved.
func (s *MediaService) UploadVideo(ctx context.Context, registrationID uuid.UUID, upload VideoUpload, r io.Reader) (*contest.Video, error) {
	mediaType, err := declaredType(upload.ContentType, "video/")
	if err != nil {
		return nil, contest.Invalid("file", "file must be a video")
	}
	if err := validateVideoMeta(upload.Title, upload.DurationSeconds); err != nil {
		return nil, err
	}

	data, err := readLimited(r, s.limits.MaxVideoBytes)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, contest.Invalid("file", "file is empty")
	}

	if _, err := s.registrations.GetRegistration(ctx, registrationID); err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", store.Classify(err))
	}

	ext := videoExtension(upload.Filename, mediaType)
	v := &contest.Video{
		ID:              newID(),
		RegistrationID:  registrationID,
		Title:           utils.TrimmedOrNil(upload.Title),
		Description:     utils.TrimmedOrNil(upload.Description),
		DurationSeconds: upload.DurationSeconds,
		Format:          utils.Ptr(ext),
		SizeMB:          utils.Ptr(utils.Megabytes(int64(len(data)))),
		UploadedAt:      now(),
	}
	key := fmt.Sprintf("videos/%s/%s.%s", registrationID, v.ID, ext)

	url, err := s.blobs.Put(ctx, key, mediaType, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store video: %w: %w", contest.ErrStoreUnavailable, err)
	}
	v.URL = url

	if err := s.insertVideo(ctx, contest.ActionVideoUploaded, v); err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			logging.FromContextOr(ctx, zap.NewNop()).Error("failed to remove orphaned video blob",
				zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	return v, nil
}

// AttachVideoLink registers an externally hosted video.
func (s *MediaService) AttachVideoLink(ctx context.Context, registrationID uuid.UUID, input VideoLinkInput) (*contest.Video, error) {
	info := video.GetEmbedInfo(input.URL)
	if info.Type == video.EmbedTypeNone {
		return nil, contest.Invalid("url", "url must be an absolute http or https link")
	}
	if err := validateVideoMeta(input.Title, input.DurationSeconds); err != nil {
		return nil, err
	}

	if _, err := s.registrations.GetRegistration(ctx, registrationID); err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", store.Classify(err))
	}

	v := &contest.Video{
		ID:              newID(),
		RegistrationID:  registrationID,
		Title:           utils.TrimmedOrNil(input.Title),
		Description:     utils.TrimmedOrNil(input.Description),
		URL:             info.URL,
		DurationSeconds: input.DurationSeconds,
		Format:          utils.StringOrNil(info.Format()),
		UploadedAt:      now(),
	}
	if err := s.insertVideo(ctx, contest.ActionVideoLinked, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *MediaService) ReviewVideo(ctx context.Context, id uuid.UUID, review VideoReview) (*contest.Video, error) {
	if review.Approved == nil && review.Featured == nil && review.Observations == nil {
		return nil, contest.Invalid("payload", "at least one field must be provided")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, store.Classify(err)
	}
	defer tx.Rollback()

	v, err := s.videos.GetVideoTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", store.Classify(err))
	}

	previous := map[string]any{"approved": v.Approved, "featured": v.Featured, "observations": v.Observations}
	if review.Approved != nil {
		v.Approved = *review.Approved
	}
	if review.Featured != nil {
		v.Featured = *review.Featured
	}
	if review.Observations != nil {
		v.Observations = utils.StringOrNil(*review.Observations)
	}
	v.ReviewedAt = utils.Ptr(now())

	if err := s.videos.UpdateVideoReview(ctx, tx, v); err != nil {
		return nil, fmt.Errorf("failed to update video: %w", store.Classify(err))
	}

	next := map[string]any{"approved": v.Approved, "featured": v.Featured, "observations": v.Observations}
	if err := appendAudit(ctx, tx, s.audit, contest.ActionVideoReviewed, contest.TableVideos, id.String(), previous, next); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, store.Classify(err)
	}
	return v, nil
}

func (s *MediaService) ListVideos(ctx context.Context, f contest.VideoFilter) ([]contest.Video, error) {
	videos, err := s.videos.ListVideos(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", store.Classify(err))
	}
	return videos, nil
}

func (s *MediaService) insertVideo(ctx context.Context, action string, v *contest.Video) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return store.Classify(err)
	}
	defer tx.Rollback()

	if err := s.videos.CreateVideo(ctx, tx, v); err != nil {
		return fmt.Errorf("failed to create video: %w", store.Classify(err))
	}
	if err := appendAudit(ctx, tx, s.audit, action, contest.TableVideos, v.ID.String(), nil, v); err != nil {
		return err
	}
	return store.Classify(tx.Commit())
}

// declaredType parses a Content-Type header and requires the given top-level prefix, e.g. "image/".
func declaredType(contentType, prefix string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(mediaType, prefix) || len(mediaType) == len(prefix) {
		return "", fmt.Errorf("unexpected media type %q", mediaType)
	}
	return mediaType, nil
}

// readLimited reads at most max bytes; one byte more means the payload is too large.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w: %w", contest.ErrInvalidArgument, err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("upload exceeds %d MB: %w", max>>20, contest.ErrPayloadTooLarge)
	}
	return data, nil
}

func videoExtension(filename, mediaType string) string {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."); ext != "" && isAlnum(ext) {
		return ext
	}
	sub := strings.TrimPrefix(mediaType, "video/")
	switch sub {
	case "quicktime":
		return "mov"
	case "x-msvideo":
		return "avi"
	case "x-matroska":
		return "mkv"
	}
	if isAlnum(sub) {
		return sub
	}
	return "bin"
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return s != ""
}

func validateVideoMeta(title *string, duration *int) error {
	fe := contest.FieldErrors{}
	if t := utils.TrimmedOrNil(title); t != nil && len([]rune(*t)) > maxNameLength {
		fe.Add("title", fmt.Sprintf("title must be at most %d characters", maxNameLength))
	}
	if duration != nil && *duration < 0 {
		fe.Add("duration_seconds", "duration_seconds must not be negative")
	}
	return fe.Err()
}
