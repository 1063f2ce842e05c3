package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
)

type VideoStore struct {
	db *sqlx.DB
}

const (
	createVideoQuery = `
		INSERT INTO videos (id, registration_id, title, description, url, duration_seconds, format, size_mb, approved, featured, observations, uploaded_at, reviewed_at)
		VALUES (:id, :registration_id, :title, :description, :url, :duration_seconds, :format, :size_mb, :approved, :featured, :observations, :uploaded_at, :reviewed_at)
	`
	updateVideoReviewQuery = `
		UPDATE videos SET
		approved = :approved,
		featured = :featured,
		observations = :observations,
		reviewed_at = :reviewed_at
		WHERE id = :id
	`
	getVideoQuery = "SELECT * FROM videos WHERE id = ?"
)

func NewVideoStore(db *sqlx.DB) *VideoStore {
	return &VideoStore{db: db}
}

func (s *VideoStore) CreateVideo(ctx context.Context, tx *sqlx.Tx, v *contest.Video) error {
	_, err := tx.NamedExecContext(ctx, createVideoQuery, v)
	return err
}

func (s *VideoStore) UpdateVideoReview(ctx context.Context, tx *sqlx.Tx, v *contest.Video) error {
	return expectOne(tx.NamedExecContext(ctx, updateVideoReviewQuery, v))
}

func (s *VideoStore) GetVideoTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*contest.Video, error) {
	var v contest.Video
	if err := tx.GetContext(ctx, &v, tx.Rebind(getVideoQuery), id); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VideoStore) ListVideos(ctx context.Context, f contest.VideoFilter) ([]contest.Video, error) {
	query := "SELECT * FROM videos WHERE 1 = 1"
	var args []any
	if f.RegistrationID != nil {
		query += " AND registration_id = ?"
		args = append(args, *f.RegistrationID)
	}
	if f.Approved != nil {
		query += " AND approved = ?"
		args = append(args, *f.Approved)
	}
	query += " ORDER BY id DESC"

	videos := []contest.Video{}
	err := s.db.SelectContext(ctx, &videos, s.db.Rebind(query), args...)
	return videos, err
}
