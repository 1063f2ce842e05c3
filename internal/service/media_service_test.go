package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/media"
	"github.com/AdamBeresnev/koe-contest/internal/utils"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newMediaService(t *testing.T, f *fixture, limits MediaLimits) (*MediaService, string) {
	t.Helper()
	dir := t.TempDir()
	blobs, err := media.NewLocalStore(dir, "/media")
	require.NoError(t, err)
	return NewMediaService(f.db, f.registrations, f.videoStore, f.audit, blobs, limits), dir
}

func storedFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestUploadProof(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.adminContext(t)
	reg := f.registration(t, context.Background(), "Ana", contest.CategoryKoeSan, nil)
	svc, _ := newMediaService(t, f, MediaLimits{})

	updated, err := svc.UploadProof(ctx, reg.ID, "image/png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	require.True(t, updated.HasPaymentProof())
	assert.True(t, strings.HasPrefix(*updated.PaymentProof, "data:image/png;base64,"))
	assert.Equal(t, contest.StatusPending, updated.Status)

	events := f.events(t, reg.ID.String())
	require.Len(t, events, 1)
	assert.Equal(t, contest.ActionProofUploaded, events[0].Action)
	assert.NotContains(t, *events[0].NewValues, "base64")

	proof, err := svc.PaymentProof(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/png", proof.ContentType)
	assert.Equal(t, pngHeader, proof.Data)
}

func TestPaymentProofMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.registration(t, ctx, "Ana", contest.CategoryKoeSan, nil)
	svc, _ := newMediaService(t, f, MediaLimits{})

	_, err := svc.PaymentProof(ctx, reg.ID)
	assert.ErrorIs(t, err, contest.ErrNotFound)

	_, err = svc.PaymentProof(ctx, uuid.New())
	assert.ErrorIs(t, err, contest.ErrNotFound)
}

func TestUploadProofRejectsWithoutMutation(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.adminContext(t)
	reg := f.registration(t, context.Background(), "Ana", contest.CategoryKoeSan, nil)
	svc, _ := newMediaService(t, f, MediaLimits{MaxProofBytes: 16})

	tests := []struct {
		name        string
		id          uuid.UUID
		contentType string
		body        []byte
		want        error
	}{
		{"not an image", reg.ID, "application/pdf", pngHeader, contest.ErrInvalidArgument},
		{"missing content type", reg.ID, "", pngHeader, contest.ErrInvalidArgument},
		{"empty file", reg.ID, "image/png", nil, contest.ErrInvalidArgument},
		{"too large", reg.ID, "image/jpeg", bytes.Repeat([]byte{1}, 17), contest.ErrPayloadTooLarge},
		{"unknown registration", uuid.New(), "image/png", pngHeader, contest.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UploadProof(ctx, tt.id, tt.contentType, bytes.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	stored, err := f.registrationService.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.False(t, stored.HasPaymentProof())
	assert.Empty(t, f.events(t, reg.ID.String()))
}

func TestUploadVideo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.registration(t, ctx, "Ana", contest.CategoryKoeSan, nil)
	svc, dir := newMediaService(t, f, MediaLimits{})

	payload := bytes.Repeat([]byte{0x42}, 3<<20)
	v, err := svc.UploadVideo(ctx, reg.ID, VideoUpload{
		Filename:        "Audicion.MP4",
		ContentType:     "video/mp4",
		Title:           utils.Ptr(" Audición "),
		DurationSeconds: utils.Ptr(95),
	}, bytes.NewReader(payload))
	require.NoError(t, err)

	assert.Equal(t, "mp4", *v.Format)
	assert.InDelta(t, 3.0, *v.SizeMB, 1e-9)
	assert.Equal(t, "Audición", *v.Title)
	assert.Equal(t, "/media/videos/"+reg.ID.String()+"/"+v.ID.String()+".mp4", v.URL)
	assert.False(t, v.Approved)

	files := storedFiles(t, dir)
	require.Len(t, files, 1)
	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Len(t, content, len(payload))

	listed, err := svc.ListVideos(ctx, contest.VideoFilter{RegistrationID: &reg.ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, v.ID, listed[0].ID)

	events := f.events(t, v.ID.String())
	require.Len(t, events, 1)
	assert.Equal(t, contest.ActionVideoUploaded, events[0].Action)
	assert.Equal(t, contest.TableVideos, events[0].TableName)
	assert.Nil(t, events[0].PreviousValues)
}

func TestUploadVideoDefaultSizeLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.registration(t, ctx, "Ana", contest.CategoryKoeSan, nil)
	svc, dir := newMediaService(t, f, MediaLimits{})

	_, err := svc.UploadVideo(ctx, reg.ID, VideoUpload{Filename: "a.mp4", ContentType: "video/mp4"},
		bytes.NewReader(make([]byte, DefaultMaxVideoBytes+1)))
	assert.ErrorIs(t, err, contest.ErrPayloadTooLarge)
	assert.Empty(t, storedFiles(t, dir))

	v, err := svc.UploadVideo(ctx, reg.ID, VideoUpload{Filename: "a.mp4", ContentType: "video/mp4"},
		bytes.NewReader(make([]byte, DefaultMaxVideoBytes)))
	require.NoError(t, err)
	assert.InDelta(t, 50.0, *v.SizeMB, 1e-9)
	assert.Len(t, storedFiles(t, dir), 1)
}

func TestUploadVideoRollsBackWhenAuditFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.registration(t, ctx, "Ana", contest.CategoryKoeSan, nil)
	dir := t.TempDir()
	blobs, err := media.NewLocalStore(dir, "/media")
	require.NoError(t, err)
	svc := NewMediaService(f.db, f.registrations, f.videoStore, failingAuditWriter{}, blobs, MediaLimits{})

	_, err = svc.UploadVideo(ctx, reg.ID, VideoUpload{Filename: "a.mp4", ContentType: "video/mp4"},
		bytes.NewReader([]byte("mp4-bytes")))
	require.Error(t, err)
	assert.Empty(t, storedFiles(t, dir))

	_, err = svc.AttachVideoLink(ctx, reg.ID, VideoLinkInput{URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.Error(t, err)

	listed, err := svc.ListVideos(ctx, contest.VideoFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestUploadVideoRejectsWithoutMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.registration(t, ctx, "Ana", contest.CategoryKoeSan, nil)
	svc, dir := newMediaService(t, f, MediaLimits{MaxVideoBytes: 1 << 20})

	_, err := svc.UploadVideo(ctx, reg.ID, VideoUpload{Filename: "a.mp4", ContentType: "video/mp4"},
		bytes.NewReader(make([]byte, 1<<20+1)))
	assert.ErrorIs(t, err, contest.ErrPayloadTooLarge)

	_, err = svc.UploadVideo(ctx, reg.ID, VideoUpload{Filename: "a.png", ContentType: "image/png"},
		bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, contest.ErrInvalidArgument)

	_, err = svc.UploadVideo(ctx, uuid.New(), VideoUpload{Filename: "a.mp4", ContentType: "video/mp4"},
		bytes.NewReader([]byte("data")))
	assert.ErrorIs(t, err, contest.ErrNotFound)

	assert.Empty(t, storedFiles(t, dir))
	listed, err := svc.ListVideos(ctx, contest.VideoFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestUploadVideoRemovesBlobWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.registration(t, ctx, "Ana", contest.CategoryKoeSan, nil)
	svc, dir := newMediaService(t, f, MediaLimits{})

	_, err := f.db.Exec("DROP TABLE videos")
	require.NoError(t, err)

	_, err = svc.UploadVideo(ctx, reg.ID, VideoUpload{Filename: "a.webm", ContentType: "video/webm"},
		bytes.NewReader([]byte("webm-bytes")))
	require.Error(t, err)
	assert.Empty(t, storedFiles(t, dir))
}

func TestAttachVideoLinkAndReview(t *testing.T) {
	f := newFixture(t)
	ctx, admin := f.adminContext(t)
	reg := f.registration(t, context.Background(), "Ana", contest.CategoryKoeSan, nil)
	svc, _ := newMediaService(t, f, MediaLimits{})

	_, err := svc.AttachVideoLink(ctx, reg.ID, VideoLinkInput{URL: "ftp://example.com/a.mp4"})
	assert.ErrorIs(t, err, contest.ErrInvalidArgument)

	v, err := svc.AttachVideoLink(ctx, reg.ID, VideoLinkInput{URL: "https://youtu.be/dQw4w9WgXcQ"})
	require.NoError(t, err)
	assert.Equal(t, "youtube", *v.Format)
	assert.Contains(t, v.URL, "dQw4w9WgXcQ")

	_, err = svc.ReviewVideo(ctx, v.ID, VideoReview{})
	assert.ErrorIs(t, err, contest.ErrInvalidArgument)

	reviewed, err := svc.ReviewVideo(ctx, v.ID, VideoReview{Approved: utils.Ptr(true), Featured: utils.Ptr(true)})
	require.NoError(t, err)
	assert.True(t, reviewed.Approved)
	assert.True(t, reviewed.Featured)
	require.NotNil(t, reviewed.ReviewedAt)

	events := f.events(t, v.ID.String())
	require.Len(t, events, 2)
	assert.Equal(t, contest.ActionVideoReviewed, events[0].Action)
	assert.Equal(t, contest.TableVideos, events[0].TableName)
	assert.Equal(t, admin.ID, *events[0].UserID)
	assert.Equal(t, contest.ActionVideoLinked, events[1].Action)
	assert.Nil(t, events[1].PreviousValues)

	approved, err := svc.ListVideos(ctx, contest.VideoFilter{Approved: utils.Ptr(true)})
	require.NoError(t, err)
	assert.Len(t, approved, 1)

	_, err = svc.ReviewVideo(ctx, uuid.New(), VideoReview{Approved: utils.Ptr(false)})
	assert.ErrorIs(t, err, contest.ErrNotFound)
}
