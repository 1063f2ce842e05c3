package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/httputil"
	"github.com/AdamBeresnev/koe-contest/internal/service"
	"github.com/AdamBeresnev/koe-contest/internal/utils"
)

const (
	// multipartMemory is how much of a form ParseMultipartForm keeps in memory before spilling to disk.
	multipartMemory = 8 << 20
	// multipartOverhead covers boundaries and the text fields sent next to the file.
	multipartOverhead = 1 << 20
)

type MediaHandler struct {
	media *service.MediaService
}

func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

type videoLinkRequest struct {
	URL             string  `json:"url"`
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	DurationSeconds *int    `json:"duration_seconds"`
}

type reviewVideoRequest struct {
	Approved     *bool   `json:"approved"`
	Featured     *bool   `json:"featured"`
	Observations *string `json:"observations"`
}

func (h *MediaHandler) UploadProof(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	file, header, err := formFile(w, r, h.media.Limits().MaxProofBytes)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	defer file.Close()

	registration, err := h.media.UploadProof(r.Context(), id, header.Header.Get("Content-Type"), file)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, registration)
}

func (h *MediaHandler) PaymentProof(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	proof, err := h.media.PaymentProof(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", proof.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(proof.Data)))
	w.Header().Set("Cache-Control", "private, no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	w.Write(proof.Data)
}

func (h *MediaHandler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	file, header, err := formFile(w, r, h.media.Limits().MaxVideoBytes)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	defer file.Close()

	upload := service.VideoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Title:       utils.StringOrNil(r.FormValue("title")),
		Description: utils.StringOrNil(r.FormValue("description")),
	}
	if raw := strings.TrimSpace(r.FormValue("duration_seconds")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.Error(w, r, contest.Invalid("duration_seconds", "duration_seconds must be an integer"))
			return
		}
		upload.DurationSeconds = &n
	}

	v, err := h.media.UploadVideo(r.Context(), id, upload, file)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, v)
}

func (h *MediaHandler) AttachVideoLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var req videoLinkRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	v, err := h.media.AttachVideoLink(r.Context(), id, service.VideoLinkInput{
		URL:             req.URL,
		Title:           req.Title,
		Description:     req.Description,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, v)
}

func (h *MediaHandler) ReviewVideo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var req reviewVideoRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	v, err := h.media.ReviewVideo(r.Context(), id, service.VideoReview{
		Approved:     req.Approved,
		Featured:     req.Featured,
		Observations: req.Observations,
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, v)
}

func (h *MediaHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	registrationID, err := queryUUID(r, "registration_id")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	approved, err := queryBool(r, "approved")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}

	videos, err := h.media.ListVideos(r.Context(), contest.VideoFilter{RegistrationID: registrationID, Approved: approved})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, videos)
}

// formFile parses the multipart body and returns its "file" part. The body is capped a little above limit
// so the service can report the exact size violation.
func formFile(w http.ResponseWriter, r *http.Request, limit int64) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, fmt.Errorf("upload exceeds %d MB: %w", limit>>20, contest.ErrPayloadTooLarge)
		}
		return nil, nil, contest.Invalid("file", "request must be multipart/form-data")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, contest.Invalid("file", "file is required")
	}
	return file, header, nil
}
