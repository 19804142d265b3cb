package handlers

import (
	"context"
	"database/sql"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/ytakeda/fitcoach/internal/coach"
	"github.com/ytakeda/fitcoach/internal/llm"
	"github.com/ytakeda/fitcoach/internal/middleware"
	"github.com/ytakeda/fitcoach/internal/models"
)

const (
	maxUploadSize           = 8 << 20
	defaultMetricsListLimit = 30
	maxMetricsListLimit     = 100
)

var scanImageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Metrics handles InBody scan extraction and body-metrics history.
type Metrics struct {
	DB        *sql.DB
	UploadDir string
}

type extractRequest struct {
	ImageURL string `json:"imageUrl"`
}

// Extract runs vision extraction against an image the client already
// hosts somewhere. Nothing is persisted; the client reviews the values
// before saving.
// POST /api/extract-metrics
func (h *Metrics) Extract(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req extractRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := url.Parse(req.ImageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		jsonError(w, "imageUrl must be an http(s) URL", http.StatusBadRequest)
		return
	}

	provider, err := llm.NewProviderFromSettings(h.DB)
	if err != nil {
		log.Printf("handlers: create LLM provider: %v", err)
		coachError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), extractTimeout)
	defer cancel()

	extraction, err := coach.ExtractBodyMetrics(ctx, provider, req.ImageURL)
	if err != nil {
		log.Printf("handlers: extract metrics for user %s: %v", userID, err)
		coachError(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, extraction)
}

// Upload accepts an InBody scan image, stores it, runs vision extraction,
// and persists the result as the profile snapshot plus an append-only
// body-metrics row.
// POST /api/inbody
func (h *Metrics) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, "Image too large or malformed upload", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, "An image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		log.Printf("handlers: read scan upload for user %s: %v", userID, err)
		jsonError(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	mimeType := http.DetectContentType(image)
	ext, ok := scanImageExts[mimeType]
	if !ok {
		jsonError(w, "Unsupported image type; use JPEG, PNG, or WebP", http.StatusBadRequest)
		return
	}

	provider, err := llm.NewProviderFromSettings(h.DB)
	if err != nil {
		log.Printf("handlers: create LLM provider: %v", err)
		coachError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), extractTimeout)
	defer cancel()

	extraction, err := coach.ExtractBodyMetricsImage(ctx, provider, image, mimeType)
	if err != nil {
		log.Printf("handlers: extract scan for user %s: %v", userID, err)
		coachError(w, err)
		return
	}

	photoURL, err := h.storeScan(image, ext)
	if err != nil {
		log.Printf("handlers: store scan image for user %s: %v", userID, err)
		jsonError(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	if err := models.UpsertProfileFromScan(h.DB, userID, scanProfileUpdate(extraction)); err != nil {
		log.Printf("handlers: update profile from scan for user %s: %v", userID, err)
		jsonError(w, "Failed to save metrics", http.StatusInternalServerError)
		return
	}

	metrics, err := models.CreateBodyMetrics(h.DB, userID, scanMetricsParams(extraction, photoURL))
	if err != nil {
		log.Printf("handlers: save body metrics for user %s: %v", userID, err)
		jsonError(w, "Failed to save metrics", http.StatusInternalServerError)
		return
	}

	log.Printf("handlers: scan processed for user %s (metrics %d)", userID, metrics.ID)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"extraction": extraction,
		"metrics":    renderBodyMetrics(metrics),
	})
}

// storeScan writes the image under the upload dir with a random name and
// returns its public URL path.
func (h *Metrics) storeScan(image []byte, ext string) (string, error) {
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(h.UploadDir, name), image, 0o644); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

func scanProfileUpdate(e *coach.Extraction) models.ScanProfileUpdate {
	u := models.ScanProfileUpdate{
		Name:               models.NullString(e.Name),
		Height:             models.NullFloat(e.Height),
		Weight:             models.NullFloat(e.Weight),
		SkeletalMuscleMass: models.NullFloat(e.SkeletalMuscleMass),
		BodyFat:            models.NullFloat(e.BodyFatPercentage),
		BodyFatMass:        models.NullFloat(e.BodyFatMass),
		SMI:                models.NullFloat(e.SMI),
		BMR:                models.NullFloat(e.BMR),
		VisceralFatLevel:   models.NullFloat(e.VisceralFatLevel),
		InBodyScore:        models.NullFloat(e.InBodyScore),
	}
	if e.Age != nil {
		age := int64(math.Round(*e.Age))
		u.Age = models.NullInt(&age)
	}
	return u
}

func scanMetricsParams(e *coach.Extraction, photoURL string) models.BodyMetricsParams {
	return models.BodyMetricsParams{
		Weight:             models.NullFloat(e.Weight),
		BodyFat:            models.NullFloat(e.BodyFatPercentage),
		BodyFatMass:        models.NullFloat(e.BodyFatMass),
		SkeletalMuscleMass: models.NullFloat(e.SkeletalMuscleMass),
		SMI:                models.NullFloat(e.SMI),
		BMR:                models.NullFloat(e.BMR),
		VisceralFatLevel:   models.NullFloat(e.VisceralFatLevel),
		InBodyScore:        models.NullFloat(e.InBodyScore),
		PhotoURL:           models.NullString(&photoURL),
	}
}

// List returns the user's measurement history, newest first.
// GET /api/metrics
func (h *Metrics) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	limit := defaultMetricsListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxMetricsListLimit {
			jsonError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	rows, err := models.ListBodyMetrics(h.DB, userID, limit)
	if err != nil {
		log.Printf("handlers: list body metrics for user %s: %v", userID, err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	out := make([]*bodyMetricsJSON, 0, len(rows))
	for _, m := range rows {
		out = append(out, renderBodyMetrics(m))
	}
	jsonResponse(w, http.StatusOK, map[string]any{"metrics": out})
}
