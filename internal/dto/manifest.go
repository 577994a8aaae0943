package dto

import "github.com/foodbridge/pickup-api/internal/models"

// CreateManifestRequest captures POST /manifests payload.
type CreateManifestRequest struct {
	LocationID string                `json:"locationId" validate:"required"`
	Date       string                `json:"date" validate:"required,datetime=2006-01-02"`
	Format     models.ManifestFormat `json:"format" validate:"required,oneof=csv pdf"`
}

// ManifestJobResponse is returned after enqueueing a manifest export.
type ManifestJobResponse struct {
	ID       string                `json:"id"`
	Status   models.ManifestStatus `json:"status"`
	Progress int                   `json:"progress"`
}

// ManifestStatusResponse exposes job progress metadata.
type ManifestStatusResponse struct {
	ID        string                `json:"id"`
	Status    models.ManifestStatus `json:"status"`
	Progress  int                   `json:"progress"`
	ResultURL *string               `json:"resultUrl,omitempty"`
	Error     *string               `json:"error,omitempty"`
}
