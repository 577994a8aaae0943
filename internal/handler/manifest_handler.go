package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodbridge/pickup-api/internal/dto"
	"github.com/foodbridge/pickup-api/internal/models"
	"github.com/foodbridge/pickup-api/internal/service"
	appErrors "github.com/foodbridge/pickup-api/pkg/errors"
	"github.com/foodbridge/pickup-api/pkg/response"
)

type manifestExporter interface {
	CreateJob(ctx context.Context, req dto.CreateManifestRequest, actorID string) (*dto.ManifestJobResponse, error)
	GetStatus(ctx context.Context, id string) (*dto.ManifestStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ManifestDownload, error)
}

// ManifestHandler exposes asynchronous pickup manifest exports.
type ManifestHandler struct {
	manifests manifestExporter
}

// NewManifestHandler constructs ManifestHandler.
func NewManifestHandler(manifests manifestExporter) *ManifestHandler {
	return &ManifestHandler{manifests: manifests}
}

// Create godoc
// @Summary Queue a pickup manifest export
// @Tags Manifests
// @Accept json
// @Produce json
// @Param payload body dto.CreateManifestRequest true "Manifest payload"
// @Success 202 {object} response.Envelope
// @Router /manifests [post]
func (h *ManifestHandler) Create(c *gin.Context) {
	var req dto.CreateManifestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	job, err := h.manifests.CreateJob(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Poll a manifest export job
// @Tags Manifests
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /manifests/{id} [get]
func (h *ManifestHandler) Status(c *gin.Context) {
	status, err := h.manifests.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a finished manifest via signed token
// @Tags Manifests
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /manifests/download [get]
func (h *ManifestHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token query parameter is required"))
		return
	}
	result, err := h.manifests.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	size := int64(-1)
	if info, err := result.File.Stat(); err == nil {
		size = info.Size()
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, size, manifestMimeType(result.Format), result.File, nil)
}

func manifestMimeType(format models.ManifestFormat) string {
	if format == models.ManifestFormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}
