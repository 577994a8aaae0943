package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foodbridge/pickup-api/internal/models"
	"github.com/foodbridge/pickup-api/pkg/export"
	"github.com/foodbridge/pickup-api/pkg/storage"
)

type manifestRowSource interface {
	ManifestRows(ctx context.Context, locationID string, date time.Time) ([]models.ManifestRow, error)
}

type locationFinder interface {
	FindByID(ctx context.Context, id string) (*models.PickupLocation, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ManifestExportConfig tunes manifest rendering.
type ManifestExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ManifestExportResult captures successful generation metadata.
type ManifestExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ManifestFormat
	ExpiresAt    time.Time
}

// ManifestExporter renders a location's pickup list for one day and persists
// the file behind a signed download URL.
type ManifestExporter struct {
	parcels   manifestRowSource
	locations locationFinder
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ManifestExportConfig
}

// NewManifestExporter constructs a ManifestExporter.
func NewManifestExporter(parcels manifestRowSource, locations locationFinder, store fileStorage, signer *storage.SignedURLSigner, cfg ManifestExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ManifestExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ManifestExporter{
		parcels:   parcels,
		locations: locations,
		storage:   store,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate renders the manifest for a job and stores the file.
func (s *ManifestExporter) Generate(ctx context.Context, job *models.ManifestJob) (*ManifestExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Format {
	case models.ManifestFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ManifestFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ManifestExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/manifests/download?token=%s", prefix, token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ManifestExporter) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ManifestExporter) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored manifest file.
func (s *ManifestExporter) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ManifestExporter) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ManifestExporter) buildDataset(ctx context.Context, job *models.ManifestJob) (export.Dataset, string, error) {
	location, err := s.locations.FindByID(ctx, job.LocationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return export.Dataset{}, "", fmt.Errorf("pickup location %s not found", job.LocationID)
		}
		return export.Dataset{}, "", fmt.Errorf("load pickup location: %w", err)
	}

	rows, err := s.parcels.ManifestRows(ctx, job.LocationID, job.ManifestDate)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load manifest rows: %w", err)
	}

	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"Reference":  row.HouseholdCode,
			"Household":  row.HouseholdName,
			"From":       row.Earliest,
			"Until":      row.Latest,
			"Collected?": "",
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Reference", "Household", "From", "Until", "Collected?"},
		Rows:    dataRows,
	}
	title := fmt.Sprintf("Pickup Manifest %s %s", location.Name, job.ManifestDate.Format("02 Jan 2006"))
	return dataset, title, nil
}

func (s *ManifestExporter) buildFilename(job *models.ManifestJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("manifest_%s_%s_%s.%s",
		sanitizeFilename(job.LocationID), job.ManifestDate.Format("20060102"), timestamp, job.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
