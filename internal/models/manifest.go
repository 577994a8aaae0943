package models

import "time"

// ManifestFormat enumerates supported export formats for pickup manifests.
type ManifestFormat string

const (
	ManifestFormatCSV ManifestFormat = "csv"
	ManifestFormatPDF ManifestFormat = "pdf"
)

// ManifestStatus captures background job lifecycle states.
type ManifestStatus string

const (
	ManifestStatusQueued     ManifestStatus = "QUEUED"
	ManifestStatusProcessing ManifestStatus = "PROCESSING"
	ManifestStatusFinished   ManifestStatus = "FINISHED"
	ManifestStatusFailed     ManifestStatus = "FAILED"
)

// ManifestJob is the persisted metadata of one asynchronous export of a
// location's pickup list for a single day.
type ManifestJob struct {
	ID           string         `db:"id" json:"id"`
	LocationID   string         `db:"location_id" json:"location_id"`
	ManifestDate time.Time      `db:"manifest_date" json:"manifest_date"`
	Format       ManifestFormat `db:"format" json:"format"`
	Status       ManifestStatus `db:"status" json:"status"`
	Progress     int            `db:"progress" json:"progress"`
	FilePath     *string        `db:"file_path" json:"-"`
	ResultURL    *string        `db:"result_url" json:"result_url,omitempty"`
	ErrorMessage *string        `db:"error_message" json:"error,omitempty"`
	CreatedBy    string         `db:"created_by" json:"created_by"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	StartedAt    *time.Time     `db:"started_at" json:"started_at,omitempty"`
	FinishedAt   *time.Time     `db:"finished_at" json:"finished_at,omitempty"`
}

// ManifestRow is one line of a rendered manifest: a parcel due for pickup.
type ManifestRow struct {
	HouseholdCode string `db:"household_code"`
	HouseholdName string `db:"household_name"`
	Earliest      string `db:"earliest"`
	Latest        string `db:"latest"`
}
