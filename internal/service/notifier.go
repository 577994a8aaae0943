package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/foodbridge/pickup-api/internal/models"
)

// Notifier delivers pickup confirmations to households. Message transport is
// an external collaborator; the API depends only on this interface.
type Notifier interface {
	SendPickupConfirmation(ctx context.Context, household models.Household, parcels []models.Parcel) error
}

// LogNotifier records confirmations in the log. It stands in until an SMS
// gateway is wired up.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs the logging stand-in.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// SendPickupConfirmation logs the confirmation that would be sent.
func (n *LogNotifier) SendPickupConfirmation(ctx context.Context, household models.Household, parcels []models.Parcel) error {
	dates := make([]string, len(parcels))
	for i, p := range parcels {
		dates[i] = p.PickupDate.Format("2006-01-02")
	}
	n.logger.Info("pickup confirmation",
		zap.String("household_id", household.ID),
		zap.String("reference_code", household.ReferenceCode),
		zap.String("phone", household.Phone),
		zap.Strings("dates", dates))
	return nil
}
