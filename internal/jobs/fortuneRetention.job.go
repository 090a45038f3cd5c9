package jobs

import (
	"context"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/repositories"
)

// FortuneRetentionJob purges visitor-preview fortunes past the retention
// window. Preview rows are stored per user so repeat fetches on the same
// day stay consistent, but they carry only teaser data and get replaced
// by full readings once the user binds a bracelet, so old ones can go.
type FortuneRetentionJob struct {
	fortuneRepo   repositories.FortuneRepository
	retentionDays int
	log           logger.Logger
}

func NewFortuneRetentionJob(
	fortuneRepo repositories.FortuneRepository,
	cfg config.Config,
) *FortuneRetentionJob {
	return &FortuneRetentionJob{
		fortuneRepo:   fortuneRepo,
		retentionDays: cfg.PreviewRetentionDays,
		log:           logger.New("fortuneRetentionJob"),
	}
}

func (j *FortuneRetentionJob) Name() string {
	return "fortune-retention"
}

// Runs daily during the quiet hours.
func (j *FortuneRetentionJob) Schedule() string {
	return "0 4 * * *"
}

func (j *FortuneRetentionJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	cutoff := time.Now().UTC().AddDate(0, 0, -j.retentionDays)
	deleted, err := j.fortuneRepo.DeleteOldPreviews(ctx, cutoff)
	if err != nil {
		return err
	}

	if deleted > 0 {
		log.Info("Purged preview fortunes", "deleted", deleted, "cutoff", cutoff.Format("2006-01-02"))
	}

	return nil
}
