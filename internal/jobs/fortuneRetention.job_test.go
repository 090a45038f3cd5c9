package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFortuneRepo struct {
	repositories.FortuneRepository
	cutoff  time.Time
	deleted int64
}

func (f *fakeFortuneRepo) DeleteOldPreviews(_ context.Context, before time.Time) (int64, error) {
	f.cutoff = before
	return f.deleted, nil
}

func TestFortuneRetentionJob(t *testing.T) {
	repo := &fakeFortuneRepo{deleted: 7}
	job := NewFortuneRetentionJob(repo, config.Config{PreviewRetentionDays: 30})

	assert.Equal(t, "fortune-retention", job.Name())
	assert.Equal(t, "0 4 * * *", job.Schedule())

	require.NoError(t, job.Execute(context.Background()))

	want := time.Now().UTC().AddDate(0, 0, -30)
	assert.WithinDuration(t, want, repo.cutoff, time.Minute)
}
