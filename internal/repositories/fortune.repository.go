package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/database"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	. "github.com/pawaovo/nfc-bracelet-fortune/internal/models"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	FORTUNE_CACHE_EXPIRY = 24 * time.Hour
	FORTUNE_CACHE_PREFIX = "fortune:"
)

// ScoreEntry is the projection used for streak and average calculations.
type ScoreEntry struct {
	Date         datatypes.Date `json:"date"`
	OverallScore int            `json:"overallScore"`
}

type FortuneRepository interface {
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*DailyFortune, error)
	Create(ctx context.Context, fortune *DailyFortune) error
	Upsert(ctx context.Context, fortune *DailyFortune) error
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]DailyFortune, int64, error)
	ListScoresByUser(ctx context.Context, userID uuid.UUID) ([]ScoreEntry, error)
	DeleteOldPreviews(ctx context.Context, before time.Time) (int64, error)
}

type fortuneRepository struct {
	db  database.DB
	log logger.Logger
}

func NewFortuneRepository(db database.DB) FortuneRepository {
	return &fortuneRepository{
		db:  db,
		log: logger.New("fortuneRepository"),
	}
}

func fortuneCacheKey(userID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s%s:%s", FORTUNE_CACHE_PREFIX, userID, utils.DateKey(utils.DateOf(date)))
}

// GetByUserAndDate returns (nil, nil) when no fortune exists for the day.
func (r *fortuneRepository) GetByUserAndDate(
	ctx context.Context,
	userID uuid.UUID,
	date time.Time,
) (*DailyFortune, error) {
	log := r.log.Function("GetByUserAndDate")

	var cached DailyFortune
	found, err := database.NewCacheBuilder(r.db.Cache.Fortune, fortuneCacheKey(userID, date)).
		WithContext(ctx).
		Get(&cached)
	if err == nil && found {
		return &cached, nil
	}

	var fortune DailyFortune
	if err := r.db.SQLWithContext(ctx).
		Preload("Recommendation").
		First(&fortune, "user_id = ? AND date = ?", userID, utils.DateOf(date)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get fortune", err, "userID", userID)
	}

	r.addToCache(ctx, &fortune)

	return &fortune, nil
}

// Create inserts the day's fortune. A gorm.ErrDuplicatedKey return means a
// concurrent request wrote the row first; callers re-read instead of
// treating it as a failure.
func (r *fortuneRepository) Create(ctx context.Context, fortune *DailyFortune) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(fortune).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return log.Err("failed to create fortune", err, "userID", fortune.UserID)
	}

	r.addToCache(ctx, fortune)

	return nil
}

// Upsert replaces the content of an existing (user, date) row in place,
// used when a fortune is regenerated.
func (r *fortuneRepository) Upsert(ctx context.Context, fortune *DailyFortune) error {
	log := r.log.Function("Upsert")

	if err := r.db.SQLWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"source", "overall_score",
				"career_stars", "wealth_stars", "love_stars",
				"astro_analysis", "career_analysis", "wealth_analysis", "love_analysis",
				"summary", "suggestion", "avoidance",
				"suitable", "unsuitable", "lucky_color", "lucky_number",
				"recommendation_id", "updated_at",
			}),
		}).
		Create(fortune).Error; err != nil {
		return log.Err("failed to upsert fortune", err, "userID", fortune.UserID)
	}

	r.clearCache(ctx, fortune)
	r.addToCache(ctx, fortune)

	return nil
}

func (r *fortuneRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	page, limit int,
) ([]DailyFortune, int64, error) {
	log := r.log.Function("ListByUser")

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := r.db.SQLWithContext(ctx).
		Model(&DailyFortune{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, log.Err("failed to count fortunes", err, "userID", userID)
	}

	var fortunes []DailyFortune
	if err := r.db.SQLWithContext(ctx).
		Preload("Recommendation").
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&fortunes).Error; err != nil {
		return nil, 0, log.Err("failed to list fortunes", err, "userID", userID)
	}

	return fortunes, total, nil
}

func (r *fortuneRepository) ListScoresByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]ScoreEntry, error) {
	log := r.log.Function("ListScoresByUser")

	var entries []ScoreEntry
	if err := r.db.SQLWithContext(ctx).
		Model(&DailyFortune{}).
		Select("date", "overall_score").
		Where("user_id = ?", userID).
		Order("date DESC").
		Scan(&entries).Error; err != nil {
		return nil, log.Err("failed to list fortune scores", err, "userID", userID)
	}

	return entries, nil
}

// DeleteOldPreviews purges visitor-preview rows older than the cutoff.
// Authenticated fortunes are never touched.
func (r *fortuneRepository) DeleteOldPreviews(ctx context.Context, before time.Time) (int64, error) {
	log := r.log.Function("DeleteOldPreviews")

	result := r.db.SQLWithContext(ctx).
		Unscoped().
		Where("source = ? AND date < ?", FortuneSourcePreview, utils.DateOf(before)).
		Delete(&DailyFortune{})
	if result.Error != nil {
		return 0, log.Err("failed to delete old preview fortunes", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *fortuneRepository) addToCache(ctx context.Context, fortune *DailyFortune) {
	key := fortuneCacheKey(fortune.UserID, time.Time(fortune.Date))
	if err := database.NewCacheBuilder(r.db.Cache.Fortune, key).
		WithStruct(fortune).
		WithTTL(FORTUNE_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		r.log.Warn("failed to cache fortune", "userID", fortune.UserID, "error", err)
	}
}

func (r *fortuneRepository) clearCache(ctx context.Context, fortune *DailyFortune) {
	key := fortuneCacheKey(fortune.UserID, time.Time(fortune.Date))
	if err := database.NewCacheBuilder(r.db.Cache.Fortune, key).WithContext(ctx).Delete(); err != nil {
		r.log.Warn("failed to clear fortune cache", "userID", fortune.UserID, "error", err)
	}
}
