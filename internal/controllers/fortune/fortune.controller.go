package fortune

import (
	"context"
	"errors"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/models"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/repositories"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/services"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/types"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Recommendation price bands. Higher scores surface pricier products.
var (
	midBandMin     = decimal.NewFromInt(200)
	premiumBandMin = decimal.NewFromInt(500)
)

// HistoryPage is the paged response for fortune history.
type HistoryPage struct {
	Items []models.FortuneSummary `json:"items"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

// Stats aggregates a user's fortune track record.
type Stats struct {
	TotalDays     int64   `json:"totalDays"`
	AverageScore  float64 `json:"averageScore"`
	BestScore     int     `json:"bestScore"`
	WorstScore    int     `json:"worstScore"`
	CurrentStreak int     `json:"currentStreak"`
}

// Controller orchestrates daily fortune generation: entitlement check,
// AI generation with template fallback, persistence and recommendation.
type Controller struct {
	repo   repositories.Repository
	ai     services.FortuneGenerator
	parser *services.FortuneParser
	log    logger.Logger
}

func New(
	repo repositories.Repository,
	ai services.FortuneGenerator,
	parser *services.FortuneParser,
) *Controller {
	return &Controller{
		repo:   repo,
		ai:     ai,
		parser: parser,
		log:    logger.New("fortuneController"),
	}
}

// GetTodayFortune returns the caller's reading for today, generating and
// persisting it on first fetch. This path never fails on AI trouble: the
// template fallback always yields a complete reading.
func (c *Controller) GetTodayFortune(
	ctx context.Context,
	user *models.User,
) (*models.FortuneView, error) {
	log := c.log.Function("GetTodayFortune")

	entitled, err := c.entitled(ctx, user)
	if err != nil {
		return nil, err
	}

	today := time.Now().UTC()
	existing, err := c.repo.Fortune.GetByUserAndDate(ctx, user.ID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		view := existing.ToView(entitled)
		return &view, nil
	}

	var fortune *models.DailyFortune
	if !entitled {
		fortune = templateFortune(user, utils.DateOf(today), models.FortuneSourcePreview)
	} else {
		fortune = c.generate(ctx, user, today)
	}

	c.attachRecommendation(ctx, fortune)

	if err := c.repo.Fortune.Create(ctx, fortune); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent first fetch won the insert; serve its row.
			winner, readErr := c.repo.Fortune.GetByUserAndDate(ctx, user.ID, today)
			if readErr != nil {
				return nil, readErr
			}
			if winner == nil {
				return nil, log.ErrMsg("fortune row vanished after duplicate-key insert")
			}
			fortune = winner
		} else {
			return nil, err
		}
	}

	view := fortune.ToView(entitled)
	return &view, nil
}

// RegenerateTodayFortune replaces today's reading with a fresh AI one.
// Unlike the get path there is no silent fallback: the caller asked for
// an AI reading, so an AI failure is surfaced and the stored row is left
// untouched.
func (c *Controller) RegenerateTodayFortune(
	ctx context.Context,
	user *models.User,
) (*models.FortuneView, error) {
	log := c.log.Function("RegenerateTodayFortune")

	entitled, err := c.entitled(ctx, user)
	if err != nil {
		return nil, err
	}
	if !entitled {
		return nil, types.ErrNotEntitled
	}

	today := time.Now().UTC()
	fortune, err := c.generateAI(ctx, user, today)
	if err != nil {
		log.Warn("regenerate failed, keeping existing fortune", "userID", user.ID, "error", err)
		return nil, types.ErrAIGenerationFailed
	}

	c.attachRecommendation(ctx, fortune)

	if err := c.repo.Fortune.Upsert(ctx, fortune); err != nil {
		return nil, err
	}

	view := fortune.ToView(true)
	return &view, nil
}

// GetFortuneHistory lists past readings newest-first as reduced summaries.
func (c *Controller) GetFortuneHistory(
	ctx context.Context,
	user *models.User,
	page, limit int,
) (*HistoryPage, error) {
	fortunes, total, err := c.repo.Fortune.ListByUser(ctx, user.ID, page, limit)
	if err != nil {
		return nil, err
	}

	items := make([]models.FortuneSummary, 0, len(fortunes))
	for i := range fortunes {
		items = append(items, fortunes[i].ToSummary())
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	return &HistoryPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetFortuneByDate returns one past reading, formatted per entitlement.
func (c *Controller) GetFortuneByDate(
	ctx context.Context,
	user *models.User,
	dateStr string,
) (*models.FortuneView, error) {
	date, err := utils.ParseDate(dateStr)
	if err != nil {
		return nil, types.ValidationError(err.Error())
	}

	entitled, err := c.entitled(ctx, user)
	if err != nil {
		return nil, err
	}

	fortune, err := c.repo.Fortune.GetByUserAndDate(ctx, user.ID, time.Time(date))
	if err != nil {
		return nil, err
	}
	if fortune == nil {
		return nil, types.ErrFortuneNotFound
	}

	view := fortune.ToView(entitled)
	return &view, nil
}

// GetFortuneStats aggregates score history, including the current streak
// of consecutive days ending today or yesterday.
func (c *Controller) GetFortuneStats(ctx context.Context, user *models.User) (*Stats, error) {
	entries, err := c.repo.Fortune.ListScoresByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalDays: int64(len(entries))}
	if len(entries) == 0 {
		return stats, nil
	}

	sum := 0
	stats.BestScore = entries[0].OverallScore
	stats.WorstScore = entries[0].OverallScore
	for _, entry := range entries {
		sum += entry.OverallScore
		if entry.OverallScore > stats.BestScore {
			stats.BestScore = entry.OverallScore
		}
		if entry.OverallScore < stats.WorstScore {
			stats.WorstScore = entry.OverallScore
		}
	}
	stats.AverageScore = float64(sum) / float64(len(entries))
	stats.CurrentStreak = currentStreak(entries, time.Now().UTC())

	return stats, nil
}

// currentStreak counts consecutive recorded days walking back from today.
// A streak whose latest day is yesterday still counts; older gaps end it.
func currentStreak(entries []repositories.ScoreEntry, now time.Time) int {
	if len(entries) == 0 {
		return 0
	}

	expected := time.Time(utils.DateOf(now))
	latest := time.Time(entries[0].Date)
	if !latest.Equal(expected) {
		expected = expected.AddDate(0, 0, -1)
		if !latest.Equal(expected) {
			return 0
		}
	}

	streak := 0
	for _, entry := range entries {
		if !time.Time(entry.Date).Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}

	return streak
}

func (c *Controller) entitled(ctx context.Context, user *models.User) (bool, error) {
	count, err := c.repo.Bracelet.CountByUserID(ctx, user.ID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// generate produces today's reading for an entitled user: AI first, full
// template fallback on any failure.
func (c *Controller) generate(
	ctx context.Context,
	user *models.User,
	day time.Time,
) *models.DailyFortune {
	log := c.log.Function("generate")

	if c.ai.IsEnabled() {
		fortune, err := c.generateAI(ctx, user, day)
		if err == nil {
			return fortune
		}
		log.Warn("ai generation failed, using fallback", "userID", user.ID, "error", err)
	}

	return templateFortune(user, utils.DateOf(day), models.FortuneSourceFallback)
}

func (c *Controller) generateAI(
	ctx context.Context,
	user *models.User,
	day time.Time,
) (*models.DailyFortune, error) {
	completion, err := c.ai.Generate(ctx, buildPrompt(user, day))
	if err != nil {
		return nil, err
	}

	parsed, err := c.parser.Parse(completion.Content)
	if err != nil {
		return nil, err
	}

	return c.fromParsed(user, day, parsed), nil
}

// fromParsed maps a validated parse onto the model, substituting template
// defaults for fields the completion left out.
func (c *Controller) fromParsed(
	user *models.User,
	day time.Time,
	parsed *services.ParsedFortune,
) *models.DailyFortune {
	fortune := templateFortune(user, utils.DateOf(day), models.FortuneSourceAI)
	fortune.OverallScore = *parsed.OverallScore

	if parsed.CareerStars != nil {
		fortune.CareerStars = *parsed.CareerStars
	}
	if parsed.WealthStars != nil {
		fortune.WealthStars = *parsed.WealthStars
	}
	if parsed.LoveStars != nil {
		fortune.LoveStars = *parsed.LoveStars
	}
	if parsed.LuckyNumber != nil {
		fortune.LuckyNumber = *parsed.LuckyNumber
	}
	if parsed.AstroAnalysis != "" {
		fortune.AstroAnalysis = parsed.AstroAnalysis
	}
	if parsed.CareerAnalysis != "" {
		fortune.CareerAnalysis = parsed.CareerAnalysis
	}
	if parsed.WealthAnalysis != "" {
		fortune.WealthAnalysis = parsed.WealthAnalysis
	}
	if parsed.LoveAnalysis != "" {
		fortune.LoveAnalysis = parsed.LoveAnalysis
	}
	if parsed.Summary != "" {
		fortune.Summary = parsed.Summary
	}
	if parsed.Suggestion != "" {
		fortune.Suggestion = parsed.Suggestion
	}
	if parsed.Avoidance != "" {
		fortune.Avoidance = parsed.Avoidance
	}
	if parsed.Suitable != "" {
		fortune.Suitable = parsed.Suitable
	}
	if parsed.Unsuitable != "" {
		fortune.Unsuitable = parsed.Unsuitable
	}
	if parsed.LuckyColor != "" {
		fortune.LuckyColor = parsed.LuckyColor
	}

	return fortune
}

// attachRecommendation picks a product for the reading's score band. The
// index is derived from the score so the pick is stable for the day.
// Recommendation failures never block the fortune itself.
func (c *Controller) attachRecommendation(ctx context.Context, fortune *models.DailyFortune) {
	log := c.log.Function("attachRecommendation")

	var min, max *decimal.Decimal
	switch {
	case fortune.OverallScore >= 85:
		min = &premiumBandMin
	case fortune.OverallScore >= 70:
		min, max = &midBandMin, &premiumBandMin
	default:
		max = &midBandMin
	}

	products, err := c.repo.Product.ListByPriceBand(ctx, min, max)
	if err != nil {
		log.Warn("failed to load recommendation band", "error", err)
		return
	}
	if len(products) == 0 {
		products, err = c.repo.Product.ListAll(ctx)
		if err != nil || len(products) == 0 {
			return
		}
	}

	product := products[fortune.OverallScore%len(products)]
	fortune.RecommendationID = &product.ID
	fortune.Recommendation = &product
}
