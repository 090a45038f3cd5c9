package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func timeFromDate(d datatypes.Date) time.Time {
	return time.Time(d)
}

// FortuneSource records how a day's fortune was produced.
type FortuneSource string

const (
	FortuneSourceAI       FortuneSource = "ai"
	FortuneSourceFallback FortuneSource = "fallback"
	FortuneSourcePreview  FortuneSource = "preview"
)

// DailyFortune holds the per-user-per-day reading. The composite unique
// index on (user_id, date) is what resolves concurrent first fetches:
// the losing writer re-reads instead of erroring.
type DailyFortune struct {
	BaseUUIDModel
	UserID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_fortune_user_date" json:"userId"`
	Date   datatypes.Date `gorm:"type:date;not null;uniqueIndex:idx_fortune_user_date" json:"date"`

	OverallScore int     `gorm:"type:int;not null"  json:"overallScore"`
	CareerStars  float64 `gorm:"type:numeric(2,1)"  json:"careerStars"`
	WealthStars  float64 `gorm:"type:numeric(2,1)"  json:"wealthStars"`
	LoveStars    float64 `gorm:"type:numeric(2,1)"  json:"loveStars"`

	AstroAnalysis  string `gorm:"type:text" json:"astroAnalysis"`
	CareerAnalysis string `gorm:"type:text" json:"careerAnalysis"`
	WealthAnalysis string `gorm:"type:text" json:"wealthAnalysis"`
	LoveAnalysis   string `gorm:"type:text" json:"loveAnalysis"`
	Summary        string `gorm:"type:text" json:"summary"`
	Suggestion     string `gorm:"type:text" json:"suggestion"`
	Avoidance      string `gorm:"type:text" json:"avoidance"`

	Suitable    string `gorm:"type:text" json:"suitable"`
	Unsuitable  string `gorm:"type:text" json:"unsuitable"`
	LuckyColor  string `gorm:"type:text" json:"luckyColor"`
	LuckyNumber int    `gorm:"type:int"  json:"luckyNumber"`

	Source FortuneSource `gorm:"type:text;default:fallback" json:"source"`

	RecommendationID *uuid.UUID `gorm:"type:uuid"                   json:"recommendationId"`
	Recommendation   *Product   `gorm:"foreignKey:RecommendationID" json:"recommendation,omitempty"`
}

// FortuneView is the caller-facing shape of a fortune. Visitors receive
// only the base fields; owners additionally get every detail field.
type FortuneView struct {
	Date           string   `json:"date"`
	OverallScore   int      `json:"overallScore"`
	IsAuth         bool     `json:"isAuth"`
	Recommendation *Product `json:"recommendation"`

	CareerStars    *float64 `json:"careerStars,omitempty"`
	WealthStars    *float64 `json:"wealthStars,omitempty"`
	LoveStars      *float64 `json:"loveStars,omitempty"`
	AstroAnalysis  *string  `json:"astroAnalysis,omitempty"`
	CareerAnalysis *string  `json:"careerAnalysis,omitempty"`
	WealthAnalysis *string  `json:"wealthAnalysis,omitempty"`
	LoveAnalysis   *string  `json:"loveAnalysis,omitempty"`
	Summary        *string  `json:"summary,omitempty"`
	Suggestion     *string  `json:"suggestion,omitempty"`
	Avoidance      *string  `json:"avoidance,omitempty"`
	Suitable       *string  `json:"suitable,omitempty"`
	Unsuitable     *string  `json:"unsuitable,omitempty"`
	LuckyColor     *string  `json:"luckyColor,omitempty"`
	LuckyNumber    *int     `json:"luckyNumber,omitempty"`
}

// ToView formats the fortune for a caller. Entitled users get the full
// field set; everyone else sees date, score and the recommendation only,
// even when the underlying row carries more.
func (f *DailyFortune) ToView(entitled bool) FortuneView {
	view := FortuneView{
		Date:           f.DateString(),
		OverallScore:   f.OverallScore,
		IsAuth:         entitled,
		Recommendation: f.Recommendation,
	}

	if !entitled {
		return view
	}

	view.CareerStars = &f.CareerStars
	view.WealthStars = &f.WealthStars
	view.LoveStars = &f.LoveStars
	view.AstroAnalysis = &f.AstroAnalysis
	view.CareerAnalysis = &f.CareerAnalysis
	view.WealthAnalysis = &f.WealthAnalysis
	view.LoveAnalysis = &f.LoveAnalysis
	view.Summary = &f.Summary
	view.Suggestion = &f.Suggestion
	view.Avoidance = &f.Avoidance
	view.Suitable = &f.Suitable
	view.Unsuitable = &f.Unsuitable
	view.LuckyColor = &f.LuckyColor
	view.LuckyNumber = &f.LuckyNumber

	return view
}

// DateString returns the fortune's calendar date as YYYY-MM-DD.
func (f *DailyFortune) DateString() string {
	return timeFromDate(f.Date).Format("2006-01-02")
}

// FortuneSummary is the reduced per-day record used by history listings.
type FortuneSummary struct {
	Date         string `json:"date"`
	OverallScore int    `json:"overallScore"`
	Summary      string `json:"summary"`
}

func (f *DailyFortune) ToSummary() FortuneSummary {
	return FortuneSummary{
		Date:         f.DateString(),
		OverallScore: f.OverallScore,
		Summary:      f.Summary,
	}
}
