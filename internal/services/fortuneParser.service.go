package services

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
)

// ParsedFortune is the structured form of a model completion. Numeric
// fields are pointers so a missing label is distinguishable from zero.
type ParsedFortune struct {
	OverallScore *int     `json:"overallScore"`
	CareerStars  *float64 `json:"careerStars"`
	WealthStars  *float64 `json:"wealthStars"`
	LoveStars    *float64 `json:"loveStars"`
	LuckyNumber  *int     `json:"luckyNumber"`

	AstroAnalysis  string `json:"astroAnalysis"`
	CareerAnalysis string `json:"careerAnalysis"`
	WealthAnalysis string `json:"wealthAnalysis"`
	LoveAnalysis   string `json:"loveAnalysis"`
	Summary        string `json:"summary"`
	Suggestion     string `json:"suggestion"`
	Avoidance      string `json:"avoidance"`

	Suitable   string `json:"suitable"`
	Unsuitable string `json:"unsuitable"`
	LuckyColor string `json:"luckyColor"`
}

type fieldKind int

const (
	fieldBlock fieldKind = iota
	fieldScalar
	fieldFloat
	fieldInt
)

type fieldSpec struct {
	label string
	kind  fieldKind
	set   func(*ParsedFortune, string) bool
}

// fortuneFields maps the labels the prompt instructs the model to emit to
// their target fields. Block fields run until the next recognized label,
// scalar and numeric fields consume the remainder of their line.
var fortuneFields = []fieldSpec{
	{"星盘分析", fieldBlock, func(p *ParsedFortune, v string) bool { p.AstroAnalysis = v; return true }},
	{"事业运分析", fieldBlock, func(p *ParsedFortune, v string) bool { p.CareerAnalysis = v; return true }},
	{"财富运分析", fieldBlock, func(p *ParsedFortune, v string) bool { p.WealthAnalysis = v; return true }},
	{"爱情运分析", fieldBlock, func(p *ParsedFortune, v string) bool { p.LoveAnalysis = v; return true }},
	{"事业运星数", fieldFloat, func(p *ParsedFortune, v string) bool { return setFloat(&p.CareerStars, v) }},
	{"财富运星数", fieldFloat, func(p *ParsedFortune, v string) bool { return setFloat(&p.WealthStars, v) }},
	{"爱情运星数", fieldFloat, func(p *ParsedFortune, v string) bool { return setFloat(&p.LoveStars, v) }},
	{"建议事项", fieldBlock, func(p *ParsedFortune, v string) bool { p.Suggestion = v; return true }},
	{"避免事项", fieldBlock, func(p *ParsedFortune, v string) bool { p.Avoidance = v; return true }},
	{"今日运势综合数字", fieldInt, func(p *ParsedFortune, v string) bool { return setInt(&p.OverallScore, v) }},
	{"今日幸运数字", fieldInt, func(p *ParsedFortune, v string) bool { return setInt(&p.LuckyNumber, v) }},
	{"今日幸运色", fieldScalar, func(p *ParsedFortune, v string) bool { p.LuckyColor = v; return true }},
	{"今日简要总结", fieldBlock, func(p *ParsedFortune, v string) bool { p.Summary = v; return true }},
	{"今日宜", fieldScalar, func(p *ParsedFortune, v string) bool { p.Suitable = v; return true }},
	{"今日忌", fieldScalar, func(p *ParsedFortune, v string) bool { p.Unsuitable = v; return true }},
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

func setFloat(dst **float64, value string) bool {
	match := numberPattern.FindString(value)
	if match == "" {
		return false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return false
	}
	*dst = &f
	return true
}

func setInt(dst **int, value string) bool {
	match := numberPattern.FindString(value)
	if match == "" {
		return false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return false
	}
	n := int(f)
	*dst = &n
	return true
}

// FortuneParser extracts a ParsedFortune from raw model output. Labeled
// plain text is the primary format; a JSON object is accepted as a
// fallback when the model ignores the formatting instructions.
type FortuneParser struct {
	log logger.Logger
}

func NewFortuneParser() *FortuneParser {
	return &FortuneParser{log: logger.New("fortuneParser")}
}

func (p *FortuneParser) Parse(content string) (*ParsedFortune, error) {
	log := p.log.Function("Parse")

	parsed := p.parseLabeled(content)
	if err := p.validate(parsed); err == nil {
		return parsed, nil
	}

	if fromJSON := p.parseJSON(content); fromJSON != nil {
		if err := p.validate(fromJSON); err == nil {
			return fromJSON, nil
		}
	}

	err := p.validate(parsed)
	return nil, log.Err("completion did not yield a usable fortune", err,
		"contentLength", len(content))
}

func (p *FortuneParser) parseLabeled(content string) *ParsedFortune {
	parsed := &ParsedFortune{}
	lines := strings.Split(content, "\n")

	var blockValue []string
	var blockField *fieldSpec

	flush := func() {
		if blockField != nil {
			value := strings.TrimSpace(strings.Join(blockValue, "\n"))
			if value != "" {
				blockField.set(parsed, value)
			}
		}
		blockField = nil
		blockValue = nil
	}

	for _, raw := range lines {
		line := normalizeLine(raw)

		field, rest, ok := matchLabel(line)
		if !ok {
			if blockField != nil {
				blockValue = append(blockValue, strings.TrimSpace(raw))
			}
			continue
		}

		flush()

		switch field.kind {
		case fieldBlock:
			blockField = field
			if rest != "" {
				blockValue = append(blockValue, rest)
			}
		default:
			field.set(parsed, rest)
		}
	}
	flush()

	return parsed
}

// normalizeLine strips the markdown decoration models habitually wrap
// around labels: heading markers, list bullets, bold, bracket pairs.
func normalizeLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "#>-* \t")
	line = strings.ReplaceAll(line, "**", "")
	line = strings.TrimPrefix(line, "【")
	line = strings.TrimSpace(line)
	return line
}

// matchLabel reports whether the line opens a recognized field, returning
// the remainder after the label and its colon. Both the full-width and
// ASCII colon are accepted.
func matchLabel(line string) (*fieldSpec, string, bool) {
	for i := range fortuneFields {
		field := &fortuneFields[i]
		if !strings.HasPrefix(line, field.label) {
			continue
		}

		rest := strings.TrimPrefix(line, field.label)
		rest = strings.TrimPrefix(rest, "】")
		rest = strings.TrimSpace(rest)

		switch {
		case strings.HasPrefix(rest, "："):
			rest = strings.TrimPrefix(rest, "：")
		case strings.HasPrefix(rest, ":"):
			rest = strings.TrimPrefix(rest, ":")
		case rest != "":
			// Text directly after the label means this is prose that
			// merely starts with the same characters, not a field.
			continue
		}

		return field, strings.TrimSpace(rest), true
	}

	return nil, "", false
}

func (p *FortuneParser) parseJSON(content string) *ParsedFortune {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil
	}

	var parsed ParsedFortune
	if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err != nil {
		return nil
	}

	return &parsed
}

// validate gates what is allowed to be persisted: a ranged overall score,
// ranged star ratings, and at least one narrative section.
func (p *FortuneParser) validate(parsed *ParsedFortune) error {
	if parsed.OverallScore == nil {
		return errMissingScore
	}
	if *parsed.OverallScore < 0 || *parsed.OverallScore > 100 {
		return errScoreOutOfRange
	}

	for _, stars := range []*float64{parsed.CareerStars, parsed.WealthStars, parsed.LoveStars} {
		if stars != nil && (*stars < 0 || *stars > 5) {
			return errStarsOutOfRange
		}
	}

	hasNarrative := parsed.AstroAnalysis != "" ||
		parsed.CareerAnalysis != "" ||
		parsed.WealthAnalysis != "" ||
		parsed.LoveAnalysis != "" ||
		parsed.Summary != ""
	if !hasNarrative {
		return errMissingNarrative
	}

	return nil
}

var (
	errMissingScore     = parserError("missing overall score")
	errScoreOutOfRange  = parserError("overall score out of range")
	errStarsOutOfRange  = parserError("star rating out of range")
	errMissingNarrative = parserError("no narrative sections found")
)

type parserError string

func (e parserError) Error() string { return string(e) }
