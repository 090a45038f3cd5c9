package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
)

// Completion is the result of one model call.
type Completion struct {
	Content  string
	Tokens   int
	Duration time.Duration
}

// FortuneGenerator produces a fortune reading from a prompt. Disabled
// when no upstream is configured; callers fall back to the deterministic
// generator in that case.
type FortuneGenerator interface {
	IsEnabled() bool
	Generate(ctx context.Context, prompt string) (*Completion, error)
}

type aiService struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	log        logger.Logger
}

func NewAIService(cfg config.Config) FortuneGenerator {
	timeout := time.Duration(cfg.AITimeoutSeconds) * time.Second

	return &aiService{
		baseURL:    strings.TrimRight(cfg.AIBaseURL, "/"),
		apiKey:     cfg.AIAPIKey,
		model:      cfg.AIModel,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.New("aiService"),
	}
}

func (s *aiService) IsEnabled() bool {
	return s.baseURL != "" && s.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *aiService) Generate(ctx context.Context, prompt string) (*Completion, error) {
	log := s.log.Function("Generate")

	if !s.IsEnabled() {
		return nil, log.ErrMsg("ai upstream is not configured")
	}

	payload, err := json.Marshal(chatRequest{
		Model:       s.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.8,
	})
	if err != nil {
		return nil, log.Err("failed to marshal completion request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, log.Err("failed to build completion request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, log.Err("completion request failed", err, "model", s.model)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, log.Err("failed to read completion response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, log.Error(
			"completion upstream returned non-200",
			"status", resp.StatusCode,
			"body", truncate(string(body), 512),
		)
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, log.Err("failed to decode completion response", err)
	}

	if completion.Error != nil {
		return nil, log.Error("completion upstream error", "message", completion.Error.Message)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, log.ErrMsg("completion response has no content")
	}

	duration := time.Since(start)
	log.Info("Generated completion",
		"model", s.model,
		"tokens", completion.Usage.TotalTokens,
		"duration", duration,
	)

	return &Completion{
		Content:  completion.Choices[0].Message.Content,
		Tokens:   completion.Usage.TotalTokens,
		Duration: duration,
	}, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:limit], len(s))
}
