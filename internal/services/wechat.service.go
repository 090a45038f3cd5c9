package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
)

const wechatSessionURL = "https://api.weixin.qq.com/sns/jscode2session"

// WeChatVerifier exchanges a client login code for the stable openid
// identifying the account.
type WeChatVerifier interface {
	Code2Session(ctx context.Context, code string) (string, error)
}

type wechatService struct {
	appID      string
	appSecret  string
	devMode    bool
	httpClient *http.Client
	log        logger.Logger
}

func NewWeChatService(cfg config.Config) WeChatVerifier {
	return &wechatService{
		appID:      cfg.WechatAppID,
		appSecret:  cfg.WechatAppSecret,
		devMode:    !cfg.IsProduction(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.New("wechatService"),
	}
}

type code2SessionResponse struct {
	OpenID     string `json:"openid"`
	SessionKey string `json:"session_key"`
	ErrCode    int    `json:"errcode"`
	ErrMsg     string `json:"errmsg"`
}

func (s *wechatService) Code2Session(ctx context.Context, code string) (string, error) {
	log := s.log.Function("Code2Session")

	// Development codes bypass the upstream exchange so local clients can
	// log in without real credentials.
	if s.devMode && strings.HasPrefix(code, "dev_") {
		return "dev_openid_" + strings.TrimPrefix(code, "dev_"), nil
	}

	if s.appID == "" || s.appSecret == "" {
		return "", log.ErrMsg("wechat credentials are not configured")
	}

	query := url.Values{}
	query.Set("appid", s.appID)
	query.Set("secret", s.appSecret)
	query.Set("js_code", code)
	query.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		wechatSessionURL+"?"+query.Encode(),
		nil,
	)
	if err != nil {
		return "", log.Err("failed to build session request", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", log.Err("session exchange request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", log.Err("failed to read session response", err)
	}

	var session code2SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return "", log.Err("failed to decode session response", err)
	}

	if session.ErrCode != 0 {
		return "", log.Error(
			fmt.Sprintf("session exchange rejected: %s", session.ErrMsg),
			"errcode", session.ErrCode,
		)
	}

	if session.OpenID == "" {
		return "", log.ErrMsg("session response missing openid")
	}

	return session.OpenID, nil
}
