package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TOKEN_TTL = 7 * 24 * time.Hour

// TokenVerifier resolves a bearer token to the user it was issued for.
// The implementation is chosen once at startup: production verifies
// signatures, development additionally accepts DEV.* tokens.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// TokenService issues signed access tokens for authenticated users.
type TokenService struct {
	secret []byte
	log    logger.Logger
}

func NewTokenService(cfg config.Config) *TokenService {
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		log:    logger.New("tokenService"),
	}
}

func (s *TokenService) Issue(userID uuid.UUID) (string, error) {
	log := s.log.Function("Issue")

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TOKEN_TTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", log.Err("failed to sign token", err, "userID", userID)
	}

	return signed, nil
}

// JWTVerifier validates HS256 tokens issued by TokenService.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(cfg config.Config) *JWTVerifier {
	return &JWTVerifier{secret: []byte(cfg.JWTSecret)}
}

func (v *JWTVerifier) Verify(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return v.secret, nil
		},
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, fmt.Errorf("token missing subject")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not a user id: %w", err)
	}

	return userID, nil
}

// DevTokenVerifier accepts unsigned DEV.<userID>.<nonce> tokens alongside
// real ones, so local clients and tests can authenticate without a signer.
// Never selected in production.
type DevTokenVerifier struct {
	jwt *JWTVerifier
	log logger.Logger
}

func NewDevTokenVerifier(cfg config.Config) *DevTokenVerifier {
	return &DevTokenVerifier{
		jwt: NewJWTVerifier(cfg),
		log: logger.New("devTokenVerifier"),
	}
}

func (v *DevTokenVerifier) Verify(tokenString string) (uuid.UUID, error) {
	if strings.HasPrefix(tokenString, "DEV.") {
		parts := strings.Split(tokenString, ".")
		if len(parts) < 2 {
			return uuid.Nil, fmt.Errorf("malformed dev token")
		}
		userID, err := uuid.Parse(parts[1])
		if err != nil {
			return uuid.Nil, fmt.Errorf("dev token user id: %w", err)
		}
		v.log.Warn("accepted dev token", "userID", userID)
		return userID, nil
	}

	return v.jwt.Verify(tokenString)
}

// NewTokenVerifier picks the verifier strategy for the environment.
func NewTokenVerifier(cfg config.Config) TokenVerifier {
	if cfg.IsProduction() {
		return NewJWTVerifier(cfg)
	}
	return NewDevTokenVerifier(cfg)
}
