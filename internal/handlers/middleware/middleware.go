package middleware

import (
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/repositories"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/services"
)

// Middleware bundles the request-scoped concerns: authentication and
// trace propagation.
type Middleware struct {
	userRepo repositories.UserRepository
	verifier services.TokenVerifier
	log      logger.Logger
}

func New(userRepo repositories.UserRepository, verifier services.TokenVerifier) *Middleware {
	return &Middleware{
		userRepo: userRepo,
		verifier: verifier,
		log:      logger.New("middleware"),
	}
}
