package services

import (
	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/database"
)

// Service aggregates the application services behind one handle.
type Service struct {
	WeChat      WeChatVerifier
	AI          FortuneGenerator
	Parser      *FortuneParser
	Token       *TokenService
	Verifier    TokenVerifier
	Scheduler   *SchedulerService
	Transaction *TransactionService
}

func New(cfg config.Config, db database.DB) Service {
	return Service{
		WeChat:      NewWeChatService(cfg),
		AI:          NewAIService(cfg),
		Parser:      NewFortuneParser(),
		Token:       NewTokenService(cfg),
		Verifier:    NewTokenVerifier(cfg),
		Scheduler:   NewSchedulerService(),
		Transaction: NewTransactionService(db),
	}
}
