package repositories

import (
	"github.com/pawaovo/nfc-bracelet-fortune/internal/database"
)

// Repository aggregates the per-model repositories behind one handle.
type Repository struct {
	User     UserRepository
	Bracelet BraceletRepository
	Fortune  FortuneRepository
	Product  ProductRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:     NewUserRepository(db),
		Bracelet: NewBraceletRepository(db),
		Fortune:  NewFortuneRepository(db),
		Product:  NewProductRepository(db),
	}
}
