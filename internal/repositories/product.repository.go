package repositories

import (
	"context"
	"errors"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/database"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	. "github.com/pawaovo/nfc-bracelet-fortune/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListByPriceBand(ctx context.Context, min, max *decimal.Decimal) ([]Product, error)
	ListAll(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, product *Product) error
}

type productRepository struct {
	db  database.DB
	log logger.Logger
}

func NewProductRepository(db database.DB) ProductRepository {
	return &productRepository{
		db:  db,
		log: logger.New("productRepository"),
	}
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	log := r.log.Function("GetByID")

	var product Product
	if err := r.db.SQLWithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get product", err, "id", id)
	}

	return &product, nil
}

// ListByPriceBand returns products inside [min, max), ordered by price so
// the band's contents are stable across calls. A nil bound is open.
func (r *productRepository) ListByPriceBand(
	ctx context.Context,
	min, max *decimal.Decimal,
) ([]Product, error) {
	log := r.log.Function("ListByPriceBand")

	query := r.db.SQLWithContext(ctx).Model(&Product{})
	if min != nil {
		query = query.Where("price >= ?", min)
	}
	if max != nil {
		query = query.Where("price < ?", max)
	}

	var products []Product
	if err := query.Order("price ASC, id ASC").Find(&products).Error; err != nil {
		return nil, log.Err("failed to list products by price band", err)
	}

	return products, nil
}

func (r *productRepository) ListAll(ctx context.Context) ([]Product, error) {
	log := r.log.Function("ListAll")

	var products []Product
	if err := r.db.SQLWithContext(ctx).
		Order("price ASC, id ASC").
		Find(&products).Error; err != nil {
		return nil, log.Err("failed to list products", err)
	}

	return products, nil
}

func (r *productRepository) Create(ctx context.Context, product *Product) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(product).Error; err != nil {
		return log.Err("failed to create product", err, "name", product.Name)
	}

	return nil
}
