package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/database"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	. "github.com/pawaovo/nfc-bracelet-fortune/internal/models"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BraceletRepository interface {
	GetByNfcID(ctx context.Context, nfcID string) (*Bracelet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]Bracelet, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	GetBindingStatus(ctx context.Context, nfcID string) (BindingStatus, error)
	Create(ctx context.Context, bracelet *Bracelet) error
	BindToUser(ctx context.Context, nfcID string, userID uuid.UUID) (*Bracelet, error)
	Unbind(ctx context.Context, nfcID string) error
}

type braceletRepository struct {
	db  database.DB
	log logger.Logger
}

func NewBraceletRepository(db database.DB) BraceletRepository {
	return &braceletRepository{
		db:  db,
		log: logger.New("braceletRepository"),
	}
}

// GetByNfcID returns (nil, nil) for a tag that is not provisioned, so
// callers can branch on existence without unwrapping a sentinel.
func (r *braceletRepository) GetByNfcID(ctx context.Context, nfcID string) (*Bracelet, error) {
	log := r.log.Function("GetByNfcID")

	var bracelet Bracelet
	if err := r.db.SQLWithContext(ctx).First(&bracelet, "nfc_id = ?", nfcID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get bracelet by nfc id", err, "nfcID", nfcID)
	}

	return &bracelet, nil
}

func (r *braceletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]Bracelet, error) {
	log := r.log.Function("GetByUserID")

	var bracelets []Bracelet
	if err := r.db.SQLWithContext(ctx).
		Where("user_id = ?", userID).
		Order("bound_at DESC").
		Find(&bracelets).Error; err != nil {
		return nil, log.Err("failed to get bracelets by user id", err, "userID", userID)
	}

	return bracelets, nil
}

func (r *braceletRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	log := r.log.Function("CountByUserID")

	var count int64
	if err := r.db.SQLWithContext(ctx).
		Model(&Bracelet{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, log.Err("failed to count bracelets", err, "userID", userID)
	}

	return count, nil
}

func (r *braceletRepository) GetBindingStatus(ctx context.Context, nfcID string) (BindingStatus, error) {
	bracelet, err := r.GetByNfcID(ctx, nfcID)
	if err != nil {
		return BindingStatus{}, err
	}
	if bracelet == nil {
		return BindingStatus{}, nil
	}

	return BindingStatus{
		Exists:  true,
		IsBound: bracelet.IsBound(),
		UserID:  bracelet.UserID,
	}, nil
}

func (r *braceletRepository) Create(ctx context.Context, bracelet *Bracelet) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(bracelet).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return log.Err("failed to create bracelet", err, "nfcID", bracelet.NfcID)
	}

	return nil
}

// BindToUser claims a tag for a user. The claim is a single conditional
// UPDATE so two first-tappers cannot both win; an unprovisioned tag is
// created already bound. Binding a tag the user already owns is a no-op
// that keeps the original bind timestamp.
func (r *braceletRepository) BindToUser(
	ctx context.Context,
	nfcID string,
	userID uuid.UUID,
) (*Bracelet, error) {
	log := r.log.Function("BindToUser")

	now := time.Now()
	result := r.db.SQLWithContext(ctx).
		Model(&Bracelet{}).
		Where("nfc_id = ? AND user_id IS NULL", nfcID).
		Updates(map[string]any{"user_id": userID, "bound_at": now})
	if result.Error != nil {
		return nil, log.Err("failed to claim bracelet", result.Error, "nfcID", nfcID)
	}

	if result.RowsAffected == 1 {
		log.Info("Bound bracelet", "nfcID", nfcID, "userID", userID)
		return r.GetByNfcID(ctx, nfcID)
	}

	bracelet, err := r.GetByNfcID(ctx, nfcID)
	if err != nil {
		return nil, err
	}

	if bracelet == nil {
		created := &Bracelet{NfcID: nfcID, UserID: &userID, BoundAt: &now}
		if createErr := r.Create(ctx, created); createErr != nil {
			if errors.Is(createErr, gorm.ErrDuplicatedKey) {
				// Lost a provisioning race, resolve against the winner's row.
				return r.BindToUser(ctx, nfcID, userID)
			}
			return nil, createErr
		}
		log.Info("Created and bound bracelet", "nfcID", nfcID, "userID", userID)
		return created, nil
	}

	if bracelet.BelongsTo(userID) {
		return bracelet, nil
	}

	return nil, types.ErrBraceletAlreadyBound
}

func (r *braceletRepository) Unbind(ctx context.Context, nfcID string) error {
	log := r.log.Function("Unbind")

	result := r.db.SQLWithContext(ctx).
		Model(&Bracelet{}).
		Where("nfc_id = ?", nfcID).
		Updates(map[string]any{"user_id": nil, "bound_at": nil})
	if result.Error != nil {
		return log.Err("failed to unbind bracelet", result.Error, "nfcID", nfcID)
	}
	if result.RowsAffected == 0 {
		return types.ErrTagNotFound
	}

	return nil
}
