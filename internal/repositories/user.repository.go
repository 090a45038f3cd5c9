package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/database"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	. "github.com/pawaovo/nfc-bracelet-fortune/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	USER_CACHE_EXPIRY           = 7 * 24 * time.Hour
	USER_CACHE_PREFIX           = "user:"
	OPENID_MAPPING_CACHE_PREFIX = "openid:"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByOpenID(ctx context.Context, openID string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	FindOrCreateByOpenID(ctx context.Context, openID string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if found := r.getCacheByID(ctx, id, &user); found {
		return &user, nil
	}

	if err := r.db.SQLWithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get user by id", err, "id", id)
	}

	r.addUserToCache(ctx, &user)

	return &user, nil
}

func (r *userRepository) GetByOpenID(ctx context.Context, openID string) (*User, error) {
	log := r.log.Function("GetByOpenID")

	// The openid cache maps to a user id so both lookups share the primary
	// user cache, mirroring the id-keyed entries.
	var userID string
	mappingKey := OPENID_MAPPING_CACHE_PREFIX + openID
	found, err := database.NewCacheBuilder(r.db.Cache.User, mappingKey).
		WithContext(ctx).
		Get(&userID)
	if err == nil && found {
		if id, parseErr := uuid.Parse(userID); parseErr == nil {
			var cached User
			if ok := r.getCacheByID(ctx, id, &cached); ok {
				return &cached, nil
			}
		}
	}

	var user User
	if err := r.db.SQLWithContext(ctx).First(&user, "wechat_open_id = ?", openID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get user by open id", err)
	}

	r.addUserToCache(ctx, &user)
	r.addOpenIDMappingToCache(ctx, &user)

	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	log := r.log.Function("GetByUsername")

	var user User
	if err := r.db.SQLWithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get user by username", err, "username", username)
	}

	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return log.Err("failed to create user", err, "openID", user.WechatOpenID)
	}

	r.addUserToCache(ctx, user)
	r.addOpenIDMappingToCache(ctx, user)

	log.Info("Created user", "userID", user.ID)
	return nil
}

// FindOrCreateByOpenID resolves the account for an external-login subject,
// creating an empty profile on first contact. A create that loses a race
// to a concurrent login re-reads the winner's row.
func (r *userRepository) FindOrCreateByOpenID(ctx context.Context, openID string) (*User, error) {
	log := r.log.Function("FindOrCreateByOpenID")

	user, err := r.GetByOpenID(ctx, openID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	newUser := &User{WechatOpenID: openID}
	if createErr := r.db.SQLWithContext(ctx).Create(newUser).Error; createErr != nil {
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return r.GetByOpenID(ctx, openID)
		}
		return nil, log.Err("failed to create user", createErr)
	}

	r.addUserToCache(ctx, newUser)
	r.addOpenIDMappingToCache(ctx, newUser)

	log.Info("Created user on first login", "userID", newUser.ID)
	return newUser, nil
}

func (r *userRepository) Update(ctx context.Context, user *User) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return log.Err("failed to update user", err, "userID", user.ID)
	}

	r.clearUserCache(ctx, user)

	return nil
}

func (r *userRepository) getCacheByID(ctx context.Context, id uuid.UUID, user *User) bool {
	cacheKey := USER_CACHE_PREFIX + id.String()
	found, err := database.NewCacheBuilder(r.db.Cache.User, cacheKey).WithContext(ctx).Get(user)
	if err != nil {
		r.log.Warn("failed to get user from cache", "userID", id, "error", err)
		return false
	}
	return found
}

func (r *userRepository) addUserToCache(ctx context.Context, user *User) {
	cacheKey := USER_CACHE_PREFIX + user.ID.String()
	if err := database.NewCacheBuilder(r.db.Cache.User, cacheKey).
		WithStruct(user).
		WithTTL(USER_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		r.log.Warn("failed to add user to cache", "userID", user.ID, "error", err)
	}
}

func (r *userRepository) addOpenIDMappingToCache(ctx context.Context, user *User) {
	mappingKey := OPENID_MAPPING_CACHE_PREFIX + user.WechatOpenID
	if err := database.NewCacheBuilder(r.db.Cache.User, mappingKey).
		WithStruct(user.ID.String()).
		WithTTL(USER_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		r.log.Warn("failed to cache openid mapping", "userID", user.ID, "error", err)
	}
}

func (r *userRepository) clearUserCache(ctx context.Context, user *User) {
	log := r.log.Function("clearUserCache")

	userCacheKey := USER_CACHE_PREFIX + user.ID.String()
	if err := database.NewCacheBuilder(r.db.Cache.User, userCacheKey).WithContext(ctx).Delete(); err != nil {
		log.Warn("failed to clear user cache", "userID", user.ID, "error", err)
	}

	if user.WechatOpenID != "" {
		mappingKey := OPENID_MAPPING_CACHE_PREFIX + user.WechatOpenID
		if err := database.NewCacheBuilder(r.db.Cache.User, mappingKey).WithContext(ctx).Delete(); err != nil {
			log.Warn("failed to clear openid mapping cache", "userID", user.ID, "error", err)
		}
	}
}
