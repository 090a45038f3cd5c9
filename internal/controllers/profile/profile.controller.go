package profile

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/models"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/repositories"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/services"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/types"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/utils"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AccountType distinguishes web registrations that arrived with a
// provisioned tag from those that did not.
type AccountType string

const (
	AccountUser    AccountType = "user"
	AccountVisitor AccountType = "visitor"
)

type UpdateProfileInput struct {
	Name     *string `json:"name"`
	Birthday *string `json:"birthday"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	NfcID    *string `json:"nfcId"`
}

type WebCredentialsInput struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
	Birthday *string `json:"birthday"`
	NfcID    string  `json:"nfcId"`
}

type WebSessionResult struct {
	Token       string             `json:"token"`
	User        models.UserPartial `json:"user"`
	AccountType AccountType        `json:"accountType"`
}

// UserStats summarizes an account for the profile screen.
type UserStats struct {
	ProfileComplete bool  `json:"profileComplete"`
	BraceletCount   int64 `json:"braceletCount"`
	FortuneCount    int64 `json:"fortuneCount"`
}

type Controller struct {
	repo   repositories.Repository
	tokens *services.TokenService
	tx     services.Transactor
	log    logger.Logger
}

func New(
	repo repositories.Repository,
	tokens *services.TokenService,
	tx services.Transactor,
) *Controller {
	return &Controller{
		repo:   repo,
		tokens: tokens,
		tx:     tx,
		log:    logger.New("profileController"),
	}
}

func (c *Controller) GetProfile(ctx context.Context, user *models.User) models.UserPartial {
	return user.ToPartial()
}

// UpdateProfile applies the provided fields after validation. A tag id in
// the same request binds it to the caller, which is how the mini-program
// completes first-run setup in one submit.
func (c *Controller) UpdateProfile(
	ctx context.Context,
	user *models.User,
	input UpdateProfileInput,
) (*models.UserPartial, error) {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || len([]rune(name)) > 20 {
			return nil, types.ValidationError("name must be 1-20 characters")
		}
		user.Name = &name
	}

	if input.Birthday != nil {
		birthday, err := parseBirthday(*input.Birthday)
		if err != nil {
			return nil, err
		}
		user.Birthday = birthday
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, types.ValidationError("username must not be empty")
		}
		user.Username = &username
	}

	if input.Password != nil {
		if *input.Password == "" {
			return nil, types.ValidationError("password must not be empty")
		}
		user.Password = input.Password
	}

	// The profile write and the tag claim commit together: a failed bind
	// must not leave a half-updated profile behind.
	err := c.tx.Execute(ctx, func(txCtx context.Context) error {
		if err := c.repo.User.Update(txCtx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return types.ErrUsernameTaken
			}
			return err
		}

		if input.NfcID != nil && *input.NfcID != "" {
			if _, err := c.repo.Bracelet.BindToUser(txCtx, *input.NfcID, user.ID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	partial := user.ToPartial()
	return &partial, nil
}

// RegisterWeb creates or re-enters a credentialed account outside the
// mini-program. The tag is only bound when it already exists in the
// registry; an unknown tag demotes the session to a visitor account, it
// never provisions hardware.
func (c *Controller) RegisterWeb(
	ctx context.Context,
	input WebCredentialsInput,
) (*WebSessionResult, error) {
	log := c.log.Function("RegisterWeb")

	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, types.ValidationError("username and password are required")
	}

	user, err := c.repo.User.GetByUsername(ctx, username)
	newAccount := false
	switch {
	case err == nil:
		if !passwordMatches(user, input.Password) {
			return nil, types.ErrUsernameTaken
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = buildWebUser(username, input)
		if err != nil {
			return nil, err
		}
		newAccount = true
	default:
		return nil, err
	}

	// Account creation and the tag claim commit together: a failed bind
	// must not leave a credentialed account the caller never saw.
	accountType := AccountVisitor
	err = c.tx.Execute(ctx, func(txCtx context.Context) error {
		if newAccount {
			if err := c.repo.User.Create(txCtx, user); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return types.ErrUsernameTaken
				}
				return err
			}
		}

		if input.NfcID == "" {
			return nil
		}

		status, err := c.repo.Bracelet.GetBindingStatus(txCtx, input.NfcID)
		if err != nil {
			return err
		}
		if !status.Exists {
			return nil
		}

		if _, err := c.repo.Bracelet.BindToUser(txCtx, input.NfcID, user.ID); err != nil {
			if !errors.Is(err, types.ErrBraceletAlreadyBound) {
				return err
			}
			log.Warn("registration tag belongs to another user",
				"userID", user.ID, "nfcID", input.NfcID)
			return nil
		}

		accountType = AccountUser
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := c.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &WebSessionResult{
		Token:       token,
		User:        user.ToPartial(),
		AccountType: accountType,
	}, nil
}

// LoginWeb authenticates against an already-bound tag: the tag must exist,
// be bound, and be bound to the credentialed account. Name and birthday
// updates piggyback on a successful login.
func (c *Controller) LoginWeb(
	ctx context.Context,
	input WebCredentialsInput,
) (*WebSessionResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, types.ValidationError("username and password are required")
	}
	if input.NfcID == "" {
		return nil, types.ValidationError("nfcId is required")
	}

	user, err := c.repo.User.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrInvalidCredentials
		}
		return nil, err
	}
	if !passwordMatches(user, input.Password) {
		return nil, types.ErrInvalidCredentials
	}

	status, err := c.repo.Bracelet.GetBindingStatus(ctx, input.NfcID)
	if err != nil {
		return nil, err
	}
	if !status.Exists {
		return nil, types.ErrTagNotFound
	}
	if !status.IsBound || status.UserID == nil || *status.UserID != user.ID {
		return nil, types.ErrTagNotBound
	}

	updated := false
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		name := strings.TrimSpace(*input.Name)
		user.Name = &name
		updated = true
	}
	if input.Birthday != nil && *input.Birthday != "" {
		birthday, err := parseBirthday(*input.Birthday)
		if err != nil {
			return nil, err
		}
		user.Birthday = birthday
		updated = true
	}
	if updated {
		if err := c.repo.User.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	token, err := c.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &WebSessionResult{
		Token:       token,
		User:        user.ToPartial(),
		AccountType: AccountUser,
	}, nil
}

// GetUserStats reports completeness plus bracelet and fortune counts.
func (c *Controller) GetUserStats(ctx context.Context, user *models.User) (*UserStats, error) {
	braceletCount, err := c.repo.Bracelet.CountByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	_, fortuneCount, err := c.repo.Fortune.ListByUser(ctx, user.ID, 1, 1)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		ProfileComplete: user.IsProfileComplete(),
		BraceletCount:   braceletCount,
		FortuneCount:    fortuneCount,
	}, nil
}

func buildWebUser(username string, input WebCredentialsInput) (*models.User, error) {
	user := &models.User{
		WechatOpenID: "web_" + username,
		Username:     &username,
		Password:     &input.Password,
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		name := strings.TrimSpace(*input.Name)
		user.Name = &name
	}
	if input.Birthday != nil && *input.Birthday != "" {
		birthday, err := parseBirthday(*input.Birthday)
		if err != nil {
			return nil, err
		}
		user.Birthday = birthday
	}

	return user, nil
}

// TODO: hash passwords with bcrypt (x/crypto) instead of storing them as
// provided; web clients currently send the stored secret verbatim.
func passwordMatches(user *models.User, password string) bool {
	if user.Password == nil || password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*user.Password), []byte(password)) == 1
}

func parseBirthday(value string) (*datatypes.Date, error) {
	date, err := utils.ParseDate(value)
	if err != nil {
		return nil, types.ValidationError(err.Error())
	}

	t := time.Time(date)
	if t.Year() < 1900 || t.After(time.Now()) {
		return nil, types.ValidationError("birthday must be between 1900 and today")
	}

	return &date, nil
}
