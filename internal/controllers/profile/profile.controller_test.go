package profile

import (
	"context"
	"testing"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/models"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/repositories"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/services"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	repositories.UserRepository
	byUsername map[string]*models.User
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if user, ok := f.byUsername[username]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if user.Username != nil {
		if _, exists := f.byUsername[*user.Username]; exists {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = uuid.New()
	if user.Username != nil {
		f.byUsername[*user.Username] = user
	}
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if user.Username != nil {
		if existing, ok := f.byUsername[*user.Username]; ok && existing.ID != user.ID {
			return gorm.ErrDuplicatedKey
		}
		f.byUsername[*user.Username] = user
	}
	return nil
}

type fakeBraceletRepo struct {
	repositories.BraceletRepository
	byNfcID map[string]*models.Bracelet
}

func (f *fakeBraceletRepo) GetBindingStatus(
	_ context.Context,
	nfcID string,
) (models.BindingStatus, error) {
	bracelet, ok := f.byNfcID[nfcID]
	if !ok {
		return models.BindingStatus{}, nil
	}
	return models.BindingStatus{
		Exists:  true,
		IsBound: bracelet.IsBound(),
		UserID:  bracelet.UserID,
	}, nil
}

func (f *fakeBraceletRepo) BindToUser(
	_ context.Context,
	nfcID string,
	userID uuid.UUID,
) (*models.Bracelet, error) {
	bracelet, ok := f.byNfcID[nfcID]
	if !ok {
		now := time.Now()
		bracelet = &models.Bracelet{NfcID: nfcID, UserID: &userID, BoundAt: &now}
		f.byNfcID[nfcID] = bracelet
		return bracelet, nil
	}
	if bracelet.BelongsTo(userID) {
		return bracelet, nil
	}
	if bracelet.IsBound() {
		return nil, types.ErrBraceletAlreadyBound
	}
	bracelet.UserID = &userID
	return bracelet, nil
}

func (f *fakeBraceletRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, bracelet := range f.byNfcID {
		if bracelet.BelongsTo(userID) {
			count++
		}
	}
	return count, nil
}

type fakeFortuneRepo struct {
	repositories.FortuneRepository
	total int64
}

func (f *fakeFortuneRepo) ListByUser(
	_ context.Context,
	_ uuid.UUID,
	_, _ int,
) ([]models.DailyFortune, int64, error) {
	return nil, f.total, nil
}

type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func newTestFixture() (*Controller, *fakeUserRepo, *fakeBraceletRepo, *fakeTransactor) {
	users := &fakeUserRepo{byUsername: map[string]*models.User{}}
	bracelets := &fakeBraceletRepo{byNfcID: map[string]*models.Bracelet{}}
	tx := &fakeTransactor{}

	repo := repositories.Repository{
		User:     users,
		Bracelet: bracelets,
		Fortune:  &fakeFortuneRepo{total: 3},
	}

	controller := New(repo, services.NewTokenService(config.Config{JWTSecret: "test-secret"}), tx)
	return controller, users, bracelets, tx
}

func str(s string) *string { return &s }

func TestUpdateProfileValidation(t *testing.T) {
	controller, _, _, _ := newTestFixture()
	ctx := context.Background()
	user := &models.User{WechatOpenID: "openid_a"}
	user.ID = uuid.New()

	_, err := controller.UpdateProfile(ctx, user, UpdateProfileInput{Name: str("")})
	assert.Error(t, err)

	_, err = controller.UpdateProfile(ctx, user, UpdateProfileInput{
		Name: str("这个名字实在是太长了超过了二十个字符的限制所以无效"),
	})
	assert.Error(t, err)

	_, err = controller.UpdateProfile(ctx, user, UpdateProfileInput{Birthday: str("1899-12-31")})
	assert.Error(t, err)

	_, err = controller.UpdateProfile(ctx, user, UpdateProfileInput{Birthday: str("not-a-date")})
	assert.Error(t, err)

	partial, err := controller.UpdateProfile(ctx, user, UpdateProfileInput{
		Name:     str("小明"),
		Birthday: str("1995-06-15"),
	})
	require.NoError(t, err)
	assert.Equal(t, "小明", *partial.Name)
}

func TestUpdateProfileBindsTag(t *testing.T) {
	controller, _, bracelets, _ := newTestFixture()
	user := &models.User{WechatOpenID: "openid_a"}
	user.ID = uuid.New()

	_, err := controller.UpdateProfile(context.Background(), user, UpdateProfileInput{
		Name:  str("小明"),
		NfcID: str("NFC-001"),
	})
	require.NoError(t, err)
	assert.True(t, bracelets.byNfcID["NFC-001"].BelongsTo(user.ID))
}

func TestUpdateProfileUsernameConflict(t *testing.T) {
	controller, users, _, _ := newTestFixture()
	ctx := context.Background()

	taken := &models.User{WechatOpenID: "openid_b", Username: str("taken")}
	taken.ID = uuid.New()
	users.byUsername["taken"] = taken

	user := &models.User{WechatOpenID: "openid_a"}
	user.ID = uuid.New()

	_, err := controller.UpdateProfile(ctx, user, UpdateProfileInput{Username: str("taken")})
	assert.ErrorIs(t, err, types.ErrUsernameTaken)
}

func TestRegisterWebWithProvisionedTag(t *testing.T) {
	controller, _, bracelets, _ := newTestFixture()
	bracelets.byNfcID["NFC-001"] = &models.Bracelet{NfcID: "NFC-001"}

	result, err := controller.RegisterWeb(context.Background(), WebCredentialsInput{
		Username: "alice",
		Password: "secret",
		NfcID:    "NFC-001",
	})
	require.NoError(t, err)

	assert.Equal(t, AccountUser, result.AccountType)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "web_alice", result.User.WechatOpenID)
	assert.True(t, bracelets.byNfcID["NFC-001"].IsBound())
}

func TestRegisterWebRunsInsideTransaction(t *testing.T) {
	controller, _, bracelets, tx := newTestFixture()
	bracelets.byNfcID["NFC-001"] = &models.Bracelet{NfcID: "NFC-001"}

	_, err := controller.RegisterWeb(context.Background(), WebCredentialsInput{
		Username: "alice",
		Password: "secret",
		NfcID:    "NFC-001",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)
}

func TestUpdateProfileRunsInsideTransaction(t *testing.T) {
	controller, users, _, tx := newTestFixture()
	user := &models.User{WechatOpenID: "openid_a"}
	user.ID = uuid.New()

	taken := &models.User{WechatOpenID: "openid_b", Username: str("taken")}
	taken.ID = uuid.New()
	users.byUsername["taken"] = taken

	_, err := controller.UpdateProfile(context.Background(), user, UpdateProfileInput{
		Name: str("小明"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)

	// A failure inside the unit of work surfaces to the caller.
	_, err = controller.UpdateProfile(context.Background(), user, UpdateProfileInput{
		Username: str("taken"),
	})
	assert.ErrorIs(t, err, types.ErrUsernameTaken)
	assert.Equal(t, 2, tx.calls)
}

func TestRegisterWebUnknownTagStaysVisitor(t *testing.T) {
	controller, _, bracelets, _ := newTestFixture()

	result, err := controller.RegisterWeb(context.Background(), WebCredentialsInput{
		Username: "bob",
		Password: "secret",
		NfcID:    "NFC-UNKNOWN",
	})
	require.NoError(t, err)

	assert.Equal(t, AccountVisitor, result.AccountType)
	assert.NotEmpty(t, result.Token)

	// Registration never provisions hardware.
	_, exists := bracelets.byNfcID["NFC-UNKNOWN"]
	assert.False(t, exists)
}

func TestRegisterWebExistingUser(t *testing.T) {
	controller, _, _, _ := newTestFixture()
	ctx := context.Background()

	first, err := controller.RegisterWeb(ctx, WebCredentialsInput{
		Username: "carol",
		Password: "secret",
	})
	require.NoError(t, err)

	// Same credentials re-enter the account.
	again, err := controller.RegisterWeb(ctx, WebCredentialsInput{
		Username: "carol",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, again.User.ID)

	// Wrong password cannot take over the name.
	_, err = controller.RegisterWeb(ctx, WebCredentialsInput{
		Username: "carol",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, types.ErrUsernameTaken)
}

func TestLoginWeb(t *testing.T) {
	controller, _, bracelets, _ := newTestFixture()
	ctx := context.Background()

	bracelets.byNfcID["NFC-001"] = &models.Bracelet{NfcID: "NFC-001"}
	registered, err := controller.RegisterWeb(ctx, WebCredentialsInput{
		Username: "dave",
		Password: "secret",
		NfcID:    "NFC-001",
	})
	require.NoError(t, err)
	require.Equal(t, AccountUser, registered.AccountType)

	result, err := controller.LoginWeb(ctx, WebCredentialsInput{
		Username: "dave",
		Password: "secret",
		NfcID:    "NFC-001",
		Name:     str("大卫"),
		Birthday: str("1990-01-01"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "大卫", *result.User.Name)

	_, err = controller.LoginWeb(ctx, WebCredentialsInput{
		Username: "dave",
		Password: "wrong",
		NfcID:    "NFC-001",
	})
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)

	_, err = controller.LoginWeb(ctx, WebCredentialsInput{
		Username: "dave",
		Password: "secret",
		NfcID:    "NFC-MISSING",
	})
	assert.ErrorIs(t, err, types.ErrTagNotFound)

	bracelets.byNfcID["NFC-002"] = &models.Bracelet{NfcID: "NFC-002"}
	_, err = controller.LoginWeb(ctx, WebCredentialsInput{
		Username: "dave",
		Password: "secret",
		NfcID:    "NFC-002",
	})
	assert.ErrorIs(t, err, types.ErrTagNotBound)
}

func TestGetUserStats(t *testing.T) {
	controller, _, bracelets, _ := newTestFixture()
	user := &models.User{WechatOpenID: "openid_a"}
	user.ID = uuid.New()
	bracelets.byNfcID["NFC-001"] = &models.Bracelet{NfcID: "NFC-001", UserID: &user.ID}

	stats, err := controller.GetUserStats(context.Background(), user)
	require.NoError(t, err)

	assert.False(t, stats.ProfileComplete)
	assert.Equal(t, int64(1), stats.BraceletCount)
	assert.Equal(t, int64(3), stats.FortuneCount)
}
