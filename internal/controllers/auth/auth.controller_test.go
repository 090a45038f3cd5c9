package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/config"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/models"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/repositories"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/services"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeUserRepo struct {
	repositories.UserRepository
	byOpenID map[string]*models.User
}

func (f *fakeUserRepo) FindOrCreateByOpenID(_ context.Context, openID string) (*models.User, error) {
	if user, ok := f.byOpenID[openID]; ok {
		return user, nil
	}
	user := &models.User{WechatOpenID: openID}
	user.ID = uuid.New()
	f.byOpenID[openID] = user
	return user, nil
}

type fakeBraceletRepo struct {
	repositories.BraceletRepository
	byNfcID map[string]*models.Bracelet

	// When set, the lookup sees an unclaimed tag but the conditional
	// claim loses to another writer in between.
	bindRace bool
}

func (f *fakeBraceletRepo) GetByNfcID(_ context.Context, nfcID string) (*models.Bracelet, error) {
	if f.bindRace {
		return nil, nil
	}
	return f.byNfcID[nfcID], nil
}

func (f *fakeBraceletRepo) BindToUser(
	_ context.Context,
	nfcID string,
	userID uuid.UUID,
) (*models.Bracelet, error) {
	if f.bindRace {
		return nil, types.ErrBraceletAlreadyBound
	}
	bracelet, ok := f.byNfcID[nfcID]
	if !ok {
		now := time.Now()
		bracelet = &models.Bracelet{NfcID: nfcID, UserID: &userID, BoundAt: &now}
		bracelet.ID = uuid.New()
		f.byNfcID[nfcID] = bracelet
		return bracelet, nil
	}
	if bracelet.BelongsTo(userID) {
		return bracelet, nil
	}
	if bracelet.IsBound() {
		return nil, types.ErrBraceletAlreadyBound
	}
	now := time.Now()
	bracelet.UserID = &userID
	bracelet.BoundAt = &now
	return bracelet, nil
}

type fakeProductRepo struct {
	repositories.ProductRepository
	products []models.Product
	err      error
}

func (f *fakeProductRepo) ListAll(_ context.Context) ([]models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

type fakeWeChat struct {
	fail bool
}

func (f *fakeWeChat) Code2Session(_ context.Context, code string) (string, error) {
	if f.fail {
		return "", errors.New("code exchange rejected")
	}
	return "openid_" + code, nil
}

func newTestController() (*Controller, *fakeUserRepo, *fakeBraceletRepo, *fakeWeChat) {
	users := &fakeUserRepo{byOpenID: map[string]*models.User{}}
	bracelets := &fakeBraceletRepo{byNfcID: map[string]*models.Bracelet{}}
	products := &fakeProductRepo{products: []models.Product{
		{Name: "入门款", Price: decimal.NewFromInt(99)},
		{Name: "典藏款", Price: decimal.NewFromInt(699)},
	}}
	wechat := &fakeWeChat{}

	repo := repositories.Repository{
		User:     users,
		Bracelet: bracelets,
		Product:  products,
	}
	tokens := services.NewTokenService(config.Config{JWTSecret: "test-secret"})

	return New(repo, wechat, tokens), users, bracelets, wechat
}

func completeUser(openID string) *models.User {
	name := "测试用户"
	username := "tester"
	password := "secret"
	birthday := datatypes.Date(time.Date(1995, 6, 15, 0, 0, 0, 0, time.UTC))

	user := &models.User{
		WechatOpenID: openID,
		Name:         &name,
		Username:     &username,
		Password:     &password,
		Birthday:     &birthday,
	}
	user.ID = uuid.New()
	return user
}

func TestLoginWithoutTag(t *testing.T) {
	controller, users, _, _ := newTestController()
	ctx := context.Background()

	result, err := controller.Login(ctx, "abc", "")
	require.NoError(t, err)
	assert.Equal(t, StatusProfileIncomplete, result.Status)
	assert.NotEmpty(t, result.Token)
	require.NotNil(t, result.User)
	assert.Nil(t, result.Preview)

	users.byOpenID["openid_full"] = completeUser("openid_full")
	result, err = controller.Login(ctx, "full", "")
	require.NoError(t, err)
	assert.Equal(t, StatusAuthenticated, result.Status)
	assert.NotEmpty(t, result.Token)
}

func TestLoginBindsUnownedTag(t *testing.T) {
	controller, _, bracelets, _ := newTestController()
	ctx := context.Background()

	result, err := controller.Login(ctx, "abc", "NFC-001")
	require.NoError(t, err)
	assert.Equal(t, StatusProfileIncomplete, result.Status)
	assert.NotEmpty(t, result.Token)

	bracelet := bracelets.byNfcID["NFC-001"]
	require.NotNil(t, bracelet)
	assert.True(t, bracelet.IsBound())
	assert.NotNil(t, bracelet.BoundAt)
}

func TestLoginRebindOwnTagIsIdempotent(t *testing.T) {
	controller, _, bracelets, _ := newTestController()
	ctx := context.Background()

	_, err := controller.Login(ctx, "abc", "NFC-001")
	require.NoError(t, err)
	firstBoundAt := *bracelets.byNfcID["NFC-001"].BoundAt

	result, err := controller.Login(ctx, "abc", "NFC-001")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, firstBoundAt, *bracelets.byNfcID["NFC-001"].BoundAt)
}

func TestLoginSomeoneElsesTagYieldsPreview(t *testing.T) {
	controller, _, _, _ := newTestController()
	ctx := context.Background()

	_, err := controller.Login(ctx, "owner", "NFC-001")
	require.NoError(t, err)

	result, err := controller.Login(ctx, "visitor", "NFC-001")
	require.NoError(t, err)

	assert.Equal(t, StatusVisitorPreview, result.Status)
	assert.Empty(t, result.Token)
	assert.Nil(t, result.User)
	require.NotNil(t, result.Preview)
	assert.GreaterOrEqual(t, result.Preview.OverallScore, 60)
	assert.LessOrEqual(t, result.Preview.OverallScore, 100)
	assert.NotNil(t, result.Preview.Recommendation)
}

func TestLoginBindRaceYieldsPreview(t *testing.T) {
	controller, _, bracelets, _ := newTestController()
	bracelets.bindRace = true

	result, err := controller.Login(context.Background(), "abc", "NFC-001")
	require.NoError(t, err)

	assert.Equal(t, StatusVisitorPreview, result.Status)
	assert.Empty(t, result.Token)
	assert.Nil(t, result.User)
	require.NotNil(t, result.Preview)
	assert.NotNil(t, result.Preview.Recommendation)
}

func TestVerifyNFCAccessBindRaceYieldsVisitor(t *testing.T) {
	controller, _, bracelets, _ := newTestController()
	bracelets.bindRace = true

	result, err := controller.VerifyNFCAccess(context.Background(), completeUser("openid_a"), "NFC-001")
	require.NoError(t, err)
	assert.Equal(t, AccessVisitor, result.Status)
}

func TestPreviewFallsBackWhenCatalogUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		catalog *fakeProductRepo
	}{
		{"empty catalog", &fakeProductRepo{}},
		{"query failure", &fakeProductRepo{err: errors.New("db down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repositories.Repository{
				User:     &fakeUserRepo{byOpenID: map[string]*models.User{}},
				Bracelet: &fakeBraceletRepo{byNfcID: map[string]*models.Bracelet{}, bindRace: true},
				Product:  tt.catalog,
			}
			tokens := services.NewTokenService(config.Config{JWTSecret: "test-secret"})
			controller := New(repo, &fakeWeChat{}, tokens)

			result, err := controller.Login(context.Background(), "abc", "NFC-001")
			require.NoError(t, err)
			require.NotNil(t, result.Preview)
			require.NotNil(t, result.Preview.Recommendation)
			assert.Equal(t, defaultPreviewProduct.Name, result.Preview.Recommendation.Name)
			assert.False(t, result.Preview.Recommendation.Price.IsZero())
		})
	}
}

func TestLoginFailsWhenCodeExchangeFails(t *testing.T) {
	controller, _, _, wechat := newTestController()
	wechat.fail = true

	_, err := controller.Login(context.Background(), "abc", "")
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestVerifyNFCAccess(t *testing.T) {
	controller, users, bracelets, _ := newTestController()
	ctx := context.Background()

	owner := completeUser("openid_owner")
	visitor := completeUser("openid_visitor")
	users.byOpenID[owner.WechatOpenID] = owner
	users.byOpenID[visitor.WechatOpenID] = visitor

	// Unowned tag binds to the caller.
	result, err := controller.VerifyNFCAccess(ctx, owner, "NFC-100")
	require.NoError(t, err)
	assert.Equal(t, AccessOwner, result.Status)
	assert.True(t, bracelets.byNfcID["NFC-100"].BelongsTo(owner.ID))

	// Owner keeps OWNER on repeat taps.
	result, err = controller.VerifyNFCAccess(ctx, owner, "NFC-100")
	require.NoError(t, err)
	assert.Equal(t, AccessOwner, result.Status)

	// Anyone else is a visitor.
	result, err = controller.VerifyNFCAccess(ctx, visitor, "NFC-100")
	require.NoError(t, err)
	assert.Equal(t, AccessVisitor, result.Status)

	_, err = controller.VerifyNFCAccess(ctx, visitor, "")
	assert.Error(t, err)
}
