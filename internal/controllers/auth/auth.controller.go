package auth

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/models"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/repositories"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/services"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/types"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/utils"

	"github.com/shopspring/decimal"
)

// LoginStatus tells the client which screen to show next.
type LoginStatus string

const (
	StatusAuthenticated     LoginStatus = "AUTHENTICATED"
	StatusProfileIncomplete LoginStatus = "PROFILE_INCOMPLETE"
	StatusVisitorPreview    LoginStatus = "VISITOR_PREVIEW"
)

// NFCAccess is the caller's relationship to a tapped tag.
type NFCAccess string

const (
	AccessOwner   NFCAccess = "OWNER"
	AccessVisitor NFCAccess = "VISITOR"
)

// PreviewFortune is the teaser shown when a visitor taps someone else's
// bracelet at login. It is random, unpersisted, and carries no token.
type PreviewFortune struct {
	OverallScore   int             `json:"overallScore"`
	Recommendation *models.Product `json:"recommendation"`
}

type LoginResult struct {
	Status  LoginStatus         `json:"status"`
	Token   string              `json:"token,omitempty"`
	User    *models.UserPartial `json:"user,omitempty"`
	Preview *PreviewFortune     `json:"preview,omitempty"`
}

type VerifyResult struct {
	Status NFCAccess `json:"status"`
}

// Controller owns the login and binding workflow.
type Controller struct {
	repo   repositories.Repository
	wechat services.WeChatVerifier
	tokens *services.TokenService
	log    logger.Logger
}

func New(
	repo repositories.Repository,
	wechat services.WeChatVerifier,
	tokens *services.TokenService,
) *Controller {
	return &Controller{
		repo:   repo,
		wechat: wechat,
		tokens: tokens,
		log:    logger.New("authController"),
	}
}

// Login exchanges a client code for a session, optionally processing an
// NFC tap in the same call. Tapping a bracelet someone else owns yields a
// visitor preview instead of a session.
func (c *Controller) Login(ctx context.Context, code, nfcID string) (*LoginResult, error) {
	log := c.log.Function("Login")

	openID, err := c.wechat.Code2Session(ctx, code)
	if err != nil {
		log.Warn("login code exchange failed", "error", err)
		return nil, types.ErrUnauthorized
	}

	user, err := c.repo.User.FindOrCreateByOpenID(ctx, openID)
	if err != nil {
		return nil, err
	}

	if nfcID != "" {
		bracelet, err := c.repo.Bracelet.GetByNfcID(ctx, nfcID)
		if err != nil {
			return nil, err
		}

		if bracelet != nil && bracelet.IsBound() && !bracelet.BelongsTo(user.ID) {
			return c.visitorPreview(ctx)
		}

		if _, err := c.repo.Bracelet.BindToUser(ctx, nfcID, user.ID); err != nil {
			if errors.Is(err, types.ErrBraceletAlreadyBound) {
				// Lost the bind race between lookup and claim.
				return c.visitorPreview(ctx)
			}
			return nil, err
		}
	}

	token, err := c.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	status := StatusAuthenticated
	if !user.IsProfileComplete() {
		status = StatusProfileIncomplete
	}

	partial := user.ToPartial()
	return &LoginResult{
		Status: status,
		Token:  token,
		User:   &partial,
	}, nil
}

// VerifyNFCAccess classifies an authenticated tap: the caller's own tag,
// someone else's, or an unowned tag that gets bound on the spot.
func (c *Controller) VerifyNFCAccess(
	ctx context.Context,
	user *models.User,
	nfcID string,
) (*VerifyResult, error) {
	if nfcID == "" {
		return nil, types.ValidationError("nfcId is required")
	}

	bracelet, err := c.repo.Bracelet.GetByNfcID(ctx, nfcID)
	if err != nil {
		return nil, err
	}

	if bracelet != nil && bracelet.IsBound() {
		if bracelet.BelongsTo(user.ID) {
			return &VerifyResult{Status: AccessOwner}, nil
		}
		return &VerifyResult{Status: AccessVisitor}, nil
	}

	if _, err := c.repo.Bracelet.BindToUser(ctx, nfcID, user.ID); err != nil {
		if errors.Is(err, types.ErrBraceletAlreadyBound) {
			return &VerifyResult{Status: AccessVisitor}, nil
		}
		return nil, err
	}

	return &VerifyResult{Status: AccessOwner}, nil
}

// defaultPreviewProduct backs the visitor teaser when the catalog is
// empty or unreachable. A preview always carries a recommendation.
var defaultPreviewProduct = models.Product{
	Name:        "开运水晶手链",
	Description: "天然水晶打磨，佩戴提升每日好运。",
	Price:       decimal.NewFromInt(199),
}

func (c *Controller) visitorPreview(ctx context.Context) (*LoginResult, error) {
	log := c.log.Function("visitorPreview")
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	preview := &PreviewFortune{
		OverallScore: utils.IntBetween(r, 60, 101),
	}

	products, err := c.repo.Product.ListAll(ctx)
	if err != nil {
		log.Warn("failed to load preview catalog", "error", err)
	}
	if len(products) > 0 {
		preview.Recommendation = &products[r.Intn(len(products))]
	} else {
		fallback := defaultPreviewProduct
		preview.Recommendation = &fallback
	}

	return &LoginResult{
		Status:  StatusVisitorPreview,
		Preview: preview,
	}, nil
}
