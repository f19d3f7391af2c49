package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/domain/repositories"
	"blackwallet.backend/internal/interfaces/http/middleware"
	"blackwallet.backend/internal/usecases"
	"blackwallet.backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type authServiceStub struct {
	registerFn    func(ctx context.Context, input *entities.RegisterInput) (*entities.User, error)
	loginFn       func(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	refreshFn     func(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	getUserByIDFn func(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

func (s authServiceStub) Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, error) {
	return s.registerFn(ctx, input)
}
func (s authServiceStub) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	return s.loginFn(ctx, input)
}
func (s authServiceStub) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	return s.refreshFn(ctx, refreshToken)
}
func (s authServiceStub) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return s.getUserByIDFn(ctx, id)
}

type walletServiceStub struct {
	createFn  func(ctx context.Context, userID uuid.UUID, input *entities.CreateWalletInput) (*entities.Wallet, error)
	getFn     func(ctx context.Context, userID, walletID uuid.UUID) (*entities.Wallet, error)
	primaryFn func(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	listFn    func(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
	updateFn  func(ctx context.Context, userID, walletID uuid.UUID, input *entities.UpdateProfileInput) (*entities.Wallet, error)
}

func (s walletServiceStub) CreateWallet(ctx context.Context, userID uuid.UUID, input *entities.CreateWalletInput) (*entities.Wallet, error) {
	return s.createFn(ctx, userID, input)
}
func (s walletServiceStub) GetWallet(ctx context.Context, userID, walletID uuid.UUID) (*entities.Wallet, error) {
	return s.getFn(ctx, userID, walletID)
}
func (s walletServiceStub) GetPrimaryWallet(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	return s.primaryFn(ctx, userID)
}
func (s walletServiceStub) ListWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	return s.listFn(ctx, userID)
}
func (s walletServiceStub) UpdateProfile(ctx context.Context, userID, walletID uuid.UUID, input *entities.UpdateProfileInput) (*entities.Wallet, error) {
	return s.updateFn(ctx, userID, walletID, input)
}

type contactServiceStub struct {
	listFn   func(ctx context.Context, userID uuid.UUID) ([]*entities.Contact, error)
	saveFn   func(ctx context.Context, userID uuid.UUID, input *entities.SaveContactInput) (*entities.Contact, error)
	deleteFn func(ctx context.Context, userID, contactID uuid.UUID) error
}

func (s contactServiceStub) ListContacts(ctx context.Context, userID uuid.UUID) ([]*entities.Contact, error) {
	return s.listFn(ctx, userID)
}
func (s contactServiceStub) SaveContact(ctx context.Context, userID uuid.UUID, input *entities.SaveContactInput) (*entities.Contact, error) {
	return s.saveFn(ctx, userID, input)
}
func (s contactServiceStub) DeleteContact(ctx context.Context, userID, contactID uuid.UUID) error {
	return s.deleteFn(ctx, userID, contactID)
}

// ownedBy returns a GetWallet that only resolves wallets owned by owner.
func ownedBy(owner uuid.UUID, wallet *entities.Wallet) func(context.Context, uuid.UUID, uuid.UUID) (*entities.Wallet, error) {
	return func(_ context.Context, userID, walletID uuid.UUID) (*entities.Wallet, error) {
		if walletID != wallet.ID {
			return nil, domainerrors.ErrWalletNotFound
		}
		if userID != owner {
			return nil, domainerrors.ErrForbidden
		}
		return wallet, nil
	}
}

type ledgerServiceStub struct {
	depositFn  func(ctx context.Context, input *entities.DepositInput) (*entities.Transaction, error)
	withdrawFn func(ctx context.Context, input *entities.WithdrawInput) (*entities.WithdrawalResult, error)
	transferFn func(ctx context.Context, input *entities.TransferInput) (*entities.WithdrawalResult, error)
	yieldFn    func(ctx context.Context, input *entities.RewardInput) (*entities.Transaction, error)
	balanceFn  func(ctx context.Context, walletID uuid.UUID) (entities.BalanceSummary, error)
	historyFn  func(ctx context.Context, walletID uuid.UUID, filter repositories.TransactionFilter) (*entities.History, error)
}

func (s ledgerServiceStub) RecordDeposit(ctx context.Context, input *entities.DepositInput) (*entities.Transaction, error) {
	return s.depositFn(ctx, input)
}
func (s ledgerServiceStub) RecordWithdrawal(ctx context.Context, input *entities.WithdrawInput) (*entities.WithdrawalResult, error) {
	return s.withdrawFn(ctx, input)
}
func (s ledgerServiceStub) TransferFunds(ctx context.Context, input *entities.TransferInput) (*entities.WithdrawalResult, error) {
	return s.transferFn(ctx, input)
}
func (s ledgerServiceStub) RecordYield(ctx context.Context, input *entities.RewardInput) (*entities.Transaction, error) {
	return s.yieldFn(ctx, input)
}
func (s ledgerServiceStub) ComputeBalance(ctx context.Context, walletID uuid.UUID) (entities.BalanceSummary, error) {
	return s.balanceFn(ctx, walletID)
}
func (s ledgerServiceStub) History(ctx context.Context, walletID uuid.UUID, filter repositories.TransactionFilter) (*entities.History, error) {
	return s.historyFn(ctx, walletID, filter)
}

type approvalServiceStub struct {
	requestFn func(ctx context.Context, walletID uuid.UUID) (*usecases.UnlockRequestResult, error)
	approveFn func(ctx context.Context, input *entities.ApproveInput) (*usecases.ApprovalResult, error)
	stateFn   func(ctx context.Context, walletID uuid.UUID) (entities.ApprovalState, error)
}

func (s approvalServiceStub) RequestUnlock(ctx context.Context, walletID uuid.UUID) (*usecases.UnlockRequestResult, error) {
	return s.requestFn(ctx, walletID)
}
func (s approvalServiceStub) Approve(ctx context.Context, input *entities.ApproveInput) (*usecases.ApprovalResult, error) {
	return s.approveFn(ctx, input)
}
func (s approvalServiceStub) ApprovalState(ctx context.Context, walletID uuid.UUID) (entities.ApprovalState, error) {
	return s.stateFn(ctx, walletID)
}

type notificationServiceStub struct {
	listFn     func(ctx context.Context, userID uuid.UUID, page, limit int) (*usecases.NotificationPage, error)
	markReadFn func(ctx context.Context, userID, id uuid.UUID) error
}

func (s notificationServiceStub) List(ctx context.Context, userID uuid.UUID, page, limit int) (*usecases.NotificationPage, error) {
	return s.listFn(ctx, userID, page, limit)
}
func (s notificationServiceStub) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.markReadFn(ctx, userID, id)
}

// newRouter returns a test engine that authenticates every request as
// userID, or not at all when userID is uuid.Nil.
func newRouter(userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if userID != uuid.Nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.UserIDKey, userID)
			c.Next()
		})
	}
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
