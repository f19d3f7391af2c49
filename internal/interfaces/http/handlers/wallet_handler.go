package handlers

import (
	"context"
	"net/http"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type walletService interface {
	walletOwnership
	CreateWallet(ctx context.Context, userID uuid.UUID, input *entities.CreateWalletInput) (*entities.Wallet, error)
	GetPrimaryWallet(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	ListWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
	UpdateProfile(ctx context.Context, userID, walletID uuid.UUID, input *entities.UpdateProfileInput) (*entities.Wallet, error)
}

// WalletHandler handles wallet provisioning and profile endpoints
type WalletHandler struct {
	walletUsecase walletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase walletService) *WalletHandler {
	return &WalletHandler{walletUsecase: walletUsecase}
}

// CreateWallet deploys a new multisig wallet for the caller
// POST /api/v1/wallets
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var input entities.CreateWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	wallet, err := h.walletUsecase.CreateWallet(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"walletId": wallet.ID,
		"address":  wallet.Address,
		"txHash":   wallet.DeployTxHash,
	})
}

// ListWallets lists wallets for the current user
// GET /api/v1/wallets
func (h *WalletHandler) ListWallets(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	wallets, err := h.walletUsecase.ListWallets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if wallets == nil {
		wallets = []*entities.Wallet{}
	}

	response.Success(c, http.StatusOK, gin.H{"wallets": wallets})
}

// GetMyWallet returns the caller's primary wallet
// GET /api/v1/wallets/me
func (h *WalletHandler) GetMyWallet(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	wallet, err := h.walletUsecase.GetPrimaryWallet(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, walletView(wallet))
}

// GetWallet returns one of the caller's wallets
// GET /api/v1/wallets/:id
func (h *WalletHandler) GetWallet(c *gin.Context) {
	walletID, ok := pathWalletID(c)
	if !ok {
		return
	}
	wallet, ok := requireOwner(c, h.walletUsecase, walletID)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, walletView(wallet))
}

// UpdateProfile changes name, daily limit or emergency contacts
// PUT /api/v1/wallets/:id/profile
func (h *WalletHandler) UpdateProfile(c *gin.Context) {
	walletID, ok := pathWalletID(c)
	if !ok {
		return
	}

	var input entities.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	wallet, err := h.walletUsecase.UpdateProfile(c.Request.Context(), userID, walletID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, walletView(wallet))
}

// walletView adds the derived fields clients display next to the wallet.
func walletView(w *entities.Wallet) gin.H {
	return gin.H{
		"wallet":         w,
		"remainingToday": w.RemainingToday(),
	}
}
