package handlers

import (
	"context"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/interfaces/http/middleware"
	"blackwallet.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// walletOwnership resolves a wallet only when the caller owns it.
type walletOwnership interface {
	GetWallet(ctx context.Context, userID, walletID uuid.UUID) (*entities.Wallet, error)
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return uuid.Nil, false
	}
	return userID, true
}

func pathWalletID(c *gin.Context) (uuid.UUID, bool) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.ValidationErrors{"id": "must be a wallet UUID"})
		return uuid.Nil, false
	}
	return walletID, true
}

// requireOwner writes the error response and returns false unless the caller
// owns walletID.
func requireOwner(c *gin.Context, wallets walletOwnership, walletID uuid.UUID) (*entities.Wallet, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	wallet, err := wallets.GetWallet(c.Request.Context(), userID, walletID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return wallet, true
}
