package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"blackwallet.backend/internal/domain/entities"
	"blackwallet.backend/internal/domain/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// walletRepoFunc serves one wallet and records approval writes.
type walletRepoFunc struct {
	repositories.WalletRepository
	wallet            *entities.Wallet
	setApprovalCalled bool
}

func (r *walletRepoFunc) GetByID(context.Context, uuid.UUID) (*entities.Wallet, error) {
	return r.wallet, nil
}

func (r *walletRepoFunc) SetApproval(context.Context, uuid.UUID, string, time.Time) error {
	r.setApprovalCalled = true
	return nil
}

func TestApprovalUsecase_TokenGenerationFailure(t *testing.T) {
	orig := generateApprovalToken
	t.Cleanup(func() { generateApprovalToken = orig })
	generateApprovalToken = func() (string, error) { return "", errors.New("entropy exhausted") }

	repo := &walletRepoFunc{wallet: &entities.Wallet{ID: uuid.New(), EmergencyEmails: []string{"a@example.com"}}}
	uc := NewApprovalUsecase(repo, nil, nil, nil, nil, "", time.Minute)

	_, err := uc.RequestUnlock(context.Background(), repo.wallet.ID)
	assert.EqualError(t, err, "entropy exhausted")
	assert.False(t, repo.setApprovalCalled)
}

func TestUnlockMessage(t *testing.T) {
	assert.Equal(t, "Approval request sent to 2 emergency contact(s)", unlockMessage(2, 2))
	assert.Equal(t, "Approval request sent to 1 of 2 emergency contacts", unlockMessage(1, 2))
	assert.Contains(t, unlockMessage(0, 1), "no emergency contact")
}

func TestApprovalLink_EscapesAndTrimsBase(t *testing.T) {
	uc := NewApprovalUsecase(nil, nil, nil, nil, nil, "https://app.test///", 0)
	id := uuid.MustParse("0190f5c2-7a3b-7c8d-9e0f-112233445566")
	assert.Equal(t,
		"https://app.test/api/v1/approve?walletId=0190f5c2-7a3b-7c8d-9e0f-112233445566&code=ab%2Bcd",
		uc.approvalLink(id, "ab+cd"))
	assert.Equal(t, DefaultApprovalTTL, uc.ttl)
}
