package usecases_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/infrastructure/blockchain"
	"blackwallet.backend/internal/usecases"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	ownerEOA    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	relayerAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
	walletAddr  = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

type walletMocks struct {
	users    *MockUserRepository
	wallets  *MockWalletRepository
	chain    *MockWalletChain
	notifier *recordingNotifier
}

func newWalletForTest() (*usecases.WalletUsecase, *walletMocks) {
	m := &walletMocks{
		users:    new(MockUserRepository),
		wallets:  new(MockWalletRepository),
		chain:    new(MockWalletChain),
		notifier: &recordingNotifier{},
	}
	m.chain.On("RelayerAddress").Return(relayerAddr).Maybe()
	return usecases.NewWalletUsecase(m.users, m.wallets, m.chain, m.notifier), m
}

func createInput() *entities.CreateWalletInput {
	return &entities.CreateWalletInput{
		Name:            " Savings ",
		DailyLimit:      d("1.5"),
		EmergencyEmails: []string{"Mom@Example.com", "mom@example.com", "dad@example.com"},
	}
}

func TestWalletUsecase_CreateWallet(t *testing.T) {
	uc, m := newWalletForTest()
	user := &entities.User{ID: uuid.New(), EOAAddress: ownerEOA.Hex()}

	paramsOK := mock.MatchedBy(func(p blockchain.WalletParams) bool {
		return len(p.Owners) == 1 && p.Owners[0] == ownerEOA &&
			p.RequiredSignatures.Cmp(big.NewInt(1)) == 0 &&
			p.DailyLimit.String() == "1500000000000000000" &&
			len(p.EmergencyContacts) == 1 && p.EmergencyContacts[0] == relayerAddr &&
			p.Salt != nil
	})

	m.users.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
	m.chain.On("ComputeAddress", mock.Anything, paramsOK).Return(walletAddr, nil).Once()
	m.chain.On("WalletCodeExists", mock.Anything, walletAddr).Return(false, nil).Once()
	m.chain.On("DeployWallet", mock.Anything, paramsOK).Return(&blockchain.TxResult{TxHash: "0xdeploy"}, nil).Once()
	m.wallets.On("Create", mock.Anything, mock.MatchedBy(func(w *entities.Wallet) bool {
		return w.Address == walletAddr.Hex() && w.Name == "Savings" && w.Salt != "" && w.DeployTxHash == "0xdeploy"
	})).Return(nil).Once()
	m.users.On("MarkOnboarded", mock.Anything, user.ID).Return(nil).Once()

	w, err := uc.CreateWallet(context.Background(), user.ID, createInput())
	require.NoError(t, err)
	assert.Equal(t, []string{"mom@example.com", "dad@example.com"}, w.EmergencyEmails)
	assert.True(t, w.SpendingToday.IsZero())
	assert.Equal(t, []entities.NotificationType{entities.NotificationWalletCreated}, m.notifier.Types())
	m.chain.AssertExpectations(t)
	m.users.AssertExpectations(t)
}

func TestWalletUsecase_CreateWallet_AlreadyDeployed(t *testing.T) {
	uc, m := newWalletForTest()
	user := &entities.User{ID: uuid.New(), EOAAddress: ownerEOA.Hex()}

	m.users.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
	m.chain.On("ComputeAddress", mock.Anything, mock.Anything).Return(walletAddr, nil).Once()
	m.chain.On("WalletCodeExists", mock.Anything, walletAddr).Return(true, nil).Once()

	_, err := uc.CreateWallet(context.Background(), user.ID, createInput())
	assert.ErrorIs(t, err, domainerrors.ErrWalletAlreadyDeployed)
	m.chain.AssertNotCalled(t, "DeployWallet", mock.Anything, mock.Anything)
}

func TestWalletUsecase_CreateWallet_DeployFailureStoresNothing(t *testing.T) {
	uc, m := newWalletForTest()
	user := &entities.User{ID: uuid.New(), EOAAddress: ownerEOA.Hex()}

	m.users.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
	m.chain.On("ComputeAddress", mock.Anything, mock.Anything).Return(walletAddr, nil).Once()
	m.chain.On("WalletCodeExists", mock.Anything, walletAddr).Return(false, nil).Once()
	m.chain.On("DeployWallet", mock.Anything, mock.Anything).
		Return(nil, domainerrors.ErrChainDeploymentFailed).Once()

	_, err := uc.CreateWallet(context.Background(), user.ID, createInput())
	assert.ErrorIs(t, err, domainerrors.ErrChainDeploymentFailed)
	m.wallets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, m.notifier.Types())
}

func TestWalletUsecase_CreateWallet_PersistFailureAfterDeploy(t *testing.T) {
	uc, m := newWalletForTest()
	user := &entities.User{ID: uuid.New(), EOAAddress: ownerEOA.Hex()}

	m.users.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
	m.chain.On("ComputeAddress", mock.Anything, mock.Anything).Return(walletAddr, nil).Once()
	m.chain.On("WalletCodeExists", mock.Anything, walletAddr).Return(false, nil).Once()
	m.chain.On("DeployWallet", mock.Anything, mock.Anything).Return(&blockchain.TxResult{TxHash: "0x1"}, nil).Once()
	m.wallets.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

	_, err := uc.CreateWallet(context.Background(), user.ID, createInput())
	assert.ErrorContains(t, err, "record wallet")
	m.users.AssertNotCalled(t, "MarkOnboarded", mock.Anything, mock.Anything)
}

func TestWalletUsecase_CreateWallet_RecordedWhenCallerCancelsDuringDeploy(t *testing.T) {
	uc, m := newWalletForTest()
	user := &entities.User{ID: uuid.New(), EOAAddress: ownerEOA.Hex(), Onboarded: true}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	live := mock.MatchedBy(func(c context.Context) bool { return c.Err() == nil })

	m.users.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
	m.chain.On("ComputeAddress", mock.Anything, mock.Anything).Return(walletAddr, nil).Once()
	m.chain.On("WalletCodeExists", mock.Anything, walletAddr).Return(false, nil).Once()
	m.chain.On("DeployWallet", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(&blockchain.TxResult{TxHash: "0xlanded"}, nil).Once()
	m.wallets.On("Create", live, mock.MatchedBy(func(w *entities.Wallet) bool {
		return w.Address == walletAddr.Hex() && w.DeployTxHash == "0xlanded"
	})).Return(nil).Once()

	w, err := uc.CreateWallet(ctx, user.ID, createInput())
	require.NoError(t, err)
	assert.Equal(t, "0xlanded", w.DeployTxHash)
	m.wallets.AssertExpectations(t)
}

func TestWalletUsecase_ListWallets(t *testing.T) {
	uc, m := newWalletForTest()
	userID := uuid.New()
	rows := []*entities.Wallet{{ID: uuid.New(), UserID: userID}, {ID: uuid.New(), UserID: userID}}
	m.wallets.On("ListByUserID", mock.Anything, userID).Return(rows, nil).Once()

	got, err := uc.ListWallets(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWalletUsecase_CreateWallet_Validation(t *testing.T) {
	uc, m := newWalletForTest()
	_, err := uc.CreateWallet(context.Background(), uuid.New(), &entities.CreateWalletInput{Name: "x", DailyLimit: d("1")})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	m.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestWalletUsecase_GetWallet_Ownership(t *testing.T) {
	uc, m := newWalletForTest()
	w := &entities.Wallet{ID: uuid.New(), UserID: uuid.New()}
	m.wallets.On("GetByID", mock.Anything, w.ID).Return(w, nil)

	got, err := uc.GetWallet(context.Background(), w.UserID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w, got)

	_, err = uc.GetWallet(context.Background(), uuid.New(), w.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestWalletUsecase_UpdateProfile(t *testing.T) {
	uc, m := newWalletForTest()
	w := &entities.Wallet{ID: uuid.New(), UserID: uuid.New(), Name: "Old", DailyLimit: d("10"), EmergencyEmails: []string{"a@example.com"}}
	m.wallets.On("GetByID", mock.Anything, w.ID).Return(w, nil).Once()
	m.wallets.On("UpdateProfile", mock.Anything, mock.Anything).Return(nil).Once()

	limit := d("25")
	got, err := uc.UpdateProfile(context.Background(), w.UserID, w.ID, &entities.UpdateProfileInput{DailyLimit: &limit})
	require.NoError(t, err)
	assert.Equal(t, "Old", got.Name)
	assert.True(t, got.DailyLimit.Equal(limit))
	assert.Equal(t, []string{"a@example.com"}, got.EmergencyEmails)
}

func TestWalletUsecase_UpdateProfile_RejectsEmptyContacts(t *testing.T) {
	uc, m := newWalletForTest()
	_, err := uc.UpdateProfile(context.Background(), uuid.New(), uuid.New(), &entities.UpdateProfileInput{EmergencyEmails: []string{}})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	m.wallets.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}

func TestWalletUsecase_GetPrimaryWallet(t *testing.T) {
	uc, m := newWalletForTest()
	userID := uuid.New()
	m.wallets.On("GetPrimaryByUserID", mock.Anything, userID).Return(nil, domainerrors.ErrWalletNotFound).Once()

	_, err := uc.GetPrimaryWallet(context.Background(), userID)
	assert.ErrorIs(t, err, domainerrors.ErrWalletNotFound)
}
