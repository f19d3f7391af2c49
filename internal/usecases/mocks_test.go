package usecases_test

import (
	"context"
	"sync"
	"time"

	"blackwallet.backend/internal/domain/entities"
	"blackwallet.backend/internal/domain/repositories"
	"blackwallet.backend/internal/infrastructure/blockchain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	m.Called(ctx)
	return ctx
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) MarkOnboarded(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetPrimaryByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateProfile(ctx context.Context, wallet *entities.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) CompareAndSwapSpending(ctx context.Context, id uuid.UUID, expected, next decimal.Decimal) error {
	args := m.Called(ctx, id, expected, next)
	return args.Error(0)
}

func (m *MockWalletRepository) SetApproval(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, id, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockWalletRepository) ResetSpending(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWalletRepository) ResetAllSpending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Mock TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, filter repositories.TransactionFilter) ([]*entities.Transaction, error) {
	args := m.Called(ctx, walletID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Summarize(ctx context.Context, walletID uuid.UUID) (entities.BalanceSummary, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(entities.BalanceSummary), args.Error(1)
}

// Mock NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// Mock WalletChain
type MockWalletChain struct {
	mock.Mock
}

func (m *MockWalletChain) RelayerAddress() common.Address {
	args := m.Called()
	return args.Get(0).(common.Address)
}

func (m *MockWalletChain) ComputeAddress(ctx context.Context, p blockchain.WalletParams) (common.Address, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(common.Address), args.Error(1)
}

func (m *MockWalletChain) WalletCodeExists(ctx context.Context, addr common.Address) (bool, error) {
	args := m.Called(ctx, addr)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletChain) DeployWallet(ctx context.Context, p blockchain.WalletParams) (*blockchain.TxResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blockchain.TxResult), args.Error(1)
}

// Mock WalletResetter
type MockWalletResetter struct {
	mock.Mock
}

func (m *MockWalletResetter) ResetDailySpent(ctx context.Context, wallet common.Address) (*blockchain.TxResult, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blockchain.TxResult), args.Error(1)
}

// Mock ApprovalConsumer
type MockApprovalConsumer struct {
	mock.Mock
}

func (m *MockApprovalConsumer) ConsumeApproval(ctx context.Context, walletID uuid.UUID, tokenHash string) error {
	args := m.Called(ctx, walletID, tokenHash)
	return args.Error(0)
}

// sentMail is one message captured by fakeMailer.
type sentMail struct {
	To, Subject, Body string
}

// fakeMailer records sends and fails for the addresses in failFor.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	failFor map[string]error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// recordingNotifier captures notifications in order.
type recordingNotifier struct {
	mu       sync.Mutex
	types    []entities.NotificationType
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, _ uuid.UUID, kind entities.NotificationType, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, kind)
	r.messages = append(r.messages, title+": "+message)
}

func (r *recordingNotifier) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func (r *recordingNotifier) Types() []entities.NotificationType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entities.NotificationType(nil), r.types...)
}

type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Contact, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Contact), args.Error(1)
}

func (m *MockContactRepository) Upsert(ctx context.Context, c *entities.Contact) (*entities.Contact, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Contact), args.Error(1)
}

func (m *MockContactRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}
