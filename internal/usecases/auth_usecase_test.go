package usecases_test

import (
	"context"
	"testing"
	"time"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/usecases"
	"blackwallet.backend/pkg/crypto"
	"blackwallet.backend/pkg/jwt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthUsecaseForTest(userRepo *MockUserRepository) (*usecases.AuthUsecase, *jwt.JWTService) {
	jwtSvc := jwt.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)
	return usecases.NewAuthUsecase(userRepo, jwtSvc), jwtSvc
}

func TestAuthUsecase_Register(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc, _ := newAuthUsecaseForTest(userRepo)

	userRepo.On("GetByEmail", mock.Anything, "new@mail.com").Return(nil, domainerrors.ErrUserNotFound).Once()
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
		return u.Email == "new@mail.com" &&
			u.EOAAddress == "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B" &&
			crypto.CheckPassword("Password123!", u.PasswordHash)
	})).Return(nil).Once()

	user, err := uc.Register(context.Background(), &entities.RegisterInput{
		Email:      " New@Mail.com ",
		Password:   "Password123!",
		EOAAddress: "0xab5801a7d398351b8be11c439e05c5b3259aec9b",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.Onboarded)
	userRepo.AssertExpectations(t)
}

func TestAuthUsecase_Register_EmailAlreadyExists(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc, _ := newAuthUsecaseForTest(userRepo)
	userRepo.On("GetByEmail", mock.Anything, "exists@mail.com").Return(&entities.User{ID: uuid.New()}, nil).Once()

	_, err := uc.Register(context.Background(), &entities.RegisterInput{
		Email:      "exists@mail.com",
		Password:   "Password123!",
		EOAAddress: "0xab5801a7d398351b8be11c439e05c5b3259aec9b",
	})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthUsecase_Register_Invalid(t *testing.T) {
	uc, _ := newAuthUsecaseForTest(new(MockUserRepository))
	_, err := uc.Register(context.Background(), &entities.RegisterInput{Email: "nope", Password: "x", EOAAddress: "0x12"})

	var verr domainerrors.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr, "email")
	assert.Contains(t, verr, "password")
	assert.Contains(t, verr, "eoaAddress")
}

func TestAuthUsecase_Login(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc, jwtSvc := newAuthUsecaseForTest(userRepo)
	hash, err := crypto.HashPassword("Password123!")
	require.NoError(t, err)
	user := &entities.User{ID: uuid.New(), Email: "a@mail.com", PasswordHash: hash}

	userRepo.On("GetByEmail", mock.Anything, "a@mail.com").Return(user, nil).Twice()

	resp, err := uc.Login(context.Background(), &entities.LoginInput{Email: "a@mail.com", Password: "Password123!"})
	require.NoError(t, err)
	claims, err := jwtSvc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = uc.Login(context.Background(), &entities.LoginInput{Email: "a@mail.com", Password: "wrong"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthUsecase_Login_UnknownUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc, _ := newAuthUsecaseForTest(userRepo)
	userRepo.On("GetByEmail", mock.Anything, "ghost@mail.com").Return(nil, domainerrors.ErrUserNotFound).Once()

	_, err := uc.Login(context.Background(), &entities.LoginInput{Email: "ghost@mail.com", Password: "whatever1"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthUsecase_RefreshToken(t *testing.T) {
	userRepo := new(MockUserRepository)
	uc, jwtSvc := newAuthUsecaseForTest(userRepo)
	user := &entities.User{ID: uuid.New(), Email: "a@mail.com"}
	pair, err := jwtSvc.GenerateTokenPair(user.ID, user.Email)
	require.NoError(t, err)

	userRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil).Once()
	next, err := uc.RefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	_, err = uc.RefreshToken(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = uc.RefreshToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
