package errors

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUserNotFound   = errors.New("user not found")
	ErrWalletNotFound = errors.New("wallet not found")

	// Business-rule errors: rejected after read, before write.
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDailyLimitExceeded  = errors.New("daily limit exceeded")
	ErrNoEmergencyContacts = errors.New("no emergency contacts configured")
	ErrNoPendingApproval   = errors.New("no pending approval")
	ErrApprovalExpired     = errors.New("approval expired")
	ErrInvalidApprovalCode = errors.New("invalid approval code")
	ErrConcurrentUpdate    = errors.New("wallet was updated concurrently")

	// Infrastructure errors.
	ErrChainDeploymentFailed = errors.New("chain deployment failed")
	ErrChainResetFailed      = errors.New("chain reset failed")
	ErrChainTimeout          = errors.New("timed out waiting for chain confirmation")
	ErrWalletAlreadyDeployed = errors.New("wallet already deployed at computed address")
)

// Error codes returned to API clients.
const (
	CodeBadRequest     = "BadRequest"
	CodeInvalidInput   = "ValidationFailed"
	CodeNotFound       = "NotFound"
	CodeConflict       = "Conflict"
	CodeUnauthorized   = "Unauthorized"
	CodeForbidden      = "Forbidden"
	CodeInternalError  = "InternalError"
	CodeUnavailable    = "ServiceUnavailable"
	CodeBadGateway     = "ChainError"
	CodeUnprocessable  = "Unprocessable"
	CodeWalletNotFound = "WalletNotFound"

	CodeInsufficientBalance   = "InsufficientBalance"
	CodeDailyLimitExceeded    = "DailyLimitExceeded"
	CodeNoEmergencyContacts   = "NoEmergencyContacts"
	CodeNoPendingApproval     = "NoPendingApproval"
	CodeApprovalExpired       = "ApprovalExpired"
	CodeInvalidApprovalCode   = "InvalidApprovalCode"
	CodeChainDeploymentFailed = "ChainDeploymentFailed"
	CodeChainResetFailed      = "ChainResetFailed"
	CodeChainTimeout          = "ChainTimeout"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int               `json:"-"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

// ValidationErrors maps a request field to the reason it was rejected.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return ErrInvalidInput
}

// Add records a reason for field, keeping the first one.
func (v ValidationErrors) Add(field, reason string) {
	if _, ok := v[field]; !ok {
		v[field] = reason
	}
}

// OrNil returns nil when no field failed.
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

var mappings = []mapping{
	{ErrWalletNotFound, http.StatusNotFound, CodeWalletNotFound, "wallet not found"},
	{ErrUserNotFound, http.StatusNotFound, CodeNotFound, "user not found"},
	{ErrNotFound, http.StatusNotFound, CodeNotFound, "resource not found"},
	{ErrInsufficientBalance, http.StatusUnprocessableEntity, CodeInsufficientBalance, "insufficient balance"},
	{ErrDailyLimitExceeded, http.StatusUnprocessableEntity, CodeDailyLimitExceeded, "daily spending limit exceeded; request an emergency unlock"},
	{ErrNoEmergencyContacts, http.StatusUnprocessableEntity, CodeNoEmergencyContacts, "no emergency contacts configured for this wallet"},
	{ErrNoPendingApproval, http.StatusConflict, CodeNoPendingApproval, "no pending approval for this wallet"},
	{ErrApprovalExpired, http.StatusGone, CodeApprovalExpired, "approval code has expired; request a new one"},
	{ErrInvalidApprovalCode, http.StatusForbidden, CodeInvalidApprovalCode, "invalid approval code"},
	{ErrConcurrentUpdate, http.StatusConflict, CodeConflict, "wallet is busy, retry the request"},
	{ErrWalletAlreadyDeployed, http.StatusConflict, CodeConflict, "a wallet is already deployed at the computed address"},
	{ErrAlreadyExists, http.StatusConflict, CodeConflict, "resource already exists"},
	{ErrChainTimeout, http.StatusServiceUnavailable, CodeChainTimeout, "timed out waiting for chain confirmation, retry later"},
	{ErrChainDeploymentFailed, http.StatusBadGateway, CodeChainDeploymentFailed, "wallet deployment failed"},
	{ErrChainResetFailed, http.StatusBadGateway, CodeChainResetFailed, "on-chain limit reset failed"},
	{ErrInvalidCredentials, http.StatusUnauthorized, CodeUnauthorized, "invalid email or password"},
	{ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized, "unauthorized"},
	{ErrForbidden, http.StatusForbidden, CodeForbidden, "forbidden"},
	{ErrBadRequest, http.StatusBadRequest, CodeBadRequest, "bad request"},
}

// FromError converts any error into an AppError. Existing AppErrors pass
// through, validation errors keep their fields, known sentinels get their
// status, everything else is a 500.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verr ValidationErrors
	if errors.As(err, &verr) {
		e := NewAppError(http.StatusBadRequest, CodeInvalidInput, "validation failed", err)
		e.Fields = verr
		return e
	}
	if errors.Is(err, ErrInvalidInput) {
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, err.Error(), err)
	}

	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return NewAppError(m.status, m.code, m.message, err)
		}
	}
	return InternalError(err)
}
