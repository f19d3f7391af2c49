package handlers

import (
	"context"
	"html/template"
	"net/http"

	"blackwallet.backend/internal/domain/entities"
	domainerrors "blackwallet.backend/internal/domain/errors"
	"blackwallet.backend/internal/interfaces/http/response"
	"blackwallet.backend/internal/usecases"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type approvalService interface {
	RequestUnlock(ctx context.Context, walletID uuid.UUID) (*usecases.UnlockRequestResult, error)
	Approve(ctx context.Context, input *entities.ApproveInput) (*usecases.ApprovalResult, error)
	ApprovalState(ctx context.Context, walletID uuid.UUID) (entities.ApprovalState, error)
}

// ApprovalHandler handles the emergency unlock workflow
type ApprovalHandler struct {
	approvalUsecase approvalService
	wallets         walletOwnership
}

// NewApprovalHandler creates a new approval handler
func NewApprovalHandler(approvalUsecase approvalService, wallets walletOwnership) *ApprovalHandler {
	return &ApprovalHandler{approvalUsecase: approvalUsecase, wallets: wallets}
}

// RequestUnlock emails approval links to the wallet's emergency contacts
// POST /api/v1/wallets/:id/request-unlock
func (h *ApprovalHandler) RequestUnlock(c *gin.Context) {
	walletID, ok := pathWalletID(c)
	if !ok {
		return
	}
	if _, ok := requireOwner(c, h.wallets, walletID); !ok {
		return
	}

	result, err := h.approvalUsecase.RequestUnlock(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ApprovalStatus reports NONE, PENDING or EXPIRED
// GET /api/v1/wallets/:id/approval
func (h *ApprovalHandler) ApprovalStatus(c *gin.Context) {
	walletID, ok := pathWalletID(c)
	if !ok {
		return
	}
	if _, ok := requireOwner(c, h.wallets, walletID); !ok {
		return
	}

	state, err := h.approvalUsecase.ApprovalState(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"walletId": walletID, "state": state})
}

// Approve consumes an approval code. Called by the emergency contact, so it
// is not authenticated; the code is the credential.
// POST /api/v1/wallets/limit/approve
func (h *ApprovalHandler) Approve(c *gin.Context) {
	var input entities.ApproveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.approvalUsecase.Approve(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"success":  true,
		"walletId": result.WalletID,
		"txHash":   result.TxHash,
		"message":  result.Message,
	})
}

var approvalPage = template.Must(template.New("approval").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;background:#0b0b0f;color:#f2f2f2;display:flex;min-height:100vh;align-items:center;justify-content:center;margin:0}
main{max-width:28rem;padding:2rem;border-radius:12px;background:#16161d;text-align:center}
h1{font-size:1.4rem;color:{{if .OK}}#3ddc84{{else}}#ff6b6b{{end}}}
</style>
</head>
<body>
<main>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</main>
</body>
</html>
`))

type approvalPageData struct {
	OK      bool
	Title   string
	Message string
}

// ApprovePage is the landing page of the emailed approval link
// GET /api/v1/approve?walletId=...&code=...
func (h *ApprovalHandler) ApprovePage(c *gin.Context) {
	walletID, err := uuid.Parse(c.Query("walletId"))
	if err != nil {
		renderApprovalPage(c, http.StatusBadRequest, approvalPageData{Title: "Invalid link", Message: "This approval link is malformed."})
		return
	}
	input := entities.ApproveInput{WalletID: walletID, ApprovalCode: c.Query("code")}

	if _, err := h.approvalUsecase.Approve(c.Request.Context(), &input); err != nil {
		appErr := domainerrors.FromError(err)
		renderApprovalPage(c, appErr.Status, approvalPageData{Title: "Approval failed", Message: approvalFailureMessage(appErr)})
		return
	}

	renderApprovalPage(c, http.StatusOK, approvalPageData{
		OK:      true,
		Title:   "Approved",
		Message: "The daily spending limit has been reset. You can close this page.",
	})
}

func approvalFailureMessage(appErr *domainerrors.AppError) string {
	switch appErr.Code {
	case domainerrors.CodeInvalidInput:
		return "This approval link is incomplete."
	case domainerrors.CodeApprovalExpired:
		return "This approval link has expired. Ask the wallet owner to send a new request."
	case domainerrors.CodeNoPendingApproval:
		return "There is no pending request for this wallet. The link may already have been used."
	case domainerrors.CodeInvalidApprovalCode:
		return "This approval link is not valid."
	case domainerrors.CodeChainTimeout, domainerrors.CodeChainResetFailed:
		return "The limit could not be reset on chain right now. Please open the link again in a few minutes."
	}
	return appErr.Message
}

func renderApprovalPage(c *gin.Context, status int, data approvalPageData) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	c.Header("Referrer-Policy", "no-referrer")
	c.Status(status)
	_ = approvalPage.Execute(c.Writer, data)
}
