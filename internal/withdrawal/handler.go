package withdrawal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/soyaya/boardling/internal/auth"
	"github.com/soyaya/boardling/internal/ledger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service  Service
	repo     Repository
	accounts ledger.Repository
}

func NewHandler(db *sqlx.DB, svc Service, repo Repository) *Handler {
	return &Handler{
		service:  svc,
		repo:     repo,
		accounts: ledger.NewRepository(db),
	}
}

type RequestBody struct {
	Amount             string `json:"amount" binding:"required"`
	DestinationAddress string `json:"destination_address" binding:"required"`
}

func (h *Handler) Request(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req RequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a decimal string"})
		return
	}

	account, err := h.accounts.GetOrCreateAccount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	w, err := h.service.Request(c.Request.Context(), account.ID, amount, req.DestinationAddress)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAddress), errors.Is(err, ErrInvalidAmount),
			errors.Is(err, ErrAmountOutOfRange), errors.Is(err, ErrNonPositiveNet):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ledger.ErrInsufficientFunds):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient balance"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create withdrawal"})
		}
		return
	}

	c.JSON(http.StatusCreated, w)
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	account, err := h.accounts.GetOrCreateAccount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.service.ListForAccount(c.Request.Context(), account.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load withdrawals"})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	publicID, err := uuid.Parse(c.Param("withdrawalID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}

	account, err := h.accounts.GetOrCreateAccount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	w, err := h.repo.GetByPublicID(c.Request.Context(), publicID)
	if err != nil || w.AccountID != account.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
		return
	}

	c.JSON(http.StatusOK, w)
}

type ResolveBody struct {
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

// ResolveComplete is the SendExecutor callback for a successful external send.
func (h *Handler) ResolveComplete(c *gin.Context) {
	w, body, ok := h.resolveTarget(c)
	if !ok {
		return
	}
	if body.Reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference is required"})
		return
	}

	resolved, err := h.service.Complete(c.Request.Context(), w.ID, body.Reference)
	h.respondResolved(c, resolved, err)
}

// ResolveFail is the SendExecutor callback for a definitive send failure.
func (h *Handler) ResolveFail(c *gin.Context) {
	w, body, ok := h.resolveTarget(c)
	if !ok {
		return
	}
	reason := body.Reason
	if reason == "" {
		reason = "send failed"
	}

	resolved, err := h.service.Fail(c.Request.Context(), w.ID, reason)
	h.respondResolved(c, resolved, err)
}

func (h *Handler) resolveTarget(c *gin.Context) (*Withdrawal, ResolveBody, bool) {
	var body ResolveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, body, false
	}

	publicID, err := uuid.Parse(c.Param("withdrawalID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return nil, body, false
	}

	w, err := h.repo.GetByPublicID(c.Request.Context(), publicID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
		return nil, body, false
	}
	return w, body, true
}

func (h *Handler) respondResolved(c *gin.Context, w *Withdrawal, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, w)
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "withdrawal is not processing"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve withdrawal"})
	}
}
