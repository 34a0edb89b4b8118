package invoice

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/soyaya/boardling/internal/auth"
	"github.com/soyaya/boardling/internal/gateway"
	"github.com/soyaya/boardling/internal/ledger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service  Service
	accounts ledger.Repository
}

func NewHandler(db *sqlx.DB, svc Service) *Handler {
	return &Handler{
		service:  svc,
		accounts: ledger.NewRepository(db),
	}
}

type CreateRequest struct {
	Kind       string `json:"kind" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
	ResourceID *int   `json:"resource_id,omitempty"`
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req CreateRequest
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

	inv, err := h.service.Create(c.Request.Context(), account.ID, Kind(req.Kind), amount, req.ResourceID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidKind), errors.Is(err, ErrInvalidAmount),
			errors.Is(err, ErrResourceRequired), errors.Is(err, ErrSelfPurchase):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, gateway.ErrAllocationFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not allocate a payment address"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create invoice"})
		}
		return
	}

	c.JSON(http.StatusCreated, inv)
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invoices"})
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

	publicID, err := uuid.Parse(c.Param("invoiceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}

	account, err := h.accounts.GetOrCreateAccount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	inv, err := h.service.GetByPublicID(c.Request.Context(), publicID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invoice"})
		return
	}

	party := inv.OwnerAccountID == account.ID ||
		(inv.CounterpartyAccountID != nil && *inv.CounterpartyAccountID == account.ID)
	if !party {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return
	}

	c.JSON(http.StatusOK, inv)
}

type ConfirmRequest struct {
	InvoiceID string `json:"invoice_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Reference string `json:"reference" binding:"required"`
}

// Confirm is the PaymentObserver callback. It may arrive more than once for
// the same invoice; replays get the original paid invoice back.
func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	publicID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return
	}

	observed, err := decimal.NewFromString(req.Amount)
	if err != nil || observed.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive decimal string"})
		return
	}

	inv, err := h.service.ConfirmPayment(c.Request.Context(), publicID, observed, req.Reference)
	switch {
	case err == nil, errors.Is(err, ErrAlreadyPaid):
		c.JSON(http.StatusOK, inv)
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
	case errors.Is(err, ErrNotPayable):
		c.JSON(http.StatusConflict, gin.H{"error": "invoice is no longer payable"})
	case errors.Is(err, ErrAmountMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "observed amount below requested amount"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm payment"})
	}
}

// ExpireNow lets an operator force an expiry sweep outside the timer.
func (h *Handler) ExpireNow(c *gin.Context) {
	n, err := h.service.ExpireStale(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to expire invoices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired": n})
}
