package resource

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/soyaya/boardling/internal/auth"
	"github.com/soyaya/boardling/internal/ledger"
	"github.com/soyaya/boardling/internal/privacy"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo     Repository
	gate     privacy.Service
	accounts ledger.Repository
}

func NewHandler(db *sqlx.DB, repo Repository, gate privacy.Service) *Handler {
	return &Handler{
		repo:     repo,
		gate:     gate,
		accounts: ledger.NewRepository(db),
	}
}

type RegisterRequest struct {
	ChainAddress string `json:"chain_address" binding:"required"`
	Label        string `json:"label" binding:"required,min=1,max=100"`
}

func (h *Handler) Register(c *gin.Context) {
	account, ok := h.requireAccount(c)
	if !ok {
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.repo.Create(c.Request.Context(), account.ID, req.ChainAddress, req.Label)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register resource"})
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *Handler) List(c *gin.Context) {
	account, ok := h.requireAccount(c)
	if !ok {
		return
	}

	items, err := h.repo.ListForOwner(c.Request.Context(), account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resources"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// Stats is the analytics read path: every request goes through the privacy
// gate, and anonymized access strips identifying fields before the response
// leaves the service.
func (h *Handler) Stats(c *gin.Context) {
	account, resourceID, ok := h.requireAccountAndResource(c)
	if !ok {
		return
	}

	decision, err := h.gate.CheckAccess(c.Request.Context(), resourceID, account.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check access"})
		return
	}

	if !decision.Allowed {
		if decision.RequiresPayment {
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":            "payment required for access to this resource",
				"requires_payment": true,
			})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	stats, err := h.repo.GetStats(c.Request.Context(), resourceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}

	if decision.DataLevel == privacy.LevelAnonymized {
		stats = privacy.Anonymize(stats)
	}

	c.JSON(http.StatusOK, gin.H{
		"data_level": decision.DataLevel,
		"stats":      stats,
	})
}

func (h *Handler) CheckAccess(c *gin.Context) {
	account, resourceID, ok := h.requireAccountAndResource(c)
	if !ok {
		return
	}

	decision, err := h.gate.CheckAccess(c.Request.Context(), resourceID, account.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check access"})
		return
	}

	c.JSON(http.StatusOK, decision)
}

type SetPrivacyRequest struct {
	Mode string `json:"mode" binding:"required"`
}

func (h *Handler) SetPrivacy(c *gin.Context) {
	account, resourceID, ok := h.requireAccountAndResource(c)
	if !ok {
		return
	}

	var req SetPrivacyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	setting, err := h.gate.SetMode(c.Request.Context(), resourceID, privacy.Mode(req.Mode), account.ID)
	if err != nil {
		switch {
		case errors.Is(err, privacy.ErrInvalidMode):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, privacy.ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change privacy mode"})
		}
		return
	}

	c.JSON(http.StatusOK, setting)
}

func (h *Handler) Audit(c *gin.Context) {
	account, resourceID, ok := h.requireAccountAndResource(c)
	if !ok {
		return
	}

	entries, err := h.gate.ListAudit(c.Request.Context(), resourceID, account.ID)
	if err != nil {
		switch {
		case errors.Is(err, privacy.ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit log"})
		}
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *Handler) requireAccount(c *gin.Context) (*ledger.Account, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil, false
	}

	account, err := h.accounts.GetOrCreateAccount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return nil, false
	}
	return account, true
}

func (h *Handler) requireAccountAndResource(c *gin.Context) (*ledger.Account, int, bool) {
	account, ok := h.requireAccount(c)
	if !ok {
		return nil, 0, false
	}

	resourceID, err := strconv.Atoi(c.Param("resourceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return nil, 0, false
	}
	return account, resourceID, true
}
