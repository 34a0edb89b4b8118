package grant

import (
	"net/http"

	"github.com/soyaya/boardling/internal/auth"
	"github.com/soyaya/boardling/internal/ledger"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo     Repository
	accounts ledger.Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		repo:     NewRepository(db),
		accounts: ledger.NewRepository(db),
	}
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

	items, err := h.repo.ListForBuyer(c.Request.Context(), account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load grants"})
		return
	}

	c.JSON(http.StatusOK, items)
}
