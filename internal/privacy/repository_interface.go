package privacy

import "context"

type Repository interface {
	GetMode(ctx context.Context, resourceID int) (Mode, error)
	SetMode(ctx context.Context, resourceID int, mode Mode, changedBy int) (*Setting, error)
	ListAudit(ctx context.Context, resourceID int) ([]AuditEntry, error)
}
