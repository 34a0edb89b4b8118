package privacy

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// GetMode reads the resource's current mode straight from the store, so a
// completed SetMode is visible to the very next call. Missing row means
// private.
func (r *repository) GetMode(ctx context.Context, resourceID int) (Mode, error) {
	var mode Mode
	err := r.db.GetContext(ctx, &mode,
		`SELECT mode FROM privacy_settings WHERE resource_id = $1`, resourceID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ModePrivate, nil
	}
	if err != nil {
		return "", err
	}
	return mode, nil
}

// SetMode writes the new mode and its audit entry in one transaction. The
// change is only committed once both rows are in.
func (r *repository) SetMode(ctx context.Context, resourceID int, mode Mode, changedBy int) (*Setting, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	s := &Setting{}
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO privacy_settings (resource_id, mode, updated_by)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (resource_id)
		 DO UPDATE SET mode = EXCLUDED.mode, updated_by = EXCLUDED.updated_by, updated_at = NOW()
		 RETURNING resource_id, mode, updated_by, updated_at`,
		resourceID, mode, changedBy,
	).StructScan(s)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO privacy_audit_log (resource_id, mode, changed_by)
		 VALUES ($1, $2, $3)`,
		resourceID, mode, changedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repository) ListAudit(ctx context.Context, resourceID int) ([]AuditEntry, error) {
	var entries []AuditEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, resource_id, mode, changed_by, changed_at
		FROM privacy_audit_log
		WHERE resource_id = $1
		ORDER BY changed_at ASC, id ASC
	`, resourceID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
