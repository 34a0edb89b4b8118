package privacy

import (
	"context"
	"errors"

	"github.com/soyaya/boardling/internal/grant"
	"github.com/soyaya/boardling/internal/logger"
	"github.com/soyaya/boardling/internal/metrics"
)

var (
	ErrPermissionDenied = errors.New("only the resource owner may change privacy settings")
	ErrInvalidMode      = errors.New("invalid privacy mode")
)

// Owners resolves resource ownership. Satisfied by the resource repository.
type Owners interface {
	OwnerAccountID(ctx context.Context, resourceID int) (int, error)
}

type Service interface {
	CheckAccess(ctx context.Context, resourceID, requesterAccountID int) (Decision, error)
	SetMode(ctx context.Context, resourceID int, mode Mode, changedBy int) (*Setting, error)
	ListAudit(ctx context.Context, resourceID, requesterAccountID int) ([]AuditEntry, error)
}

type service struct {
	repo   Repository
	owners Owners
	grants grant.Repository
}

func NewService(repo Repository, owners Owners, grants grant.Repository) Service {
	return &service{
		repo:   repo,
		owners: owners,
		grants: grants,
	}
}

// CheckAccess decides whether the requester may read the resource's
// analytics and at what fidelity. The mode is read from the store on every
// call, never from a cache.
func (s *service) CheckAccess(ctx context.Context, resourceID, requesterAccountID int) (Decision, error) {
	ownerAccountID, err := s.owners.OwnerAccountID(ctx, resourceID)
	if err != nil {
		return Decision{}, err
	}

	if ownerAccountID == requesterAccountID {
		return Decision{Allowed: true, DataLevel: LevelFull}, nil
	}

	mode, err := s.repo.GetMode(ctx, resourceID)
	if err != nil {
		return Decision{}, err
	}

	switch mode {
	case ModePublic:
		return Decision{Allowed: true, DataLevel: LevelAnonymized}, nil
	case ModeMonetizable:
		live, err := s.grants.HasLiveGrant(ctx, requesterAccountID, resourceID)
		if err != nil {
			return Decision{}, err
		}
		if live {
			return Decision{Allowed: true, DataLevel: LevelAnonymized}, nil
		}
		return Decision{Allowed: false, DataLevel: LevelNone, RequiresPayment: true}, nil
	default:
		return Decision{Allowed: false, DataLevel: LevelNone}, nil
	}
}

func (s *service) SetMode(ctx context.Context, resourceID int, mode Mode, changedBy int) (*Setting, error) {
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}

	ownerAccountID, err := s.owners.OwnerAccountID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if ownerAccountID != changedBy {
		return nil, ErrPermissionDenied
	}

	setting, err := s.repo.SetMode(ctx, resourceID, mode, changedBy)
	if err != nil {
		return nil, err
	}

	metrics.RecordPrivacyModeChange(string(mode))
	logger.Info("privacy mode changed",
		"resource", resourceID,
		"mode", string(mode),
		"changed_by", changedBy,
	)
	return setting, nil
}

func (s *service) ListAudit(ctx context.Context, resourceID, requesterAccountID int) ([]AuditEntry, error) {
	ownerAccountID, err := s.owners.OwnerAccountID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if ownerAccountID != requesterAccountID {
		return nil, ErrPermissionDenied
	}

	return s.repo.ListAudit(ctx, resourceID)
}
