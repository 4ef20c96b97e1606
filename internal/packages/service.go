package packages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/demus23/myus-delivery-app-sub002/internal/shared"
)

// ErrBadTransition means the requested status change is not allowed
// from the package's current status.
var ErrBadTransition = errors.New("packages: invalid status transition")

// Service handles package lifecycle rules.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register announces an inbound package for the user.
func (s *Service) Register(ctx context.Context, userID int64, description, merchant, tracking string, weightKg *float64) (*Package, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("packages: description is required")
	}
	if weightKg != nil && *weightKg < 0 {
		return nil, fmt.Errorf("packages: weight must be non-negative")
	}
	id, err := s.repo.Create(ctx, Package{
		UserID:          userID,
		Description:     description,
		Merchant:        strings.TrimSpace(merchant),
		TrackingInbound: strings.TrimSpace(tracking),
		WeightKg:        weightKg,
		Status:          StatusExpected,
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Get returns one package, restricted to its owner unless the caller is
// an administrator.
func (s *Service) Get(ctx context.Context, id int64, caller *shared.Identity) (*Package, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller == nil || (p.UserID != caller.UserID && !caller.IsAdmin) {
		return nil, shared.ErrForbidden
	}
	return p, nil
}

// ListMine returns the caller's packages, newest first.
func (s *Service) ListMine(ctx context.Context, userID int64, page, perPage int) ([]Package, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	list, total, err := s.repo.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, perPage, total), nil
}

// Track returns the package's event history, owner-gated like Get.
func (s *Service) Track(ctx context.Context, id int64, caller *shared.Identity) ([]Event, error) {
	if _, err := s.Get(ctx, id, caller); err != nil {
		return nil, err
	}
	return s.repo.Events(ctx, id)
}

// Advance moves the package to the next status. Admin-only at the
// handler layer; quoteID links the confirmed quote when moving to
// StatusQuoted.
func (s *Service) Advance(ctx context.Context, id int64, next Status, note string, quoteID *string) (*Package, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadTransition, next)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrBadTransition, current.Status, next)
	}
	if next == StatusQuoted && quoteID == nil {
		return nil, fmt.Errorf("%w: quote id required to mark quoted", ErrBadTransition)
	}
	if err := s.repo.UpdateStatus(ctx, id, next, note, quoteID); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
