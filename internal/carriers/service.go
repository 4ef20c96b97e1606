package carriers

import (
	"context"

	"github.com/demus23/myus-delivery-app-sub002/internal/rates"
)

// Service handles carrier rate administration.
type Service struct {
	repo  Repository
	cache *CachedRates
}

// NewService builds a Service.
func NewService(repo Repository, cache *CachedRates) *Service {
	return &Service{repo: repo, cache: cache}
}

// List returns every configured rate card, enabled or not.
func (s *Service) List(ctx context.Context) ([]Config, error) {
	return s.repo.List(ctx)
}

// Get fetches one rate card.
func (s *Service) Get(ctx context.Context, id int64) (Config, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new rate card.
func (s *Service) Create(ctx context.Context, rate rates.CarrierRate) (Config, error) {
	if err := validateRate(rate); err != nil {
		return Config{}, err
	}
	cfg, err := s.repo.Create(ctx, rate)
	if err != nil {
		return Config{}, err
	}
	s.cache.Invalidate(ctx)
	return cfg, nil
}

// Update validates and replaces an existing rate card.
func (s *Service) Update(ctx context.Context, id int64, rate rates.CarrierRate) (Config, error) {
	if err := validateRate(rate); err != nil {
		return Config{}, err
	}
	if err := s.repo.Update(ctx, id, rate); err != nil {
		return Config{}, err
	}
	s.cache.Invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// SetEnabled flips a carrier in or out of the quoting pool.
func (s *Service) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	if err := s.repo.SetEnabled(ctx, id, enabled); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

// Delete removes a rate card entirely.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}
