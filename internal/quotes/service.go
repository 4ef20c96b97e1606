package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/demus23/myus-delivery-app-sub002/internal/observability"
	"github.com/demus23/myus-delivery-app-sub002/internal/rates"
	"github.com/demus23/myus-delivery-app-sub002/internal/shared"
)

var (
	// ErrAlreadyChosen means the quote has a confirmed option already.
	ErrAlreadyChosen = errors.New("quotes: option already chosen")
	// ErrBadOptionIndex means the index is outside the option list.
	ErrBadOptionIndex = errors.New("quotes: option index out of range")
)

// RateSource supplies the enabled carrier rate cards for pricing.
type RateSource interface {
	Enabled(ctx context.Context) ([]rates.CarrierRate, error)
}

// Service prices and persists quotes.
type Service struct {
	repo    Repository
	cards   RateSource
	metrics *observability.Metrics
}

// NewService builds a Service. metrics may be nil.
func NewService(repo Repository, cards RateSource, metrics *observability.Metrics) *Service {
	return &Service{repo: repo, cards: cards, metrics: metrics}
}

// Create prices the request against all enabled carriers and persists
// the resulting quote for the user.
func (s *Service) Create(ctx context.Context, userID int64, req CreateQuoteRequest) (*Quote, error) {
	engineReq, shipment, err := buildRequest(req)
	if err != nil {
		return nil, err
	}

	cards, err := s.cards.Enabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("quotes: load rate cards: %w", err)
	}

	result, err := rates.Quote(engineReq, cards)
	if err != nil {
		return nil, err
	}

	quote := Quote{
		ID:            uuid.NewString(),
		UserID:        userID,
		Shipment:      shipment,
		Options:       result.Options,
		CheapestIndex: result.CheapestIndex,
	}
	if err := s.repo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("quotes: persist: %w", err)
	}
	s.metrics.QuoteCreated()
	return s.repo.Get(ctx, quote.ID)
}

// Get returns one quote, restricted to its owner unless the caller is
// an administrator.
func (s *Service) Get(ctx context.Context, id string, caller *shared.Identity) (*Quote, error) {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller == nil || (quote.UserID != caller.UserID && !caller.IsAdmin) {
		return nil, shared.ErrForbidden
	}
	return quote, nil
}

// ListMine returns the caller's quotes, newest first.
func (s *Service) ListMine(ctx context.Context, userID int64, page, perPage int) ([]Quote, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	list, total, err := s.repo.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, perPage, total), nil
}

// Choose confirms one option of the quote. Only the owner can choose,
// only once, and only an index inside the option list.
func (s *Service) Choose(ctx context.Context, id string, caller *shared.Identity, index int) (*Quote, error) {
	quote, err := s.Get(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if quote.ChosenIndex != nil {
		return nil, ErrAlreadyChosen
	}
	if index < 0 || index >= len(quote.Options) {
		return nil, ErrBadOptionIndex
	}
	if err := s.repo.SetChosen(ctx, id, index); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func buildRequest(req CreateQuoteRequest) (rates.Request, Shipment, error) {
	dims := rates.Dimensions{}
	provided := 0
	for _, v := range []*float64{req.LengthCm, req.WidthCm, req.HeightCm} {
		if v != nil {
			provided++
		}
	}
	switch provided {
	case 0:
		// No dimensions: volumetric weight is zero.
	case 3:
		var err error
		dims, err = rates.NewDimensions(*req.LengthCm, *req.WidthCm, *req.HeightCm)
		if err != nil {
			return rates.Request{}, Shipment{}, err
		}
	default:
		return rates.Request{}, Shipment{}, fmt.Errorf("%w: dimensions must be provided together", rates.ErrInvalidInput)
	}

	speed := rates.Speed(req.Speed)
	if !speed.Valid() {
		return rates.Request{}, Shipment{}, fmt.Errorf("%w: unknown speed %q", rates.ErrInvalidInput, req.Speed)
	}

	engineReq := rates.Request{
		OriginCountry:      req.OriginCountry,
		DestinationCountry: req.DestinationCountry,
		DestinationPostal:  req.DestinationPostal,
		ActualWeightKg:     req.ActualWeightKg,
		Dims:               dims,
		Speed:              speed,
		DeclaredValueAED:   req.DeclaredValueAED,
	}
	shipment := Shipment{
		OriginCountry:      req.OriginCountry,
		DestinationCountry: req.DestinationCountry,
		DestinationPostal:  req.DestinationPostal,
		ActualWeightKg:     req.ActualWeightKg,
		LengthCm:           req.LengthCm,
		WidthCm:            req.WidthCm,
		HeightCm:           req.HeightCm,
		Speed:              speed,
		DeclaredValueAED:   req.DeclaredValueAED,
	}
	return engineReq, shipment, nil
}
