package packages

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demus23/myus-delivery-app-sub002/internal/shared"
)

type memRepo struct {
	nextID   int64
	packages map[int64]*Package
	events   map[int64][]Event
}

func newMemRepo() *memRepo {
	return &memRepo{packages: map[int64]*Package{}, events: map[int64][]Event{}}
}

func (r *memRepo) Create(ctx context.Context, p Package) (int64, error) {
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.packages[p.ID] = &p
	r.events[p.ID] = []Event{{PackageID: p.ID, Status: p.Status, Note: "package registered"}}
	return p.ID, nil
}

func (r *memRepo) Get(ctx context.Context, id int64) (*Package, error) {
	if p, ok := r.packages[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memRepo) ListByUser(ctx context.Context, userID int64, page shared.Pagination) ([]Package, int, error) {
	var out []Package
	for _, p := range r.packages {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, len(out), nil
}

func (r *memRepo) UpdateStatus(ctx context.Context, id int64, status Status, note string, quoteID *string) error {
	p, ok := r.packages[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Status = status
	if quoteID != nil {
		p.QuoteID = quoteID
	}
	r.events[id] = append(r.events[id], Event{PackageID: id, Status: status, Note: note})
	return nil
}

func (r *memRepo) Events(ctx context.Context, packageID int64) ([]Event, error) {
	return r.events[packageID], nil
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from Status
		to   Status
		ok   bool
	}{
		{StatusExpected, StatusReceived, true},
		{StatusReceived, StatusQuoted, true},
		{StatusQuoted, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusExpected, StatusShipped, false},
		{StatusDelivered, StatusExpected, false},
		{StatusReceived, StatusReceived, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.ok {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestRegisterAndAdvance(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	pkg, err := svc.Register(ctx, 42, "wireless headphones", "amazon.ae", "1Z999", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusExpected, pkg.Status)

	pkg, err = svc.Advance(ctx, pkg.ID, StatusReceived, "checked in at warehouse", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, pkg.Status)

	// Skipping a step is rejected.
	_, err = svc.Advance(ctx, pkg.ID, StatusShipped, "", nil)
	assert.ErrorIs(t, err, ErrBadTransition)

	// Quoted requires a quote id.
	_, err = svc.Advance(ctx, pkg.ID, StatusQuoted, "", nil)
	assert.ErrorIs(t, err, ErrBadTransition)

	quoteID := "3f0aa4b4-1111-2222-3333-444455556666"
	pkg, err = svc.Advance(ctx, pkg.ID, StatusQuoted, "quote confirmed", &quoteID)
	require.NoError(t, err)
	require.NotNil(t, pkg.QuoteID)
	assert.Equal(t, quoteID, *pkg.QuoteID)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newMemRepo())
	_, err := svc.Register(context.Background(), 42, "  ", "", "", nil)
	assert.Error(t, err)

	negative := -1.0
	_, err = svc.Register(context.Background(), 42, "book", "", "", &negative)
	assert.Error(t, err)
}

func TestTrackOwnerGate(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()
	pkg, err := svc.Register(ctx, 42, "book", "", "", nil)
	require.NoError(t, err)

	_, err = svc.Track(ctx, pkg.ID, &shared.Identity{UserID: 7})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	events, err := svc.Track(ctx, pkg.ID, &shared.Identity{UserID: 42})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
