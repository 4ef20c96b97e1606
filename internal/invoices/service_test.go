package invoices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demus23/myus-delivery-app-sub002/internal/linktoken"
	"github.com/demus23/myus-delivery-app-sub002/internal/observability"
	"github.com/demus23/myus-delivery-app-sub002/internal/quotes"
	"github.com/demus23/myus-delivery-app-sub002/internal/rates"
	"github.com/demus23/myus-delivery-app-sub002/internal/shared"
	"github.com/demus23/myus-delivery-app-sub002/internal/users"
)

type memRepo struct {
	nextID int64
	seq    int64
	byID   map[int64]*Invoice
	byNo   map[string]*Invoice
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[int64]*Invoice{}, byNo: map[string]*Invoice{}}
}

func (r *memRepo) Create(ctx context.Context, inv Invoice) (int64, error) {
	r.nextID++
	inv.ID = r.nextID
	inv.IssuedAt = time.Now()
	r.byID[inv.ID] = &inv
	r.byNo[inv.InvoiceNo] = &inv
	return inv.ID, nil
}

func (r *memRepo) Get(ctx context.Context, id int64) (*Invoice, error) {
	if inv, ok := r.byID[id]; ok {
		copied := *inv
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memRepo) GetByNumber(ctx context.Context, invoiceNo string) (*Invoice, error) {
	if inv, ok := r.byNo[invoiceNo]; ok {
		copied := *inv
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memRepo) ListByUser(ctx context.Context, userID int64, page shared.Pagination) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range r.byID {
		if inv.UserID == userID {
			out = append(out, *inv)
		}
	}
	return out, len(out), nil
}

func (r *memRepo) MarkPaid(ctx context.Context, id int64) error {
	inv, ok := r.byID[id]
	if !ok || inv.Status != StatusIssued {
		return shared.ErrNotFound
	}
	now := time.Now()
	inv.Status = StatusPaid
	inv.PaidAt = &now
	return nil
}

func (r *memRepo) NextSequence(ctx context.Context) (int64, error) {
	r.seq++
	return r.seq, nil
}

type capturingEnqueuer struct {
	to        string
	invoiceNo string
	link      string
	calls     int
}

func (e *capturingEnqueuer) EnqueueInvoiceEmail(ctx context.Context, to, invoiceNo, link string) error {
	e.to, e.invoiceNo, e.link = to, invoiceNo, link
	e.calls++
	return nil
}

func chosenQuote() *quotes.Quote {
	chosen := 0
	return &quotes.Quote{
		ID:     "7a1b44cc-0000-1111-2222-333344445555",
		UserID: 42,
		Options: []rates.Option{{
			Carrier:  "Aramex",
			Speed:    rates.SpeedStandard,
			TotalAED: 115,
			Breakdown: rates.Breakdown{
				Base: 80, Fuel: 10, Remote: 0, Insurance: 25,
			},
		}},
		CheapestIndex: 0,
		ChosenIndex:   &chosen,
	}
}

type stubQuotes struct {
	quote *quotes.Quote
}

func (s stubQuotes) Get(ctx context.Context, id string) (*quotes.Quote, error) {
	if s.quote == nil || s.quote.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.quote, nil
}

type stubRecipients struct{}

func (stubRecipients) Get(ctx context.Context, id int64) (*users.User, error) {
	return &users.User{ID: id, Email: "amal@example.com"}, nil
}

type fixture struct {
	svc     *Service
	repo    *memRepo
	enq     *capturingEnqueuer
	tokens  *linktoken.Authorizer
	metrics *observability.Metrics
	quote   *quotes.Quote
}

func testFixture() fixture {
	repo := newMemRepo()
	tokens := linktoken.New("fixture-link-secret")
	enq := &capturingEnqueuer{}
	metrics := observability.NewMetrics()
	quote := chosenQuote()
	svc := NewService(ServiceDeps{
		Repo:       repo,
		Tokens:     tokens,
		Enqueuer:   enq,
		Quotes:     stubQuotes{quote: quote},
		Recipients: stubRecipients{},
		Metrics:    metrics,
		BaseURL:    "https://ship.example.com",
		LinkTTL:    time.Hour,
	})
	return fixture{svc: svc, repo: repo, enq: enq, tokens: tokens, metrics: metrics, quote: quote}
}

func TestCreateFromQuoteIssuesAndEmails(t *testing.T) {
	f := testFixture()

	inv, err := f.svc.CreateFromQuote(context.Background(), chosenQuote(), "amal@example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(inv.InvoiceNo, "INV-"))
	assert.Equal(t, 115.0, inv.TotalAED)
	assert.Equal(t, StatusIssued, inv.Status)

	require.Equal(t, 1, f.enq.calls)
	assert.Equal(t, "amal@example.com", f.enq.to)
	assert.Contains(t, f.enq.link, "invoice="+inv.InvoiceNo)

	// The link embeds a token that verifies against this invoice only.
	token := f.enq.link[strings.Index(f.enq.link, "token=")+len("token="):]
	assert.True(t, f.tokens.Verify(token, inv.InvoiceNo))
	assert.False(t, f.tokens.Verify(token, "INV-other"))

	// The issued counter moves with the billing path.
	rr := httptest.NewRecorder()
	f.metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rr.Body.String(), "myus_invoices_issued_total 1")
}

func TestIssueForQuote(t *testing.T) {
	f := testFixture()

	inv, err := f.svc.IssueForQuote(context.Background(), f.quote.ID)
	require.NoError(t, err)
	assert.Equal(t, f.quote.UserID, inv.UserID)
	assert.Equal(t, "amal@example.com", inv.RecipientEmail)
	require.Equal(t, 1, f.enq.calls)
	assert.Equal(t, "amal@example.com", f.enq.to)

	_, err = f.svc.IssueForQuote(context.Background(), "d41d8cd9-0000-1111-2222-333344445555")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateFromQuoteRequiresChoice(t *testing.T) {
	f := testFixture()
	q := chosenQuote()
	q.ChosenIndex = nil
	_, err := f.svc.CreateFromQuote(context.Background(), q, "amal@example.com")
	assert.ErrorIs(t, err, ErrNoChosenOption)

	f.quote.ChosenIndex = nil
	_, err = f.svc.IssueForQuote(context.Background(), f.quote.ID)
	assert.ErrorIs(t, err, ErrNoChosenOption)
}

func TestViewByToken(t *testing.T) {
	f := testFixture()
	svc, tokens := f.svc, f.tokens
	inv, err := svc.CreateFromQuote(context.Background(), chosenQuote(), "amal@example.com")
	require.NoError(t, err)

	token, err := tokens.Issue(inv.InvoiceNo, time.Hour)
	require.NoError(t, err)

	got, err := svc.ViewByToken(context.Background(), inv.InvoiceNo, token)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNo, got.InvoiceNo)

	_, err = svc.ViewByToken(context.Background(), "INV-other", token)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.ViewByToken(context.Background(), inv.InvoiceNo, "garbage")
	assert.ErrorIs(t, err, shared.ErrForbidden)

	// Valid token for an invoice that no longer exists: same failure.
	orphan, err := tokens.Issue("INV-9999-00001", time.Hour)
	require.NoError(t, err)
	_, err = svc.ViewByToken(context.Background(), "INV-9999-00001", orphan)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestGetOwnership(t *testing.T) {
	svc := testFixture().svc
	inv, err := svc.CreateFromQuote(context.Background(), chosenQuote(), "amal@example.com")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), inv.ID, &shared.Identity{UserID: 7})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	got, err := svc.Get(context.Background(), inv.ID, &shared.Identity{UserID: 42})
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
}

func TestBuildReceiptPDF(t *testing.T) {
	svc := testFixture().svc
	inv, err := svc.CreateFromQuote(context.Background(), chosenQuote(), "amal@example.com")
	require.NoError(t, err)

	data, err := BuildReceiptPDF(inv)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}
