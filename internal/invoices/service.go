package invoices

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/demus23/myus-delivery-app-sub002/internal/linktoken"
	"github.com/demus23/myus-delivery-app-sub002/internal/observability"
	"github.com/demus23/myus-delivery-app-sub002/internal/quotes"
	"github.com/demus23/myus-delivery-app-sub002/internal/shared"
	"github.com/demus23/myus-delivery-app-sub002/internal/users"
)

// ErrNoChosenOption means the quote has no confirmed option to bill.
var ErrNoChosenOption = errors.New("invoices: quote has no chosen option")

// Enqueuer schedules the invoice email for background delivery.
type Enqueuer interface {
	EnqueueInvoiceEmail(ctx context.Context, to, invoiceNo, link string) error
}

// QuoteSource loads quotes for billing.
type QuoteSource interface {
	Get(ctx context.Context, id string) (*quotes.Quote, error)
}

// RecipientSource resolves the account an invoice is billed to.
type RecipientSource interface {
	Get(ctx context.Context, id int64) (*users.User, error)
}

// Service handles invoice creation, listing and signed-link access.
type Service struct {
	repo       Repository
	tokens     *linktoken.Authorizer
	enqueuer   Enqueuer
	quotes     QuoteSource
	recipients RecipientSource
	metrics    *observability.Metrics
	baseURL    string
	linkTTL    time.Duration
}

// ServiceDeps collects the Service dependencies.
type ServiceDeps struct {
	Repo       Repository
	Tokens     *linktoken.Authorizer
	Enqueuer   Enqueuer
	Quotes     QuoteSource
	Recipients RecipientSource
	Metrics    *observability.Metrics
	BaseURL    string
	LinkTTL    time.Duration
}

// NewService builds a Service. A LinkTTL of zero falls back to the
// authorizer's default lifetime.
func NewService(deps ServiceDeps) *Service {
	if deps.LinkTTL <= 0 {
		deps.LinkTTL = linktoken.DefaultTTL
	}
	return &Service{
		repo:       deps.Repo,
		tokens:     deps.Tokens,
		enqueuer:   deps.Enqueuer,
		quotes:     deps.Quotes,
		recipients: deps.Recipients,
		metrics:    deps.Metrics,
		baseURL:    deps.BaseURL,
		linkTTL:    deps.LinkTTL,
	}
}

// IssueForQuote bills the chosen option of the quote and emails the
// signed link to the quote's owner.
func (s *Service) IssueForQuote(ctx context.Context, quoteID string) (*Invoice, error) {
	quote, err := s.quotes.Get(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	owner, err := s.recipients.Get(ctx, quote.UserID)
	if err != nil {
		return nil, err
	}
	return s.CreateFromQuote(ctx, quote, owner.Email)
}

// CreateFromQuote bills the chosen option of a confirmed quote and
// emails the recipient a signed link to view the invoice.
func (s *Service) CreateFromQuote(ctx context.Context, quote *quotes.Quote, recipientEmail string) (*Invoice, error) {
	if quote.ChosenIndex == nil {
		return nil, fmt.Errorf("%w: quote %s", ErrNoChosenOption, quote.ID)
	}
	option := quote.Options[*quote.ChosenIndex]

	seq, err := s.repo.NextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("invoices: next sequence: %w", err)
	}
	inv := Invoice{
		InvoiceNo:      fmt.Sprintf("INV-%d-%05d", time.Now().Year(), seq),
		UserID:         quote.UserID,
		QuoteID:        quote.ID,
		Carrier:        option.Carrier,
		Speed:          option.Speed,
		Breakdown:      option.Breakdown,
		TotalAED:       option.TotalAED,
		Status:         StatusIssued,
		RecipientEmail: recipientEmail,
	}
	id, err := s.repo.Create(ctx, inv)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.metrics.InvoiceIssued()
	if err := s.SendLink(ctx, created); err != nil {
		// The invoice exists; the email can be resent later.
		return created, fmt.Errorf("invoices: enqueue email: %w", err)
	}
	return created, nil
}

// SendLink mints a fresh signed link for the invoice and enqueues the
// email carrying it.
func (s *Service) SendLink(ctx context.Context, inv *Invoice) error {
	if s.enqueuer == nil {
		return nil
	}
	link, err := s.ViewLink(inv.InvoiceNo)
	if err != nil {
		return err
	}
	return s.enqueuer.EnqueueInvoiceEmail(ctx, inv.RecipientEmail, inv.InvoiceNo, link)
}

// ViewLink builds the absolute signed URL for one invoice.
func (s *Service) ViewLink(invoiceNo string) (string, error) {
	token, err := s.tokens.Issue(invoiceNo, s.linkTTL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/invoices/view?invoice=%s&token=%s",
		s.baseURL, url.QueryEscape(invoiceNo), url.QueryEscape(token)), nil
}

// Get returns one invoice, restricted to its owner unless the caller is
// an administrator.
func (s *Service) Get(ctx context.Context, id int64, caller *shared.Identity) (*Invoice, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if caller == nil || (inv.UserID != caller.UserID && !caller.IsAdmin) {
		return nil, shared.ErrForbidden
	}
	return inv, nil
}

// ListMine returns the caller's invoices, newest first.
func (s *Service) ListMine(ctx context.Context, userID int64, page, perPage int) ([]Invoice, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	list, total, err := s.repo.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(page, perPage, total), nil
}

// ViewByToken returns the invoice only when the signed token authorizes
// that exact invoice number. A nil return with no error never happens;
// failures collapse to ErrForbidden so the handler renders one generic
// message.
func (s *Service) ViewByToken(ctx context.Context, invoiceNo, token string) (*Invoice, error) {
	if !s.tokens.Verify(token, invoiceNo) {
		return nil, shared.ErrForbidden
	}
	inv, err := s.repo.GetByNumber(ctx, invoiceNo)
	if err != nil {
		return nil, shared.ErrForbidden
	}
	return inv, nil
}

// MarkPaid settles an invoice. Admin-gated at the router.
func (s *Service) MarkPaid(ctx context.Context, id int64) (*Invoice, error) {
	if err := s.repo.MarkPaid(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
