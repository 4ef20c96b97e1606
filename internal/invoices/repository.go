package invoices

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demus23/myus-delivery-app-sub002/internal/platform/httpx"
	"github.com/demus23/myus-delivery-app-sub002/internal/shared"
)

// Repository defines persistence for invoices.
type Repository interface {
	Create(ctx context.Context, inv Invoice) (int64, error)
	Get(ctx context.Context, id int64) (*Invoice, error)
	GetByNumber(ctx context.Context, invoiceNo string) (*Invoice, error)
	ListByUser(ctx context.Context, userID int64, page shared.Pagination) ([]Invoice, int, error)
	MarkPaid(ctx context.Context, id int64) error
	NextSequence(ctx context.Context) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const invoiceColumns = `id, invoice_no, user_id, quote_id, carrier, speed,
	base_aed, fuel_aed, remote_aed, insurance_aed, total_aed,
	status, issued_at, paid_at, recipient_email`

func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO invoices (invoice_no, user_id, quote_id, carrier, speed,
		   base_aed, fuel_aed, remote_aed, insurance_aed, total_aed,
		   status, issued_at, recipient_email)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), $12)
		 RETURNING id`,
		inv.InvoiceNo, inv.UserID, inv.QuoteID, inv.Carrier, inv.Speed,
		inv.Breakdown.Base, inv.Breakdown.Fuel, inv.Breakdown.Remote, inv.Breakdown.Insurance, inv.TotalAED,
		inv.Status, inv.RecipientEmail).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, httpx.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
}

func (r *repository) GetByNumber(ctx context.Context, invoiceNo string) (*Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE invoice_no = $1`, invoiceNo))
}

func (r *repository) ListByUser(ctx context.Context, userID int64, page shared.Pagination) ([]Invoice, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE user_id = $1
		 ORDER BY issued_at DESC LIMIT $2 OFFSET $3`,
		userID, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *inv)
	}
	return out, total, rows.Err()
}

func (r *repository) MarkPaid(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices SET status = 'paid', paid_at = NOW() WHERE id = $1 AND status = 'issued'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NextSequence draws the next invoice number from a dedicated sequence
// so numbering survives deletes and restarts.
func (r *repository) NextSequence(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT nextval('invoice_no_seq')`).Scan(&n)
	return n, err
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.InvoiceNo, &inv.UserID, &inv.QuoteID, &inv.Carrier, &inv.Speed,
		&inv.Breakdown.Base, &inv.Breakdown.Fuel, &inv.Breakdown.Remote, &inv.Breakdown.Insurance, &inv.TotalAED,
		&inv.Status, &inv.IssuedAt, &inv.PaidAt, &inv.RecipientEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}
