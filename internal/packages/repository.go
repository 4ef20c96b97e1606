package packages

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demus23/myus-delivery-app-sub002/internal/platform/db"
	"github.com/demus23/myus-delivery-app-sub002/internal/shared"
)

// Repository defines persistence for packages and their tracking events.
type Repository interface {
	Create(ctx context.Context, p Package) (int64, error)
	Get(ctx context.Context, id int64) (*Package, error)
	ListByUser(ctx context.Context, userID int64, page shared.Pagination) ([]Package, int, error)
	UpdateStatus(ctx context.Context, id int64, status Status, note string, quoteID *string) error
	Events(ctx context.Context, packageID int64) ([]Event, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const packageColumns = `id, user_id, description, merchant, tracking_inbound, weight_kg, status, quote_id, created_at, updated_at`

func (r *repository) Create(ctx context.Context, p Package) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO packages (user_id, description, merchant, tracking_inbound, weight_kg, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id`,
			p.UserID, p.Description, p.Merchant, p.TrackingInbound, p.WeightKg, p.Status).Scan(&id)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO package_events (package_id, status, note, created_at)
			 VALUES ($1, $2, $3, NOW())`, id, p.Status, "package registered")
		return err
	})
	return id, err
}

func (r *repository) Get(ctx context.Context, id int64) (*Package, error) {
	return scanPackage(r.pool.QueryRow(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE id = $1`, id))
}

func (r *repository) ListByUser(ctx context.Context, userID int64, page shared.Pagination) ([]Package, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM packages WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+packageColumns+` FROM packages WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Package
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// UpdateStatus writes the new status and appends a tracking event in one
// transaction.
func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, note string, quoteID *string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE packages SET status = $2, quote_id = COALESCE($3, quote_id), updated_at = NOW() WHERE id = $1`,
			id, status, quoteID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO package_events (package_id, status, note, created_at)
			 VALUES ($1, $2, $3, NOW())`, id, status, note)
		return err
	})
}

func (r *repository) Events(ctx context.Context, packageID int64) ([]Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, package_id, status, note, created_at FROM package_events
		 WHERE package_id = $1 ORDER BY created_at`, packageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.PackageID, &e.Status, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanPackage(row pgx.Row) (*Package, error) {
	var p Package
	err := row.Scan(&p.ID, &p.UserID, &p.Description, &p.Merchant, &p.TrackingInbound,
		&p.WeightKg, &p.Status, &p.QuoteID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
