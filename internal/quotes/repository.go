package quotes

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demus23/myus-delivery-app-sub002/internal/platform/db"
	"github.com/demus23/myus-delivery-app-sub002/internal/rates"
	"github.com/demus23/myus-delivery-app-sub002/internal/shared"
)

// Repository defines persistence for quotes.
type Repository interface {
	Create(ctx context.Context, q Quote) error
	Get(ctx context.Context, id string) (*Quote, error)
	ListByUser(ctx context.Context, userID int64, page shared.Pagination) ([]Quote, int, error)
	SetChosen(ctx context.Context, id string, index int) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PostgreSQL-backed Repository. The shipment
// snapshot and option list are JSONB: they are written once and read
// whole, never filtered on.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const quoteColumns = `id, user_id, shipment, options, cheapest_index, chosen_index, created_at, updated_at`

func (r *repository) Create(ctx context.Context, q Quote) error {
	shipment, err := json.Marshal(q.Shipment)
	if err != nil {
		return err
	}
	options, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO quotes (id, user_id, shipment, options, cheapest_index, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
			q.ID, q.UserID, shipment, options, q.CheapestIndex)
		return err
	})
}

func (r *repository) Get(ctx context.Context, id string) (*Quote, error) {
	return scanQuote(r.pool.QueryRow(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id))
}

func (r *repository) ListByUser(ctx context.Context, userID int64, page shared.Pagination) ([]Quote, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quotes WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *q)
	}
	return out, total, rows.Err()
}

// SetChosen records the confirmed option. chosen_index is written at
// most once; a second confirmation is a no-op conflict.
func (r *repository) SetChosen(ctx context.Context, id string, index int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quotes SET chosen_index = $2, updated_at = NOW()
		 WHERE id = $1 AND chosen_index IS NULL`, id, index)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyChosen
	}
	return nil
}

func scanQuote(row pgx.Row) (*Quote, error) {
	var (
		q        Quote
		shipment []byte
		options  []byte
	)
	err := row.Scan(&q.ID, &q.UserID, &shipment, &options, &q.CheapestIndex, &q.ChosenIndex, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(shipment, &q.Shipment); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return nil, err
	}
	if q.Options == nil {
		q.Options = []rates.Option{}
	}
	return &q, nil
}
