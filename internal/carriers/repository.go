package carriers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/demus23/myus-delivery-app-sub002/internal/platform/httpx"
	"github.com/demus23/myus-delivery-app-sub002/internal/rates"
	"github.com/demus23/myus-delivery-app-sub002/internal/shared"
)

// Repository defines persistence for carrier rate configuration.
type Repository interface {
	List(ctx context.Context) ([]Config, error)
	ListEnabled(ctx context.Context) ([]rates.CarrierRate, error)
	Get(ctx context.Context, id int64) (Config, error)
	Create(ctx context.Context, rate rates.CarrierRate) (Config, error)
	Update(ctx context.Context, id int64, rate rates.CarrierRate) error
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PostgreSQL-backed Repository. Tiers and remote
// prefixes live in JSONB columns; the rest are plain columns so the
// enabled filter stays an index scan.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const configColumns = `id, carrier, enabled, tiers, fuel_pct, remote_surcharge_aed, remote_prefixes, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]Config, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+configColumns+` FROM carrier_rates ORDER BY carrier`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConfigs(rows)
}

func (r *repository) ListEnabled(ctx context.Context) ([]rates.CarrierRate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+configColumns+` FROM carrier_rates WHERE enabled ORDER BY carrier`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	configs, err := scanConfigs(rows)
	if err != nil {
		return nil, err
	}
	out := make([]rates.CarrierRate, 0, len(configs))
	for _, c := range configs {
		out = append(out, c.Rate)
	}
	return out, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Config, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+configColumns+` FROM carrier_rates WHERE id = $1`, id)
	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Config{}, shared.ErrNotFound
		}
		return Config{}, err
	}
	return cfg, nil
}

func (r *repository) Create(ctx context.Context, rate rates.CarrierRate) (Config, error) {
	tiers, prefixes, err := marshalRate(rate)
	if err != nil {
		return Config{}, err
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO carrier_rates (carrier, enabled, tiers, fuel_pct, remote_surcharge_aed, remote_prefixes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		 RETURNING `+configColumns,
		rate.Carrier, rate.Enabled, tiers, rate.FuelPct, rate.RemoteSurchargeAED, prefixes)
	cfg, err := scanConfig(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Config{}, httpx.ErrDuplicate
		}
		return Config{}, err
	}
	return cfg, nil
}

func (r *repository) Update(ctx context.Context, id int64, rate rates.CarrierRate) error {
	tiers, prefixes, err := marshalRate(rate)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE carrier_rates
		 SET carrier = $2, enabled = $3, tiers = $4, fuel_pct = $5, remote_surcharge_aed = $6, remote_prefixes = $7, updated_at = NOW()
		 WHERE id = $1`,
		id, rate.Carrier, rate.Enabled, tiers, rate.FuelPct, rate.RemoteSurchargeAED, prefixes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE carrier_rates SET enabled = $2, updated_at = NOW() WHERE id = $1`, id, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM carrier_rates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func marshalRate(rate rates.CarrierRate) (tiers, prefixes []byte, err error) {
	tiers, err = json.Marshal(rate.Tiers)
	if err != nil {
		return nil, nil, err
	}
	prefixes, err = json.Marshal(rate.RemotePrefixes)
	if err != nil {
		return nil, nil, err
	}
	return tiers, prefixes, nil
}

func scanConfig(row pgx.Row) (Config, error) {
	var (
		cfg      Config
		tiers    []byte
		prefixes []byte
	)
	err := row.Scan(&cfg.ID, &cfg.Rate.Carrier, &cfg.Rate.Enabled, &tiers, &cfg.Rate.FuelPct,
		&cfg.Rate.RemoteSurchargeAED, &prefixes, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(tiers, &cfg.Rate.Tiers); err != nil {
		return Config{}, err
	}
	if len(prefixes) > 0 {
		if err := json.Unmarshal(prefixes, &cfg.Rate.RemotePrefixes); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func scanConfigs(rows pgx.Rows) ([]Config, error) {
	var out []Config
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}
