// Package storage persists extracted offers to Postgres. The sink is
// optional: the pipeline runs fine without a DSN, and persistence
// failures never fail a run at the API layer.
package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sidnevart/commercial-real-estate-analysis/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS offers (
	lot_uuid   TEXT PRIMARY KEY,
	price      BIGINT,
	area       DOUBLE PRECISION,
	url        TEXT NOT NULL,
	deal_type  TEXT NOT NULL,
	first_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_seen  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_offers_deal_type ON offers(deal_type);
`

const upsertSQL = `
INSERT INTO offers (lot_uuid, price, area, url, deal_type)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (lot_uuid) DO UPDATE
SET price = EXCLUDED.price,
    area = EXCLUDED.area,
    url = EXCLUDED.url,
    deal_type = EXCLUDED.deal_type,
    last_seen = NOW()`

// Store is a pgx-backed offer sink keyed by lot_uuid. Re-seeing a lot
// refreshes its price, area and last_seen instead of duplicating it.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and ensures the offers schema exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, models.NewParseError(models.ErrCodeStorage, "invalid postgres DSN", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connCtx, cfg)
	if err != nil {
		return nil, models.NewParseError(models.ErrCodeStorage, "postgres connect failed", err)
	}
	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, models.NewParseError(models.ErrCodeStorage, "postgres ping failed", err)
	}
	if _, err := pool.Exec(connCtx, schemaSQL); err != nil {
		pool.Close()
		return nil, models.NewParseError(models.ErrCodeStorage, "schema creation failed", err)
	}

	slog.Info("offer store ready")
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// SaveOffers upserts the batch and returns the number of rows written.
// Offers without an identifier are skipped; the normalizer should not
// produce any, but a bad row must not poison the batch.
func (s *Store) SaveOffers(ctx context.Context, offers []models.Offer) (int, error) {
	if len(offers) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	queued := 0
	for _, o := range offers {
		if o.LotUUID == "" {
			slog.Warn("offer without lot_uuid skipped", "url", o.URL)
			continue
		}
		b.Queue(upsertSQL, o.LotUUID, o.Price, o.Area, o.URL, o.Type)
		queued++
	}

	br := s.pool.SendBatch(ctx, b)
	total := 0
	for i := 0; i < queued; i++ {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return total, models.NewParseError(models.ErrCodeStorage, "offer upsert failed", err)
		}
		total += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return total, models.NewParseError(models.ErrCodeStorage, "batch close failed", err)
	}
	return total, nil
}
