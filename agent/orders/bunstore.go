package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
)

type orderRow struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	OrderNumber    string `bun:"order_number,pk"`
	Email          string `bun:"email,notnull"`
	Status         string `bun:"status,notnull"`
	TrackingNumber string `bun:"tracking_number"`
}

// BunStore serves order lookups from Postgres.
type BunStore struct {
	db *bun.DB
}

// OpenPostgres dials Postgres with the pg wire driver and wraps it in bun.
func OpenPostgres(dsn string) (*bun.DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func NewBunStore(db *bun.DB) (*BunStore, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &BunStore{db: db}, nil
}

// Lookup matches email case-insensitively and order number exactly; a miss
// of either field returns the same ErrOrderNotFound.
func (s *BunStore) Lookup(ctx context.Context, email, orderNumber string) (contractx.OrderRecord, error) {
	var row orderRow
	err := s.db.NewSelect().
		Model(&row).
		Where("lower(o.email) = lower(?)", email).
		Where("o.order_number = ?", orderNumber).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return contractx.OrderRecord{}, contractx.ErrOrderNotFound
		}
		return contractx.OrderRecord{}, fmt.Errorf("query order: %w", err)
	}

	return contractx.OrderRecord{
		OrderNumber:    row.OrderNumber,
		Email:          row.Email,
		Status:         row.Status,
		TrackingNumber: row.TrackingNumber,
	}, nil
}
