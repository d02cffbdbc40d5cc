package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"signal_trader/internal/models"
	"signal_trader/pkg/db"
)

const (
	createTableSQL = `
CREATE TABLE IF NOT EXISTS instrument_lot_rules (
	symbol     TEXT PRIMARY KEY,
	step       NUMERIC NOT NULL CHECK (step > 0),
	min_qty    NUMERIC NOT NULL CHECK (min_qty >= 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	selectSQL = `SELECT step::text, min_qty::text FROM instrument_lot_rules WHERE symbol = $1`

	upsertSQL = `
INSERT INTO instrument_lot_rules (symbol, step, min_qty, updated_at)
VALUES ($1, $2::numeric, $3::numeric, now())
ON CONFLICT (symbol) DO UPDATE
SET step = EXCLUDED.step, min_qty = EXCLUDED.min_qty, updated_at = now()`
)

// LotRule — postgres-хранилище правил лота.
type LotRule struct {
	db db.TxManager
}

// NewLotRule instance
func NewLotRule(db db.TxManager) *LotRule {
	return &LotRule{db: db}
}

// EnsureSchema создаёт таблицу, если её нет.
func (l *LotRule) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.Conn().Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("pg.EnsureSchema: %w", err)
	}
	return nil
}

// Get in db
func (l *LotRule) Get(ctx context.Context, symbol string) (rule models.LotRule, found bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.GetLotRule: %w", err)
		}
	}()

	var step, minQty string
	err = l.db.Conn().QueryRow(ctx, selectSQL, symbol).Scan(&step, &minQty)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.LotRule{}, false, nil
	}
	if err != nil {
		return models.LotRule{}, false, err
	}

	if rule.Step, err = decimal.NewFromString(step); err != nil {
		return models.LotRule{}, false, err
	}
	if rule.MinQty, err = decimal.NewFromString(minQty); err != nil {
		return models.LotRule{}, false, err
	}
	return rule, true, nil
}

// Save in db
func (l *LotRule) Save(ctx context.Context, symbol string, rule models.LotRule) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.SaveLotRule: %w", err)
		}
	}()

	return l.db.RunMaster(ctx,
		func(ctxTx context.Context, tx db.Transaction) error {
			_, err := tx.Exec(ctxTx, upsertSQL, symbol, rule.Step.String(), rule.MinQty.String())
			return err
		})
}
