package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avolut/retail-stock-service/internal/batch/dto"
	"github.com/avolut/retail-stock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// CreateOrIncrement relies on the partial unique index over
// (product_id, batch_number) WHERE batch_number IS NOT NULL: numbered lots
// merge on conflict, unbatched rows never collide and always insert.
func (r *PGRepository) CreateOrIncrement(ctx context.Context, params *dto.ReceiveBatchParams) (*model.StockBatch, error) {
	if params.BatchNumber == nil {
		query := `
			INSERT INTO stock_batches (id, product_id, batch_number, quantity, expiry_date, received_at)
			VALUES (:id, :product_id, :batch_number, :quantity, :expiry_date, :received_at)
		`
		if _, err := r.DB.NamedExecContext(ctx, query, params); err != nil {
			return nil, fmt.Errorf("failed to create unbatched lot: %w", err)
		}
		return r.FindByID(ctx, params.ID)
	}

	var id string
	err := r.DB.GetContext(ctx, &id, `
		INSERT INTO stock_batches (id, product_id, batch_number, quantity, expiry_date, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id, batch_number) WHERE batch_number IS NOT NULL
		DO UPDATE SET quantity = stock_batches.quantity + EXCLUDED.quantity
		RETURNING id
	`, params.ID, params.ProductID, *params.BatchNumber, params.Quantity, params.ExpiryDate, params.ReceivedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert batch: %w", err)
	}

	return r.FindByID(ctx, id)
}

func (r *PGRepository) AdjustQuantity(ctx context.Context, id string, delta int64) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE stock_batches
		SET quantity = quantity + $1
		WHERE id = $2 AND quantity + $1 >= 0
	`, delta, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: batch %s cannot absorb delta %d", model.ErrInvalidQuantity, id, delta)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.StockBatch, error) {
	var b model.StockBatch
	err := r.DB.GetContext(ctx, &b, `SELECT * FROM stock_batches WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGRepository) FindByProductAndBatch(ctx context.Context, productID, batchNumber string) (*model.StockBatch, error) {
	var b model.StockBatch
	err := r.DB.GetContext(ctx, &b,
		`SELECT * FROM stock_batches WHERE product_id = $1 AND batch_number = $2`,
		productID, batchNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGRepository) FindByProduct(ctx context.Context, productID string) ([]model.StockBatch, error) {
	var items []model.StockBatch
	err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM stock_batches WHERE product_id = $1 ORDER BY received_at ASC`, productID)
	return items, err
}
