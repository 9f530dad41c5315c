package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avolut/retail-stock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Save(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (
			id, product_id, quantity, reserved_for, reserved_for_type,
			expires_at, created_at
		)
		VALUES (
			:id, :product_id, :quantity, :reserved_for, :reserved_for_type,
			:expires_at, :created_at
		)
	`
	_, err := r.DB.NamedExecContext(ctx, query, res)
	return err
}

func (r *PGRepository) Update(ctx context.Context, res *model.Reservation) error {
	query := `
		UPDATE reservations SET
			product_id = :product_id,
			quantity = :quantity,
			reserved_for = :reserved_for,
			reserved_for_type = :reserved_for_type,
			expires_at = :expires_at
		WHERE id = :id
	`
	result, err := r.DB.NamedExecContext(ctx, query, res)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	var res model.Reservation
	err := r.DB.GetContext(ctx, &res, `SELECT * FROM reservations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGRepository) FindByProduct(ctx context.Context, productID string) ([]model.Reservation, error) {
	var items []model.Reservation
	err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM reservations WHERE product_id = $1 ORDER BY created_at ASC`, productID)
	return items, err
}

func (r *PGRepository) FindByReservedFor(ctx context.Context, reservedFor string, forType model.ReservedForType) ([]model.Reservation, error) {
	var items []model.Reservation
	err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM reservations WHERE reserved_for = $1 AND reserved_for_type = $2`,
		reservedFor, forType)
	return items, err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	return err
}

func (r *PGRepository) SumActiveByProduct(ctx context.Context, productID string, referenceDate time.Time) (int64, error) {
	var sum int64
	err := r.DB.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(quantity), 0) FROM reservations
		WHERE product_id = $1 AND (expires_at IS NULL OR expires_at >= $2)
	`, productID, referenceDate)
	return sum, err
}

func (r *PGRepository) FindExpired(ctx context.Context, referenceDate time.Time, limit int) ([]model.Reservation, error) {
	var items []model.Reservation
	err := r.DB.SelectContext(ctx, &items, `
		SELECT * FROM reservations
		WHERE expires_at IS NOT NULL AND expires_at < $1
		ORDER BY expires_at ASC
		LIMIT $2
	`, referenceDate, limit)
	return items, err
}
