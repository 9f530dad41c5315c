package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avolut/retail-stock-service/internal/ledger/dto"
	"github.com/avolut/retail-stock-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertMovementQuery = `
	INSERT INTO stock_movements (
		id, product_id, quantity_change, reason, performed_by,
		location_id, batch_id, reference_id, notes, created_at
	)
	VALUES (
		:id, :product_id, :quantity_change, :reason, :performed_by,
		:location_id, :batch_id, :reference_id, :notes, :created_at
	)
`

func (r *PGRepository) Append(ctx context.Context, m *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := applyMovement(ctx, tx, m); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PGRepository) AppendPair(ctx context.Context, out, in *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := applyMovement(ctx, tx, out); err != nil {
		return err
	}
	if err := applyMovement(ctx, tx, in); err != nil {
		return err
	}

	return tx.Commit()
}

// applyMovement inserts the ledger row and moves the on-hand counter (and
// linked batch) by the same delta. The decrement guard runs inside the
// transaction, so a sufficiency check done against a stale snapshot is
// re-validated at commit time.
func applyMovement(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error {
	if m.QuantityChange < 0 {
		res, err := tx.ExecContext(ctx, `
			UPDATE stock_levels
			SET on_hand = on_hand - $1, updated_at = $2
			WHERE product_id = $3 AND location_id = $4 AND on_hand >= $1
		`, -m.QuantityChange, m.CreatedAt, m.ProductID, m.LocationID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock level: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: product %s at location %s", model.ErrInsufficientStock, m.ProductID, m.LocationID)
		}
	} else {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stock_levels (product_id, location_id, on_hand, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (product_id, location_id)
			DO UPDATE SET on_hand = stock_levels.on_hand + EXCLUDED.on_hand, updated_at = EXCLUDED.updated_at
		`, m.ProductID, m.LocationID, m.QuantityChange, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to increment stock level: %w", err)
		}
	}

	if m.BatchID != nil {
		res, err := tx.ExecContext(ctx, `
			UPDATE stock_batches
			SET quantity = quantity + $1
			WHERE id = $2 AND quantity + $1 >= 0
		`, m.QuantityChange, *m.BatchID)
		if err != nil {
			return fmt.Errorf("failed to adjust batch quantity: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: batch %s cannot absorb delta %d", model.ErrInvalidQuantity, *m.BatchID, m.QuantityChange)
		}
	}

	if _, err := tx.NamedExecContext(ctx, insertMovementQuery, m); err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.StockMovement, error) {
	var m model.StockMovement
	err := r.DB.GetContext(ctx, &m, `SELECT * FROM stock_movements WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *PGRepository) FindByReference(ctx context.Context, referenceID string) ([]model.StockMovement, error) {
	var items []model.StockMovement
	err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM stock_movements WHERE reference_id = $1 ORDER BY created_at ASC`, referenceID)
	return items, err
}

func (r *PGRepository) Search(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LocationID != "" {
		conditions = append(conditions, "location_id = :location_id")
		args["location_id"] = f.LocationID
	}
	if f.Reason != "" {
		conditions = append(conditions, "reason = :reason")
		args["reason"] = f.Reason
	}
	if f.BatchID != "" {
		conditions = append(conditions, "batch_id = :batch_id")
		args["batch_id"] = f.BatchID
	}
	if f.ReferenceID != "" {
		conditions = append(conditions, "reference_id = :reference_id")
		args["reference_id"] = f.ReferenceID
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "notes ILIKE :search_query")
		args["search_query"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_movements" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM stock_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, f.Offset())
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) SumQuantity(ctx context.Context, productID string, locationID *string) (int64, error) {
	var sum int64
	query := `SELECT COALESCE(SUM(quantity_change), 0) FROM stock_movements WHERE product_id = $1`
	args := []interface{}{productID}

	if locationID != nil && *locationID != "" {
		query += ` AND location_id = $2`
		args = append(args, *locationID)
	}

	err := r.DB.GetContext(ctx, &sum, query, args...)
	return sum, err
}

func (r *PGRepository) GetOnHand(ctx context.Context, productID, locationID string) (int64, error) {
	var onHand int64
	err := r.DB.GetContext(ctx, &onHand,
		`SELECT on_hand FROM stock_levels WHERE product_id = $1 AND location_id = $2`,
		productID, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil // No level row yet means nothing has been received
		}
		return 0, err
	}
	return onHand, nil
}

// ListLowStock gates on available stock: units held by reservations active
// at referenceDate cannot be sold, so they don't count toward the threshold.
func (r *PGRepository) ListLowStock(ctx context.Context, referenceDate time.Time, page, pageSize int) ([]dto.LowStockItem, int, error) {
	var items []dto.LowStockItem
	var count int

	whereClause := `
		FROM stock_levels sl
		JOIN products p ON p.id = sl.product_id
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS reserved
			FROM reservations
			WHERE expires_at IS NULL OR expires_at >= $1
			GROUP BY product_id
		) res ON res.product_id = sl.product_id
		WHERE p.stock_tracked AND p.reorder_threshold IS NOT NULL
		  AND GREATEST(sl.on_hand - COALESCE(res.reserved, 0), 0) <= p.reorder_threshold
	`

	if err := r.DB.GetContext(ctx, &count, "SELECT count(*) "+whereClause, referenceDate); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT sl.product_id, sl.location_id, sl.on_hand,
			GREATEST(sl.on_hand - COALESCE(res.reserved, 0), 0) AS available,
			p.reorder_threshold
	` + whereClause + ` ORDER BY available ASC`
	if pageSize > 0 {
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, (page-1)*pageSize)
	}

	err := r.DB.SelectContext(ctx, &items, query, referenceDate)
	return items, count, err
}
