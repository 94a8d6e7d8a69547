package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"inventory-service/internal/models"
	"inventory-service/internal/util"
)

// ApplyStockDelta applies a signed quantity (already in the material's
// canonical unit) to a raw material and appends the movement row, all inside
// one transaction with a row lock on the material. Deductions clamp at zero;
// the recorded quantity is the applied delta, so
// new_stock = previous_stock + quantity always holds on the movement row.
//
// This is the only writer of raw_materials.current_stock.
func (s *Store) ApplyStockDelta(ctx context.Context, materialID int64, delta decimal.Decimal, movementType, reason string, cloverOrderID *string) (*models.StockMovement, error) {
	ctx, span := util.StartSpan(ctx, "Store.ApplyStockDelta")
	defer span.End()

	start := time.Now()
	defer func() {
		util.LedgerApplyLatency.Observe(time.Since(start).Seconds())
	}()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var current decimal.Decimal
	err = tx.GetContext(ctx, &current,
		"SELECT current_stock FROM raw_materials WHERE id = $1 FOR UPDATE", materialID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("raw material not found: %d", materialID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock raw material %d: %w", materialID, err)
	}

	newStock := current.Add(delta)
	if newStock.IsNegative() {
		newStock = decimal.Zero
	}
	applied := newStock.Sub(current)

	_, err = tx.ExecContext(ctx,
		"UPDATE raw_materials SET current_stock = $1, updated_at = NOW() WHERE id = $2",
		newStock, materialID)
	if err != nil {
		return nil, fmt.Errorf("failed to update stock for material %d: %w", materialID, err)
	}

	var orderID sql.NullString
	if cloverOrderID != nil {
		orderID = sql.NullString{String: *cloverOrderID, Valid: true}
	}

	movement := &models.StockMovement{
		RawMaterialID: materialID,
		MovementType:  movementType,
		Quantity:      applied,
		PreviousStock: current,
		NewStock:      newStock,
		Reason:        reason,
		CloverOrderID: orderID,
	}

	query := `
		INSERT INTO stock_movements
			(raw_material_id, movement_type, quantity, previous_stock, new_stock, reason, clover_order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	row := tx.QueryRowxContext(ctx, query,
		movement.RawMaterialID, movement.MovementType, movement.Quantity,
		movement.PreviousStock, movement.NewStock, movement.Reason, movement.CloverOrderID)
	if err := row.Scan(&movement.ID, &movement.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to write stock movement for material %d: %w", materialID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stock delta for material %d: %w", materialID, err)
	}

	util.StockMovementsTotal.WithLabelValues(movementType).Inc()
	return movement, nil
}

// GetStockMovements retrieves the most recent movements for a material
func (s *Store) GetStockMovements(ctx context.Context, materialID int64, limit int) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := s.db.SelectContext(ctx, &movements,
		"SELECT * FROM stock_movements WHERE raw_material_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2",
		materialID, limit)
	return movements, err
}

// GetStockMovementsByOrderID retrieves every movement a Clover order caused
func (s *Store) GetStockMovementsByOrderID(ctx context.Context, cloverOrderID string) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	err := s.db.SelectContext(ctx, &movements,
		"SELECT * FROM stock_movements WHERE clover_order_id = $1 ORDER BY id", cloverOrderID)
	return movements, err
}
