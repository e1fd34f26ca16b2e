// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"tradelink/internal/core/entity"
	"tradelink/internal/core/id"
	"tradelink/internal/core/types"
	"tradelink/internal/domain/registers/inventory"
	"tradelink/internal/infrastructure/storage/postgres"
)

const (
	inventoryMovementsTable = "reg_inventory_movements"
	inventoryBalancesTable  = "reg_inventory_balances"
)

var movementCols = []string{
	"line_id", "recorder_id", "recorder_type", "recorder_version",
	"period", "created_at",
	"product_id", "pool", "movement_type", "qty_delta",
}

// InventoryRepo implements inventory.Repository.
// The movements table is the source of truth; the balances table is a
// materialized running sum per (product, pool), kept in step inside the
// same transaction as every movement write.
type InventoryRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewInventoryRepo creates a new inventory register repository.
func NewInventoryRepo(txManager *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateMovements batch inserts movements and applies their deltas to
// the balance table.
func (r *InventoryRepo) CreateMovements(ctx context.Context, movements []entity.InventoryMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, m.CreatedAt,
				m.ProductID, m.Pool, m.MovementType, m.QtyDelta,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, inventoryMovementsTable, movementCols, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return r.applyBalanceDeltas(ctx, movements, 1)
	}

	// Fallback: non-transactional insert (slower). Prefer calling CreateMovements within tx.
	q := r.builder.Insert(inventoryMovementsTable).Columns(movementCols...)
	for _, m := range movements {
		q = q.Values(
			m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
			m.Period, m.CreatedAt,
			m.ProductID, m.Pool, m.MovementType, m.QtyDelta,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return r.applyBalanceDeltas(ctx, movements, 1)
}

// applyBalanceDeltas shifts the balance table by sign * each movement delta.
func (r *InventoryRepo) applyBalanceDeltas(ctx context.Context, movements []entity.InventoryMovement, sign int64) error {
	// Aggregate per (product, pool) to keep the upsert count small.
	type key struct {
		productID id.ID
		pool      entity.StockPool
	}
	deltas := make(map[key]int64)
	lastAt := make(map[key]time.Time)
	for _, m := range movements {
		k := key{m.ProductID, m.Pool}
		deltas[k] += sign * m.QtyDelta.Int64()
		if m.Period.After(lastAt[k]) {
			lastAt[k] = m.Period
		}
	}

	sql := `
		INSERT INTO reg_inventory_balances (product_id, pool, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (product_id, pool) DO UPDATE SET
			quantity = reg_inventory_balances.quantity + EXCLUDED.quantity,
			last_movement_at = GREATEST(reg_inventory_balances.last_movement_at, EXCLUDED.last_movement_at),
			updated_at = NOW()
	`

	querier := r.txManager.GetQuerier(ctx)
	for k, delta := range deltas {
		if delta == 0 {
			continue
		}
		if _, err := querier.Exec(ctx, sql, k.productID, k.pool, delta, lastAt[k]); err != nil {
			return fmt.Errorf("upsert balance: %w", err)
		}
	}

	return nil
}

// DeleteMovementsByRecorder removes movements for a document and
// reverses their balance deltas. beforeVersion <= 0 removes all versions.
func (r *InventoryRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	q := r.builder.Delete(inventoryMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		Suffix("RETURNING " + "line_id, recorder_id, recorder_type, recorder_version, period, created_at, product_id, pool, movement_type, qty_delta")

	if beforeVersion > 0 {
		q = q.Where(squirrel.Lt{"recorder_version": beforeVersion})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	var deleted []entity.InventoryMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &deleted, sql, args...); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	return r.applyBalanceDeltas(ctx, deleted, -1)
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *InventoryRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.InventoryMovement, error) {
	q := r.builder.Select(movementCols...).
		From(inventoryMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.InventoryMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetBalance returns current balance for product+pool.
func (r *InventoryRepo) GetBalance(ctx context.Context, productID id.ID, pool entity.StockPool) (entity.StockBalance, error) {
	return r.getBalance(ctx, productID, pool, false)
}

// GetBalanceForUpdate returns balance with pessimistic lock.
func (r *InventoryRepo) GetBalanceForUpdate(ctx context.Context, productID id.ID, pool entity.StockPool) (entity.StockBalance, error) {
	return r.getBalance(ctx, productID, pool, true)
}

func (r *InventoryRepo) getBalance(ctx context.Context, productID id.ID, pool entity.StockPool, lock bool) (entity.StockBalance, error) {
	var balance entity.StockBalance

	q := r.builder.Select(
		"product_id", "pool", "quantity", "last_movement_at", "updated_at",
	).From(inventoryBalancesTable).
		Where(squirrel.Eq{"product_id": productID, "pool": pool}).
		Limit(1)

	if lock {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.StockBalance{
				ProductID: productID,
				Pool:      pool,
				Quantity:  0,
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalancesByProduct returns both pool balances for a product.
func (r *InventoryRepo) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error) {
	q := r.builder.Select(
		"product_id", "pool", "quantity", "last_movement_at", "updated_at",
	).From(inventoryBalancesTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("pool")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// ListBalances returns balances across products.
func (r *InventoryRepo) ListBalances(ctx context.Context, f inventory.BalanceFilter) ([]entity.StockBalance, error) {
	q := r.builder.Select(
		"product_id", "pool", "quantity", "last_movement_at", "updated_at",
	).From(inventoryBalancesTable)

	if len(f.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": f.ProductIDs})
	}
	if f.Pool != nil {
		q = q.Where(squirrel.Eq{"pool": *f.Pool})
	}
	if f.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}

	q = q.OrderBy("product_id", "pool")

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetBalanceAtDate calculates the balance as of a date from the ledger.
func (r *InventoryRepo) GetBalanceAtDate(ctx context.Context, productID id.ID, pool entity.StockPool, date time.Time) (types.Pieces, error) {
	sql := `
		SELECT COALESCE(SUM(qty_delta), 0)
		FROM reg_inventory_movements
		WHERE product_id = $1
		  AND pool = $2
		  AND period <= $3
	`

	var balance int64
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, productID, pool, date).Scan(&balance)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("calculate balance at date: %w", err)
	}

	return types.Pieces(balance), nil
}

// GetMovementHistory returns movement history for a product.
func (r *InventoryRepo) GetMovementHistory(ctx context.Context, productID id.ID, f inventory.MovementFilter) ([]entity.InventoryMovement, error) {
	q := r.builder.Select(movementCols...).
		From(inventoryMovementsTable).
		Where(squirrel.Eq{"product_id": productID})

	if f.Pool != nil {
		q = q.Where(squirrel.Eq{"pool": *f.Pool})
	}
	if f.MovementType != nil {
		q = q.Where(squirrel.Eq{"movement_type": *f.MovementType})
	}
	if f.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *f.FromDate})
	}
	if f.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *f.ToDate})
	}

	q = q.OrderBy("period DESC", "created_at DESC")

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.InventoryMovement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return movements, nil
}

// GetTurnover calculates inflow and outflow totals for a period.
func (r *InventoryRepo) GetTurnover(ctx context.Context, f inventory.TurnoverFilter) (inventory.Turnover, error) {
	result := inventory.Turnover{Pool: f.Pool}

	args := []any{f.Pool, f.FromDate, f.ToDate}
	conditions := "pool = $1 AND period >= $2 AND period < $3"
	if f.ProductID != nil {
		conditions += " AND product_id = $4"
		args = append(args, *f.ProductID)
		result.ProductID = *f.ProductID
	}

	sql := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN qty_delta > 0 THEN qty_delta ELSE 0 END), 0) AS inflow,
			COALESCE(SUM(CASE WHEN qty_delta < 0 THEN -qty_delta ELSE 0 END), 0) AS outflow
		FROM reg_inventory_movements
		WHERE %s
	`, conditions)

	querier := r.txManager.GetQuerier(ctx)
	var inflow, outflow int64
	err := querier.QueryRow(ctx, sql, args...).Scan(&inflow, &outflow)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate turnover: %w", err)
	}
	result.Inflow = types.Pieces(inflow)
	result.Outflow = types.Pieces(outflow)

	// Opening balance is everything before the period start.
	openingArgs := []any{f.Pool, f.FromDate}
	openingConditions := "pool = $1 AND period < $2"
	if f.ProductID != nil {
		openingConditions += " AND product_id = $3"
		openingArgs = append(openingArgs, *f.ProductID)
	}

	openingSQL := fmt.Sprintf(`
		SELECT COALESCE(SUM(qty_delta), 0)
		FROM reg_inventory_movements
		WHERE %s
	`, openingConditions)

	var opening int64
	err = querier.QueryRow(ctx, openingSQL, openingArgs...).Scan(&opening)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate opening balance: %w", err)
	}
	result.OpeningBalance = types.Pieces(opening)
	result.ClosingBalance = result.OpeningBalance + result.Inflow - result.Outflow

	return result, nil
}

// RecalculateBalances rebuilds the balance table from movements.
// productID nil rebuilds everything.
func (r *InventoryRepo) RecalculateBalances(ctx context.Context, productID *id.ID) error {
	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := r.txManager.GetQuerier(ctx)

		delSQL := "DELETE FROM reg_inventory_balances"
		rebuildSQL := `
			INSERT INTO reg_inventory_balances (product_id, pool, quantity, last_movement_at, updated_at)
			SELECT product_id, pool, SUM(qty_delta), MAX(period), NOW()
			FROM reg_inventory_movements
			GROUP BY product_id, pool
		`
		var args []any

		if productID != nil {
			delSQL += " WHERE product_id = $1"
			rebuildSQL = `
				INSERT INTO reg_inventory_balances (product_id, pool, quantity, last_movement_at, updated_at)
				SELECT product_id, pool, SUM(qty_delta), MAX(period), NOW()
				FROM reg_inventory_movements
				WHERE product_id = $1
				GROUP BY product_id, pool
			`
			args = append(args, *productID)
		}

		if _, err := querier.Exec(ctx, delSQL, args...); err != nil {
			return fmt.Errorf("clear balances: %w", err)
		}
		if _, err := querier.Exec(ctx, rebuildSQL, args...); err != nil {
			return fmt.Errorf("rebuild balances: %w", err)
		}
		return nil
	})
}

// Ensure interface compliance.
var _ inventory.Repository = (*InventoryRepo)(nil)
