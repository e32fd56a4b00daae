package pos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/georgemunganga/needsport-pos/internal/modules/catalog"
	"github.com/georgemunganga/needsport-pos/internal/platform/apperror"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// CommitSale inserts the sale, all its items and the stock decrements inside
// a single transaction.
func (r *postgresRepo) CommitSale(ctx context.Context, s *Sale) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Persistence(err, "begin sale transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, total, payment_method, items_count, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.Total, s.PaymentMethod, s.ItemsCount, s.CreatedAt)
	if err != nil {
		return apperror.Persistence(err, "insert sale")
	}

	sold := make(map[uuid.UUID]int)
	var order []uuid.UUID
	for _, item := range s.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items
			  (id, sale_id, product_id, product_name, quantity, unit_price, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, s.ID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPrice, item.Subtotal)
		if err != nil {
			return apperror.Persistence(err, "insert sale_item")
		}
		if _, seen := sold[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		sold[item.ProductID] += item.Quantity
	}

	for _, pid := range order {
		if err := catalog.DecrementStock(ctx, tx, pid, sold[pid]); err != nil {
			return err
		}
	}

	return apperror.Persistence(tx.Commit(), "commit sale")
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	s := &Sale{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, total, payment_method, items_count, created_at
		FROM sales WHERE id=$1`, id).
		Scan(&s.ID, &s.Total, &s.PaymentMethod, &s.ItemsCount, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("sale %s not found", id)
	}
	if err != nil {
		return nil, apperror.Persistence(err, "get sale")
	}
	s.Items, err = r.listItems(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) List(ctx context.Context, q SalesQuery) ([]*Sale, error) {
	sb := psql.Select("id", "total", "payment_method", "items_count", "created_at").
		From("sales").
		OrderBy("created_at DESC")
	if q.From != nil {
		sb = sb.Where(squirrel.GtOrEq{"created_at": *q.From})
	}
	if q.To != nil {
		sb = sb.Where(squirrel.Lt{"created_at": *q.To})
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.Persistence(err, "list sales")
	}
	defer rows.Close()

	sales := []*Sale{}
	for rows.Next() {
		s := &Sale{}
		if err := rows.Scan(&s.ID, &s.Total, &s.PaymentMethod, &s.ItemsCount, &s.CreatedAt); err != nil {
			return nil, apperror.Persistence(err, "scan sale")
		}
		sales = append(sales, s)
	}
	return sales, apperror.Persistence(rows.Err(), "list sales")
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) listItems(ctx context.Context, saleID uuid.UUID) ([]*SaleItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sale_id, product_id, product_name, quantity, unit_price, subtotal
		FROM sale_items WHERE sale_id=$1 ORDER BY product_name`, saleID)
	if err != nil {
		return nil, apperror.Persistence(err, "list sale_items")
	}
	defer rows.Close()

	var items []*SaleItem
	for rows.Next() {
		it := &SaleItem{}
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, apperror.Persistence(err, "scan sale_item")
		}
		items = append(items, it)
	}
	return items, apperror.Persistence(rows.Err(), "list sale_items")
}
