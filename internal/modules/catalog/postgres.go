package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/georgemunganga/needsport-pos/internal/platform/apperror"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const productColumns = "id, name, category, price, stock, created_at, updated_at"

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, price, stock, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Name, p.Category, p.Price, p.Stock, p.CreatedAt, p.UpdatedAt)
	return apperror.Persistence(err, "insert product")
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	err := scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("product %s not found", id)
	}
	if err != nil {
		return nil, apperror.Persistence(err, "get product")
	}
	return p, nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]*Product, error) {
	q := psql.Select(productColumns).From("products").OrderBy("category", "name")
	if f.Category != "" {
		q = q.Where(squirrel.Eq{"category": string(f.Category)})
	}
	if f.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + escapeLike(f.Search) + "%"})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperror.Persistence(err, "list products")
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, apperror.Persistence(err, "scan product")
		}
		products = append(products, p)
	}
	return products, apperror.Persistence(rows.Err(), "list products")
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	res, err := psql.Update("products").
		SetMap(map[string]interface{}{
			"name":       p.Name,
			"category":   string(p.Category),
			"price":      p.Price,
			"stock":      p.Stock,
			"updated_at": p.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": p.ID.String()}).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return apperror.Persistence(err, "update product")
	}
	return expectOneRow(res, p.ID)
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return apperror.Persistence(err, "delete product")
	}
	return expectOneRow(res, id)
}

func (r *postgresRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	return DecrementStock(ctx, r.db, id, qty)
}

// DecrementStock removes qty units from a product's stock with a single
// compare-and-decrement statement, so it is safe against concurrent sales.
// runner may be a *sql.DB or an open *sql.Tx.
func DecrementStock(ctx context.Context, runner squirrel.BaseRunner, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return apperror.Validation("quantity must be greater than zero for product %s", id)
	}
	res, err := psql.Update("products").
		Set("stock", squirrel.Expr("stock - ?", qty)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id.String()}).
		Where(squirrel.GtOrEq{"stock": qty}).
		RunWith(runner).
		ExecContext(ctx)
	if err != nil {
		return apperror.Persistence(err, "decrement stock")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Persistence(err, "decrement stock")
	}
	if n == 1 {
		return nil
	}

	var name string
	var stock int
	err = psql.Select("name", "stock").From("products").
		Where(squirrel.Eq{"id": id.String()}).
		RunWith(runner).
		QueryRowContext(ctx).
		Scan(&name, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFound("product %s not found", id)
	}
	if err != nil {
		return apperror.Persistence(err, "read stock")
	}
	return apperror.StockExhausted("not enough stock for %s: requested %d, available %d", name, qty, stock)
}

func expectOneRow(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperror.Persistence(err, "rows affected")
	}
	if n == 0 {
		return apperror.NotFound("product %s not found", id)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
