package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository sobre PostgreSQL
// (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, sku, name, category, unit_of_measure, price, reorder_level, quantity, is_active, created_at, updated_at`

// Create persiste un producto. Devuelve ErrDuplicate si el SKU ya existe.
func (r *ProductRepo) Create(product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		product.ID, product.SKU, product.Name, product.Category, product.UnitOfMeasure,
		product.Price, product.ReorderLevel, product.Quantity, product.IsActive,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. Devuelve ErrNotFound si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.getBy("id", id)
}

// GetBySKU obtiene un producto por su SKU. Devuelve ErrNotFound si no existe.
func (r *ProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	return r.getBy("sku", sku)
}

func (r *ProductRepo) getBy(column, value string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE ` + column + ` = $1`
	var p entity.Product
	err := r.q.QueryRow(context.Background(), query, value).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Category, &p.UnitOfMeasure,
		&p.Price, &p.ReorderLevel, &p.Quantity, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Update actualiza un producto existente.
func (r *ProductRepo) Update(product *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, name = $3, category = $4, unit_of_measure = $5,
			price = $6, reorder_level = $7, is_active = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		product.ID, product.SKU, product.Name, product.Category, product.UnitOfMeasure,
		product.Price, product.ReorderLevel, product.IsActive, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddQuantity suma delta (puede ser negativo) al total desnormalizado.
// Se llama dentro de la misma tx que actualiza inventory_records.
func (r *ProductRepo) AddQuantity(productID string, delta int64) error {
	query := `UPDATE products SET quantity = quantity + $2, updated_at = now() WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query, productID, delta)
	if err != nil {
		return fmt.Errorf("add product quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos con búsqueda opcional por nombre o SKU.
func (r *ProductRepo) List(search string, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + ` FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%')
		ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.UnitOfMeasure,
			&p.Price, &p.ReorderLevel, &p.Quantity, &p.IsActive,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(id string) error {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
