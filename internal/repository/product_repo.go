package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const productColumns = `id, sku, name, description, category, price, image_url, created_at, updated_at`

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.Price,
		&product.ImageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// productWriteError translates constraint violations raised by INSERT and UPDATE.
func (r *postgresProductRepository) productWriteError(product *domain.Product, op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			r.log.Warnf("Repository: Duplicate SKU '%s' for product '%s'", product.SKU, product.Name)
			return fmt.Errorf("%w: product with sku '%s'", domain.ErrConflict, product.SKU)
		case "23514":
			r.log.Warnf("Repository: Check constraint violation for product '%s': %s", product.Name, pqErr.Message)
			return fmt.Errorf("%w: product data constraint violation: %s", domain.ErrValidation, pqErr.Message)
		}
	}
	r.log.Errorf("Repository: Failed to %s product '%s': %v", op, product.Name, err)
	return fmt.Errorf("%w: could not %s product: %w", domain.ErrPersistence, op, err)
}

func (r *postgresProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
        INSERT INTO products (id, sku, name, description, category, price, image_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		product.ID, product.SKU, product.Name, product.Description, product.Category, product.Price, product.ImageURL,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return r.productWriteError(product, "create", err)
	}
	r.log.Infof("Repository: Product created successfully with ID: %s, Name: %s", product.ID, product.Name)
	return nil
}

func (r *postgresProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %s not found", id)
			return nil, fmt.Errorf("%w: product with id %s", domain.ErrNotFound, id)
		}
		r.log.Errorf("Repository: Failed to get product by ID %s: %v", id, err)
		return nil, fmt.Errorf("%w: could not get product by id: %w", domain.ErrPersistence, err)
	}
	r.log.Debugf("Repository: Product retrieved successfully with ID: %s", id)
	return product, nil
}

func (r *postgresProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
        UPDATE products
        SET name = $2, description = $3, category = $4, price = $5, image_url = $6, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		product.ID, product.Name, product.Description, product.Category, product.Price, product.ImageURL,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %s not found for update", product.ID)
			return fmt.Errorf("%w: product with id %s", domain.ErrNotFound, product.ID)
		}
		return r.productWriteError(product, "update", err)
	}
	r.log.Infof("Repository: Product with ID %s updated successfully", product.ID)
	return nil
}

func (r *postgresProductRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete product with ID %s: %v", id, err)
		return fmt.Errorf("%w: could not delete product: %w", domain.ErrPersistence, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after deleting product ID %s: %v", id, err)
		return fmt.Errorf("%w: could not confirm product deletion: %w", domain.ErrPersistence, err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Product with ID %s not found for deletion", id)
		return fmt.Errorf("%w: product with id %s", domain.ErrNotFound, id)
	}

	r.log.Infof("Repository: Product with ID %s deleted successfully", id)
	return nil
}

func (r *postgresProductRepository) List(ctx context.Context, category string, limit, offset int) ([]domain.Product, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + productColumns + ` FROM products`)
	args := []interface{}{}
	if category != "" {
		args = append(args, category)
		sb.WriteString(` WHERE LOWER(category) = LOWER($1)`)
	}
	args = append(args, limit, offset)
	sb.WriteString(fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to list products (category '%s'): %v", category, err)
		return nil, fmt.Errorf("%w: could not list products: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.log.Errorf("Repository: Failed to scan product row: %v", err)
			return nil, fmt.Errorf("%w: error scanning product data: %w", domain.ErrPersistence, err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during product list iteration: %v", err)
		return nil, fmt.Errorf("%w: error iterating products: %w", domain.ErrPersistence, err)
	}

	r.log.Infof("Repository: Retrieved %d products (category '%s', limit %d, offset %d)", len(products), category, limit, offset)
	return products, nil
}
