package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const orderColumns = `
        id, owner_email, total_amount,
        ship_name, ship_street, ship_city, ship_region, ship_postal_code, ship_phone,
        payment_method, payment_status, fulfillment_status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.OwnerEmail,
		&order.TotalAmount,
		&order.ShippingAddress.Name,
		&order.ShippingAddress.Street,
		&order.ShippingAddress.City,
		&order.ShippingAddress.Region,
		&order.ShippingAddress.PostalCode,
		&order.ShippingAddress.Phone,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.FulfillmentStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *postgresOrderRepository) Create(ctx context.Context, order *domain.Order) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Repository: Failed to begin transaction: %v", err)
		return fmt.Errorf("%w: could not start transaction: %w", domain.ErrPersistence, err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Repository: Recovered from panic, rolling back transaction")
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			r.log.Warnf("Repository: Rolling back transaction due to error: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Repository: Failed to rollback transaction: %v", rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			r.log.Errorf("Repository: Failed to commit transaction: %v", cErr)
			err = fmt.Errorf("%w: failed to commit transaction: %w", domain.ErrPersistence, cErr)
		}
	}()

	orderQuery := `
        INSERT INTO orders (
            id, owner_email, total_amount,
            ship_name, ship_street, ship_city, ship_region, ship_postal_code, ship_phone,
            payment_method, payment_status, fulfillment_status
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING created_at, updated_at
    `
	addr := order.ShippingAddress
	err = tx.QueryRowContext(ctx, orderQuery,
		order.ID, order.OwnerEmail, order.TotalAmount,
		addr.Name, addr.Street, addr.City, addr.Region, addr.PostalCode, addr.Phone,
		order.PaymentMethod, order.PaymentStatus, order.FulfillmentStatus,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to insert order %s for %s: %v", order.ID, order.OwnerEmail, err)
		return fmt.Errorf("%w: could not create order entry: %w", domain.ErrPersistence, err)
	}

	itemQuery := `
        INSERT INTO order_items (order_id, position, product_ref, name, quantity, unit_price, image_ref)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	stmt, err := tx.PrepareContext(ctx, itemQuery)
	if err != nil {
		r.log.Errorf("Repository: Failed to prepare order item statement: %v", err)
		return fmt.Errorf("%w: could not prepare item statement: %w", domain.ErrPersistence, err)
	}
	defer stmt.Close()

	for i, item := range order.Items {
		_, err = stmt.ExecContext(ctx, order.ID, i, item.ProductRef, item.Name, item.Quantity, item.UnitPrice, item.ImageRef)
		if err != nil {
			r.log.Errorf("Repository: Failed to insert order item %d (product %s) for order %s: %v", i, item.ProductRef, order.ID, err)
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23514" {
				return fmt.Errorf("%w: invalid item data (product %s): %s", domain.ErrValidation, item.ProductRef, pqErr.Message)
			}
			return fmt.Errorf("%w: could not create order item (product %s): %w", domain.ErrPersistence, item.ProductRef, err)
		}
	}

	r.log.Infof("Repository: Order %s created with %d items", order.ID, len(order.Items))
	return nil
}

func (r *postgresOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT` + orderColumns + `
        FROM orders
        WHERE id = $1
    `
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Order with ID %s not found", id)
			return nil, fmt.Errorf("%w: order with id %s", domain.ErrNotFound, id)
		}
		r.log.Errorf("Repository: Failed to get order by ID %s: %v", id, err)
		return nil, fmt.Errorf("%w: could not retrieve order: %w", domain.ErrPersistence, err)
	}

	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	r.log.Debugf("Repository: Order %s retrieved with %d items", order.ID, len(order.Items))
	return order, nil
}

func (r *postgresOrderRepository) ListByOwner(ctx context.Context, ownerEmail string, limit, offset int) ([]domain.Order, error) {
	query := `SELECT` + orderColumns + `
        FROM orders
        WHERE owner_email = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	orders, err := r.listOrders(ctx, query, ownerEmail, limit, offset)
	if err != nil {
		r.log.Errorf("Repository: Failed to list orders for %s: %v", ownerEmail, err)
		return nil, err
	}
	r.log.Infof("Repository: Retrieved %d orders for %s (limit %d, offset %d)", len(orders), ownerEmail, limit, offset)
	return orders, nil
}

func (r *postgresOrderRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	query := `SELECT` + orderColumns + `
        FROM orders
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2
    `
	orders, err := r.listOrders(ctx, query, limit, offset)
	if err != nil {
		r.log.Errorf("Repository: Failed to list all orders: %v", err)
		return nil, err
	}
	r.log.Infof("Repository: Retrieved %d orders (limit %d, offset %d)", len(orders), limit, offset)
	return orders, nil
}

func (r *postgresOrderRepository) listOrders(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: could not retrieve orders: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var refs []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: error scanning order data: %w", domain.ErrPersistence, err)
		}
		refs = append(refs, order)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating orders: %w", domain.ErrPersistence, err)
	}

	if len(refs) == 0 {
		return []domain.Order{}, nil
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(refs))
	for _, order := range refs {
		orders = append(orders, *order)
	}
	return orders, nil
}

// attachItems loads the line items of all given orders with a single query.
func (r *postgresOrderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
		byID[order.ID] = order
		order.Items = []domain.LineItem{}
	}

	itemsQuery := `
        SELECT order_id, product_ref, name, quantity, unit_price, image_ref
        FROM order_items
        WHERE order_id = ANY($1)
        ORDER BY order_id, position
    `
	rows, err := r.db.QueryContext(ctx, itemsQuery, pq.Array(ids))
	if err != nil {
		r.log.Errorf("Repository: Failed to query items for orders %v: %v", ids, err)
		return fmt.Errorf("%w: could not retrieve order items: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var item domain.LineItem
		if err := rows.Scan(&orderID, &item.ProductRef, &item.Name, &item.Quantity, &item.UnitPrice, &item.ImageRef); err != nil {
			r.log.Errorf("Repository: Failed to scan order item row: %v", err)
			return fmt.Errorf("%w: error scanning order item: %w", domain.ErrPersistence, err)
		}
		if order, ok := byID[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during order items iteration: %v", err)
		return fmt.Errorf("%w: error iterating order items: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (r *postgresOrderRepository) MarkPaid(ctx context.Context, id string) (*domain.Order, error) {
	query := `
        UPDATE orders
        SET payment_status = $2, fulfillment_status = $3, updated_at = NOW()
        WHERE id = $1
        RETURNING` + orderColumns
	order, err := r.updateOne(ctx, query, id, domain.PaymentPaid, domain.FulfillmentConfirmed)
	if err != nil {
		return nil, err
	}
	r.log.Infof("Repository: Order %s marked as %s", id, domain.PaymentPaid)
	return order, nil
}

func (r *postgresOrderRepository) UpdateFulfillmentStatus(ctx context.Context, id string, status string) (*domain.Order, error) {
	query := `
        UPDATE orders
        SET fulfillment_status = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING` + orderColumns
	order, err := r.updateOne(ctx, query, id, status)
	if err != nil {
		return nil, err
	}
	r.log.Infof("Repository: Order %s fulfillment status set to '%s'", id, status)
	return order, nil
}

func (r *postgresOrderRepository) updateOne(ctx context.Context, query string, id string, args ...interface{}) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, append([]interface{}{id}, args...)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Order with ID %s not found for update", id)
			return nil, fmt.Errorf("%w: order with id %s", domain.ErrNotFound, id)
		}
		r.log.Errorf("Repository: Failed to update order %s: %v", id, err)
		return nil, fmt.Errorf("%w: could not update order: %w", domain.ErrPersistence, err)
	}
	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}
