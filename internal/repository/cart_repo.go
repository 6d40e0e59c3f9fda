package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/sirupsen/logrus"
)

type postgresCartRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCartRepository(db *sql.DB, logger *logrus.Logger) domain.CartRepository {
	return &postgresCartRepository{
		db:  db,
		log: logger,
	}
}

// Get returns an empty cart when the caller has never saved one.
func (r *postgresCartRepository) Get(ctx context.Context, ownerEmail string) (*domain.Cart, error) {
	query := `SELECT items, updated_at FROM carts WHERE owner_email = $1`

	cart := &domain.Cart{OwnerEmail: ownerEmail, Items: []domain.LineItem{}}
	var raw []byte
	err := r.db.QueryRowContext(ctx, query, ownerEmail).Scan(&raw, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Debugf("Repository: No cart stored for %s", ownerEmail)
			return cart, nil
		}
		r.log.Errorf("Repository: Failed to get cart for %s: %v", ownerEmail, err)
		return nil, fmt.Errorf("%w: could not get cart: %w", domain.ErrPersistence, err)
	}

	if err := json.Unmarshal(raw, &cart.Items); err != nil {
		r.log.Errorf("Repository: Failed to decode cart items for %s: %v", ownerEmail, err)
		return nil, fmt.Errorf("%w: could not decode cart items: %w", domain.ErrPersistence, err)
	}
	return cart, nil
}

func (r *postgresCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	items := cart.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("could not encode cart items: %w", err)
	}

	query := `
        INSERT INTO carts (owner_email, items, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (owner_email) DO UPDATE
        SET items = EXCLUDED.items, updated_at = NOW()
        RETURNING updated_at`
	if err := r.db.QueryRowContext(ctx, query, cart.OwnerEmail, raw).Scan(&cart.UpdatedAt); err != nil {
		r.log.Errorf("Repository: Failed to save cart for %s: %v", cart.OwnerEmail, err)
		return fmt.Errorf("%w: could not save cart: %w", domain.ErrPersistence, err)
	}

	r.log.Infof("Repository: Cart for %s saved with %d items", cart.OwnerEmail, len(items))
	return nil
}

func (r *postgresCartRepository) Delete(ctx context.Context, ownerEmail string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE owner_email = $1`, ownerEmail); err != nil {
		r.log.Errorf("Repository: Failed to delete cart for %s: %v", ownerEmail, err)
		return fmt.Errorf("%w: could not delete cart: %w", domain.ErrPersistence, err)
	}
	r.log.Infof("Repository: Cart for %s cleared", ownerEmail)
	return nil
}
