package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is idempotent and applied by Migrate on every `migrate` run and on `serve` startup.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT        NOT NULL,
    email         TEXT        NOT NULL UNIQUE,
    password_hash TEXT        NOT NULL,
    role          TEXT        NOT NULL DEFAULT 'USER' CHECK (role IN ('USER', 'ADMIN')),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
    id          TEXT PRIMARY KEY,
    sku         TEXT          NOT NULL UNIQUE,
    name        TEXT          NOT NULL,
    description TEXT          NOT NULL DEFAULT '',
    category    TEXT          NOT NULL DEFAULT '',
    price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
    image_url   TEXT          NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

CREATE TABLE IF NOT EXISTS orders (
    id                 TEXT PRIMARY KEY,
    owner_email        TEXT          NOT NULL,
    total_amount       NUMERIC(12,2) NOT NULL CHECK (total_amount >= 0),
    ship_name          TEXT          NOT NULL,
    ship_street        TEXT          NOT NULL,
    ship_city          TEXT          NOT NULL,
    ship_region        TEXT          NOT NULL DEFAULT '',
    ship_postal_code   TEXT          NOT NULL,
    ship_phone         TEXT          NOT NULL DEFAULT '',
    payment_method     TEXT          NOT NULL CHECK (payment_method IN ('COD', 'ONLINE')),
    payment_status     TEXT          NOT NULL CHECK (payment_status IN ('PENDING', 'PAID')),
    fulfillment_status TEXT          NOT NULL,
    created_at         TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ   NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_orders_owner_created ON orders(owner_email, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at DESC);

CREATE TABLE IF NOT EXISTS order_items (
    order_id    TEXT          NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    position    INTEGER       NOT NULL,
    product_ref TEXT          NOT NULL,
    name        TEXT          NOT NULL DEFAULT '',
    quantity    INTEGER       NOT NULL CHECK (quantity > 0),
    unit_price  NUMERIC(12,2) NOT NULL CHECK (unit_price >= 0),
    image_ref   TEXT          NOT NULL DEFAULT '',
    PRIMARY KEY (order_id, position)
);

CREATE TABLE IF NOT EXISTS carts (
    owner_email TEXT PRIMARY KEY,
    items       JSONB       NOT NULL DEFAULT '[]',
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
