package domain

import (
	"context"
	"time"
)

type Cart struct {
	OwnerEmail string     `json:"user_email"`
	Items      []LineItem `json:"items"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CartRepository interface {
	Get(ctx context.Context, ownerEmail string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, ownerEmail string) error
}

type CartUseCase interface {
	GetCart(ctx context.Context, caller Identity) (*Cart, error)
	SaveCart(ctx context.Context, caller Identity, items []LineItem) (*Cart, error)
	ClearCart(ctx context.Context, caller Identity) error
}
