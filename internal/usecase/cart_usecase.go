package usecase

import (
	"context"
	"fmt"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/sirupsen/logrus"
)

var _ domain.CartUseCase = (*cartUseCase)(nil)

type cartUseCase struct {
	cartRepo domain.CartRepository
	log      *logrus.Logger
}

func NewCartUseCase(repo domain.CartRepository, logger *logrus.Logger) domain.CartUseCase {
	return &cartUseCase{
		cartRepo: repo,
		log:      logger,
	}
}

func (uc *cartUseCase) GetCart(ctx context.Context, caller domain.Identity) (*domain.Cart, error) {
	if caller.Email == "" {
		return nil, fmt.Errorf("%w: caller identity is missing", domain.ErrUnauthenticated)
	}
	cart, err := uc.cartRepo.Get(ctx, caller.Email)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load cart for %s: %v", caller.Email, err)
		return nil, err
	}
	return cart, nil
}

// SaveCart replaces the caller's cart with items.
func (uc *cartUseCase) SaveCart(ctx context.Context, caller domain.Identity, items []domain.LineItem) (*domain.Cart, error) {
	if caller.Email == "" {
		return nil, fmt.Errorf("%w: caller identity is missing", domain.ErrUnauthenticated)
	}
	for i, item := range items {
		if err := item.Validate(i); err != nil {
			uc.log.Warnf("Use Case: Cart for %s rejected - %v", caller.Email, err)
			return nil, err
		}
	}
	if items == nil {
		items = []domain.LineItem{}
	}

	cart := &domain.Cart{OwnerEmail: caller.Email, Items: items}
	if err := uc.cartRepo.Save(ctx, cart); err != nil {
		uc.log.Errorf("Use Case: Failed to save cart for %s: %v", caller.Email, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Cart for %s saved with %d items", caller.Email, len(items))
	return cart, nil
}

func (uc *cartUseCase) ClearCart(ctx context.Context, caller domain.Identity) error {
	if caller.Email == "" {
		return fmt.Errorf("%w: caller identity is missing", domain.ErrUnauthenticated)
	}
	if err := uc.cartRepo.Delete(ctx, caller.Email); err != nil {
		uc.log.Errorf("Use Case: Failed to clear cart for %s: %v", caller.Email, err)
		return err
	}
	return nil
}
