package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var _ domain.ProductUseCase = (*productUseCase)(nil)

type productUseCase struct {
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewProductUseCase(repo domain.ProductRepository, logger *logrus.Logger) domain.ProductUseCase {
	return &productUseCase{
		productRepo: repo,
		log:         logger,
	}
}

func validateProduct(product *domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: product name cannot be empty", domain.ErrValidation)
	}
	if strings.TrimSpace(product.SKU) == "" {
		return fmt.Errorf("%w: product sku cannot be empty", domain.ErrValidation)
	}
	if !product.Price.IsPositive() {
		return fmt.Errorf("%w: product price must be positive", domain.ErrValidation)
	}
	if reason := domain.CheckAmount(product.Price); reason != "" {
		return fmt.Errorf("%w: product price %s", domain.ErrValidation, reason)
	}
	return nil
}

func (uc *productUseCase) CreateProduct(ctx context.Context, caller domain.Identity, product *domain.Product) (*domain.Product, error) {
	if err := requireAdmin(caller, "creating products"); err != nil {
		uc.log.Warnf("Use Case: %s denied creating product '%s'", caller.Email, product.Name)
		return nil, err
	}
	product.Name = strings.TrimSpace(product.Name)
	product.SKU = strings.TrimSpace(product.SKU)
	product.Category = strings.TrimSpace(product.Category)
	if err := validateProduct(product); err != nil {
		uc.log.Warnf("Use Case: Rejected product '%s': %v", product.Name, err)
		return nil, err
	}
	product.ID = uuid.NewString()

	uc.log.Infof("Use Case: Attempting to create product '%s' (sku %s)", product.Name, product.SKU)
	if err := uc.productRepo.Create(ctx, product); err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created successfully with ID %s", product.Name, product.ID)
	return product, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		uc.log.Warn("Use Case: Attempted to get product with empty ID")
		return nil, fmt.Errorf("%w: invalid product ID", domain.ErrValidation)
	}

	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get product ID %s: %v", id, err)
		return nil, err
	}
	return product, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, caller domain.Identity, id string, update domain.ProductUpdate) (*domain.Product, error) {
	if err := requireAdmin(caller, "updating products"); err != nil {
		uc.log.Warnf("Use Case: %s denied updating product %s", caller.Email, id)
		return nil, err
	}
	if update.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields provided for update", domain.ErrValidation)
	}

	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Product ID %s not found for update: %v", id, err)
		return nil, err
	}

	if update.Name != nil {
		product.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Category != nil {
		product.Category = strings.TrimSpace(*update.Category)
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.ImageURL != nil {
		product.ImageURL = *update.ImageURL
	}
	if err := validateProduct(product); err != nil {
		uc.log.Warnf("Use Case: Rejected update of product %s: %v", id, err)
		return nil, err
	}

	if err := uc.productRepo.Update(ctx, product); err != nil {
		uc.log.Errorf("Use Case: Repository failed to update product ID %s: %v", id, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Product ID %s updated by %s", id, caller.Email)
	return product, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, caller domain.Identity, id string) error {
	if err := requireAdmin(caller, "deleting products"); err != nil {
		uc.log.Warnf("Use Case: %s denied deleting product %s", caller.Email, id)
		return err
	}
	if err := uc.productRepo.Delete(ctx, id); err != nil {
		uc.log.Errorf("Use Case: Repository failed to delete product ID %s: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Product ID %s deleted by %s", id, caller.Email)
	return nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, category string, limit, offset int) ([]domain.Product, error) {
	limit, offset = normalizePage(limit, offset)
	products, err := uc.productRepo.List(ctx, strings.TrimSpace(category), limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, err
	}
	return products, nil
}
