package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Sarbjeetmaan/backend/config"
	"github.com/Sarbjeetmaan/backend/internal/clients"
	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var _ domain.OrderUseCase = (*orderUseCase)(nil)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100

	returnURLOrderPlaceholder = "{order_id}"
)

var customerIDUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

type orderUseCase struct {
	orderRepo domain.OrderRepository
	gateway   clients.PaymentGateway
	payment   config.PaymentConfig
	log       *logrus.Logger
}

func NewOrderUseCase(repo domain.OrderRepository, gateway clients.PaymentGateway, payment config.PaymentConfig, logger *logrus.Logger) domain.OrderUseCase {
	return &orderUseCase{
		orderRepo: repo,
		gateway:   gateway,
		payment:   payment,
		log:       logger,
	}
}

// normalizePage clamps list pagination to the supported window.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func requireAdmin(caller domain.Identity, action string) error {
	if !caller.IsAdmin() {
		return fmt.Errorf("%w: %s requires role %s", domain.ErrUnauthorized, action, domain.RoleAdmin)
	}
	return nil
}

func (uc *orderUseCase) PlaceOrder(ctx context.Context, caller domain.Identity, input domain.PlaceOrderInput) (*domain.Order, error) {
	if caller.Email == "" {
		return nil, fmt.Errorf("%w: caller identity is missing", domain.ErrUnauthenticated)
	}
	if len(input.Items) == 0 {
		uc.log.Warnf("Use Case: Order from %s rejected - no items", caller.Email)
		return nil, fmt.Errorf("%w: order must contain at least one item", domain.ErrValidation)
	}
	for i, item := range input.Items {
		if err := item.Validate(i); err != nil {
			uc.log.Warnf("Use Case: Order from %s rejected - %v", caller.Email, err)
			return nil, err
		}
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		uc.log.Warnf("Use Case: Order from %s rejected - %v", caller.Email, err)
		return nil, err
	}
	method, err := domain.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		uc.log.Warnf("Use Case: Order from %s rejected - %v", caller.Email, err)
		return nil, err
	}

	items := make([]domain.LineItem, len(input.Items))
	copy(items, input.Items)
	total := domain.ComputeTotal(items)
	if reason := domain.CheckAmount(total); reason != "" {
		uc.log.Warnf("Use Case: Order from %s rejected - total %s %s", caller.Email, total.String(), reason)
		return nil, fmt.Errorf("%w: order total %s", domain.ErrValidation, reason)
	}

	order := &domain.Order{
		ID:                uuid.NewString(),
		OwnerEmail:        caller.Email,
		Items:             items,
		TotalAmount:       total,
		ShippingAddress:   input.ShippingAddress,
		PaymentMethod:     method,
		PaymentStatus:     domain.PaymentPending,
		FulfillmentStatus: domain.FulfillmentProcessing,
	}
	uc.log.Infof("Use Case: Validated order %s for %s: %d items, total %s, method %s",
		order.ID, caller.Email, len(items), order.TotalAmount.StringFixed(2), method)

	if err := uc.orderRepo.Create(ctx, order); err != nil {
		uc.log.Errorf("Use Case: Repository failed to create order for %s: %v", caller.Email, err)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	uc.log.Infof("Use Case: Order %s placed successfully by %s", order.ID, caller.Email)
	return order, nil
}

// loadAccessible fetches an order the caller owns, or any order when the caller is an admin.
func (uc *orderUseCase) loadAccessible(ctx context.Context, caller domain.Identity, orderID string) (*domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", domain.ErrValidation)
	}
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to load order %s for %s: %v", orderID, caller.Email, err)
		return nil, err
	}
	if !order.OwnedBy(caller) && !caller.IsAdmin() {
		uc.log.Warnf("Use Case: %s attempted to access order %s owned by %s", caller.Email, orderID, order.OwnerEmail)
		return nil, fmt.Errorf("%w: order %s belongs to another user", domain.ErrUnauthorized, orderID)
	}
	return order, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, caller domain.Identity, orderID string) (*domain.Order, error) {
	order, err := uc.loadAccessible(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Order %s retrieved by %s", order.ID, caller.Email)
	return order, nil
}

func (uc *orderUseCase) CreatePaymentSession(ctx context.Context, caller domain.Identity, orderID string) (*domain.PaymentSession, error) {
	order, err := uc.loadAccessible(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}

	if order.PaymentMethod != domain.PaymentOnline {
		uc.log.Warnf("Use Case: Payment session refused for order %s - payment method is %s", order.ID, order.PaymentMethod)
		return nil, fmt.Errorf("%w: order %s is not an online payment order", domain.ErrInvalidState, order.ID)
	}
	if !order.ShippingAddress.HasGatewayPhone() {
		uc.log.Warnf("Use Case: Payment session refused for order %s - phone '%s' is not 10 digits", order.ID, order.ShippingAddress.Phone)
		return nil, fmt.Errorf("%w: phone number must be exactly 10 digits", domain.ErrInvalidState)
	}
	if order.PaymentStatus == domain.PaymentPaid {
		uc.log.Warnf("Use Case: Payment session refused for order %s - already paid", order.ID)
		return nil, fmt.Errorf("%w: order %s is already paid", domain.ErrInvalidState, order.ID)
	}

	req := clients.CreatePaymentRequest{
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		Currency:      uc.payment.Currency,
		CustomerID:    customerIDFor(order.OwnerEmail),
		CustomerEmail: order.OwnerEmail,
		CustomerPhone: order.ShippingAddress.Phone,
		ReturnURL:     strings.ReplaceAll(uc.payment.ReturnURL, returnURLOrderPlaceholder, order.ID),
	}

	uc.log.Infof("Use Case: Requesting payment session for order %s (%s %s)", order.ID, order.TotalAmount.StringFixed(2), req.Currency)
	session, err := uc.gateway.CreateOrder(ctx, req)
	if err != nil {
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) {
			uc.log.WithFields(logrus.Fields{
				"order_id":      order.ID,
				"status_code":   gwErr.StatusCode,
				"response_body": gwErr.Body,
			}).Error("Use Case: Payment gateway rejected session creation")
		} else {
			uc.log.Errorf("Use Case: Payment session creation failed for order %s: %v", order.ID, err)
		}
		return nil, err
	}

	uc.log.Infof("Use Case: Payment session created for order %s (gateway order %s)", order.ID, session.ExternalOrderID)
	return session, nil
}

func (uc *orderUseCase) VerifyPayment(ctx context.Context, caller domain.Identity, orderID string) (*domain.PaymentVerification, error) {
	order, err := uc.loadAccessible(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == domain.PaymentPaid {
		uc.log.Infof("Use Case: Order %s already paid, skipping gateway lookup", order.ID)
		return &domain.PaymentVerification{OrderID: order.ID, Confirmed: true}, nil
	}

	state, err := uc.gateway.GetOrderStatus(ctx, order.ID)
	if err != nil {
		uc.log.Errorf("Use Case: Payment verification for order %s failed: %v", order.ID, err)
		return nil, err
	}

	if state != clients.PaymentStatePaid {
		uc.log.Infof("Use Case: Gateway reports order %s as %s, leaving payment %s", order.ID, state, order.PaymentStatus)
		return &domain.PaymentVerification{OrderID: order.ID, Confirmed: false}, nil
	}

	if _, err := uc.orderRepo.MarkPaid(ctx, order.ID); err != nil {
		uc.log.Errorf("Use Case: Gateway confirmed order %s but marking it paid failed: %v", order.ID, err)
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	uc.log.Infof("Use Case: Payment confirmed for order %s", order.ID)
	return &domain.PaymentVerification{OrderID: order.ID, Confirmed: true}, nil
}

func (uc *orderUseCase) ListOrdersForUser(ctx context.Context, caller domain.Identity, limit, offset int) ([]domain.Order, error) {
	if caller.Email == "" {
		return nil, fmt.Errorf("%w: caller identity is missing", domain.ErrUnauthenticated)
	}
	limit, offset = normalizePage(limit, offset)

	orders, err := uc.orderRepo.ListByOwner(ctx, caller.Email, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list orders for %s: %v", caller.Email, err)
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	uc.log.Infof("Use Case: Listed %d orders for %s", len(orders), caller.Email)
	return orders, nil
}

func (uc *orderUseCase) ListAllOrders(ctx context.Context, caller domain.Identity, limit, offset int) ([]domain.Order, error) {
	if err := requireAdmin(caller, "listing all orders"); err != nil {
		uc.log.Warnf("Use Case: %s denied listing all orders", caller.Email)
		return nil, err
	}
	limit, offset = normalizePage(limit, offset)

	orders, err := uc.orderRepo.ListAll(ctx, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list all orders: %v", err)
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	uc.log.Infof("Use Case: Admin %s listed %d orders", caller.Email, len(orders))
	return orders, nil
}

func (uc *orderUseCase) UpdateFulfillmentStatus(ctx context.Context, caller domain.Identity, orderID string, status string) (*domain.Order, error) {
	if err := requireAdmin(caller, "updating order status"); err != nil {
		uc.log.Warnf("Use Case: %s denied updating status of order %s", caller.Email, orderID)
		return nil, err
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, fmt.Errorf("%w: status cannot be empty", domain.ErrValidation)
	}

	current, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to load order %s for status update: %v", orderID, err)
		return nil, err
	}
	if warning := domain.FulfillmentTransitionWarning(current.FulfillmentStatus, status); warning != "" {
		uc.log.WithFields(logrus.Fields{
			"order_id": orderID,
			"from":     current.FulfillmentStatus,
			"to":       status,
			"admin":    caller.Email,
		}).Warnf("Use Case: Unexpected fulfillment transition accepted: %s", warning)
	}

	updated, err := uc.orderRepo.UpdateFulfillmentStatus(ctx, orderID, status)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to update status of order %s: %v", orderID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Admin %s moved order %s from '%s' to '%s'", caller.Email, orderID, current.FulfillmentStatus, status)
	return updated, nil
}

// customerIDFor derives the gateway customer id, which only allows letters, digits, '_' and '-'.
func customerIDFor(email string) string {
	return customerIDUnsafe.ReplaceAllString(strings.ToLower(email), "_")
}
