package domain

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "COD"
	PaymentOnline         PaymentMethod = "ONLINE"
)

// ParsePaymentMethod accepts the canonical values and the spellings clients commonly send.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COD", "CASH_ON_DELIVERY", "CASH ON DELIVERY":
		return PaymentCashOnDelivery, nil
	case "ONLINE":
		return PaymentOnline, nil
	case "":
		return "", fmt.Errorf("%w: payment method is required", ErrValidation)
	default:
		return "", fmt.Errorf("%w: unsupported payment method '%s'", ErrValidation, raw)
	}
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

const (
	FulfillmentProcessing     = "Processing"
	FulfillmentConfirmed      = "Confirmed"
	FulfillmentShipped        = "Shipped"
	FulfillmentOutForDelivery = "Out for Delivery"
	FulfillmentDelivered      = "Delivered"
	FulfillmentCancelled      = "Cancelled"
)

// fulfillmentLadder ranks the labels the storefront knows about. Cancelled is terminal and unranked.
var fulfillmentLadder = map[string]int{
	strings.ToLower(FulfillmentProcessing):     1,
	strings.ToLower(FulfillmentConfirmed):      2,
	strings.ToLower(FulfillmentShipped):        3,
	strings.ToLower(FulfillmentOutForDelivery): 4,
	strings.ToLower(FulfillmentDelivered):      5,
}

// FulfillmentTransitionWarning describes why moving from one fulfillment label to another looks
// suspicious. An empty result means the move is unremarkable. Nothing here rejects a transition.
func FulfillmentTransitionWarning(from, to string) string {
	fromKey, toKey := strings.ToLower(from), strings.ToLower(to)
	toRank, toKnown := fulfillmentLadder[toKey]
	if !toKnown && toKey != strings.ToLower(FulfillmentCancelled) {
		return fmt.Sprintf("unknown fulfillment status '%s'", to)
	}
	if fromKey == strings.ToLower(FulfillmentCancelled) && toKey != fromKey {
		return fmt.Sprintf("order leaves terminal status '%s' for '%s'", from, to)
	}
	if fromRank, ok := fulfillmentLadder[fromKey]; ok && toKnown && toRank < fromRank {
		return fmt.Sprintf("fulfillment status moves backwards from '%s' to '%s'", from, to)
	}
	return ""
}

type LineItem struct {
	ProductRef string          `json:"product_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"price"`
	ImageRef   string          `json:"image,omitempty"`
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Amounts are stored as NUMERIC(12,2) and quantities as INTEGER.
const (
	MaxQuantity = math.MaxInt32
	moneyScale  = 2
)

var MaxAmount = decimal.RequireFromString("9999999999.99")

// CheckAmount reports why amount cannot be stored exactly, or "" when it can.
func CheckAmount(amount decimal.Decimal) string {
	switch {
	case amount.IsNegative():
		return "cannot be negative"
	case !amount.Equal(amount.Round(moneyScale)):
		return "cannot have more than 2 decimal places"
	case amount.GreaterThan(MaxAmount):
		return fmt.Sprintf("cannot exceed %s", MaxAmount.StringFixed(moneyScale))
	}
	return ""
}

func (li LineItem) Validate(position int) error {
	if strings.TrimSpace(li.ProductRef) == "" {
		return fmt.Errorf("%w: item %d: product id cannot be empty", ErrValidation, position)
	}
	if li.Quantity <= 0 {
		return fmt.Errorf("%w: item %d (product %s): quantity must be positive", ErrValidation, position, li.ProductRef)
	}
	if li.Quantity > MaxQuantity {
		return fmt.Errorf("%w: item %d (product %s): quantity cannot exceed %d", ErrValidation, position, li.ProductRef, MaxQuantity)
	}
	if reason := CheckAmount(li.UnitPrice); reason != "" {
		return fmt.Errorf("%w: item %d (product %s): price %s", ErrValidation, position, li.ProductRef, reason)
	}
	return nil
}

// ComputeTotal is the exact sum of quantity * unit price over items.
func ComputeTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

var gatewayPhonePattern = regexp.MustCompile(`^[0-9]{10}$`)

type ShippingAddress struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"state"`
	PostalCode string `json:"pincode"`
	Phone      string `json:"phone"`
}

func (a ShippingAddress) Validate() error {
	missing := []string{}
	if strings.TrimSpace(a.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(a.Street) == "" {
		missing = append(missing, "street")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "pincode")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: shipping address is missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// HasGatewayPhone reports whether the phone is usable by the payment gateway (exactly 10 digits).
func (a ShippingAddress) HasGatewayPhone() bool {
	return gatewayPhonePattern.MatchString(a.Phone)
}

type Order struct {
	ID                string          `json:"id"`
	OwnerEmail        string          `json:"user_email"`
	Items             []LineItem      `json:"items"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	ShippingAddress   ShippingAddress `json:"shipping_address"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	PaymentStatus     PaymentStatus   `json:"payment_status"`
	FulfillmentStatus string          `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (o *Order) OwnedBy(caller Identity) bool {
	return strings.EqualFold(o.OwnerEmail, caller.Email)
}

type PaymentSession struct {
	SessionToken    string `json:"payment_session_id"`
	ExternalOrderID string `json:"order_id"`
}

type PaymentVerification struct {
	OrderID   string `json:"order_id"`
	Confirmed bool   `json:"confirmed"`
}

type PlaceOrderInput struct {
	Items           []LineItem
	ShippingAddress ShippingAddress
	PaymentMethod   string
}

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByOwner(ctx context.Context, ownerEmail string, limit, offset int) ([]Order, error)
	ListAll(ctx context.Context, limit, offset int) ([]Order, error)
	MarkPaid(ctx context.Context, id string) (*Order, error)
	UpdateFulfillmentStatus(ctx context.Context, id string, status string) (*Order, error)
}

type OrderUseCase interface {
	PlaceOrder(ctx context.Context, caller Identity, input PlaceOrderInput) (*Order, error)
	GetOrder(ctx context.Context, caller Identity, orderID string) (*Order, error)
	CreatePaymentSession(ctx context.Context, caller Identity, orderID string) (*PaymentSession, error)
	VerifyPayment(ctx context.Context, caller Identity, orderID string) (*PaymentVerification, error)
	ListOrdersForUser(ctx context.Context, caller Identity, limit, offset int) ([]Order, error)
	ListAllOrders(ctx context.Context, caller Identity, limit, offset int) ([]Order, error)
	UpdateFulfillmentStatus(ctx context.Context, caller Identity, orderID string, status string) (*Order, error)
}
