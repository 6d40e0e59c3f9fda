package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Sarbjeetmaan/backend/internal/clients"
	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/sirupsen/logrus"
)

var errStoreDown = errors.New("connection refused")

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// memoryOrderRepo is an in-memory domain.OrderRepository. Each Create advances the clock by a second.
type memoryOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*domain.Order
	clock     time.Time
	failWrite bool
	markCalls int
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{
		orders: map[string]*domain.Order{},
		clock:  time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.LineItem(nil), o.Items...)
	return &c
}

func (r *memoryOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrite {
		return fmt.Errorf("%w: could not create order entry: %w", domain.ErrPersistence, errStoreDown)
	}
	r.clock = r.clock.Add(time.Second)
	order.CreatedAt = r.clock
	order.UpdatedAt = r.clock
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *memoryOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order with id %s", domain.ErrNotFound, id)
	}
	return cloneOrder(order), nil
}

func (r *memoryOrderRepo) list(filter func(*domain.Order) bool, limit, offset int) []domain.Order {
	var out []domain.Order
	for _, order := range r.orders {
		if filter(order) {
			out = append(out, *cloneOrder(order))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return []domain.Order{}
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (r *memoryOrderRepo) ListByOwner(ctx context.Context, ownerEmail string, limit, offset int) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(o *domain.Order) bool { return o.OwnerEmail == ownerEmail }, limit, offset), nil
}

func (r *memoryOrderRepo) ListAll(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(*domain.Order) bool { return true }, limit, offset), nil
}

func (r *memoryOrderRepo) MarkPaid(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markCalls++
	if r.failWrite {
		return nil, fmt.Errorf("%w: could not update order: %w", domain.ErrPersistence, errStoreDown)
	}
	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order with id %s", domain.ErrNotFound, id)
	}
	order.PaymentStatus = domain.PaymentPaid
	order.FulfillmentStatus = domain.FulfillmentConfirmed
	return cloneOrder(order), nil
}

func (r *memoryOrderRepo) UpdateFulfillmentStatus(ctx context.Context, id string, status string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order with id %s", domain.ErrNotFound, id)
	}
	order.FulfillmentStatus = status
	return cloneOrder(order), nil
}

// fakeGateway records calls and answers from its Func fields.
type fakeGateway struct {
	CreateFunc    func(ctx context.Context, req clients.CreatePaymentRequest) (*domain.PaymentSession, error)
	StatusFunc    func(ctx context.Context, externalOrderID string) (clients.PaymentState, error)
	CreateCalls   []clients.CreatePaymentRequest
	StatusQueries []string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req clients.CreatePaymentRequest) (*domain.PaymentSession, error) {
	g.CreateCalls = append(g.CreateCalls, req)
	if g.CreateFunc != nil {
		return g.CreateFunc(ctx, req)
	}
	return &domain.PaymentSession{SessionToken: "session_" + req.OrderID, ExternalOrderID: req.OrderID}, nil
}

func (g *fakeGateway) GetOrderStatus(ctx context.Context, externalOrderID string) (clients.PaymentState, error) {
	g.StatusQueries = append(g.StatusQueries, externalOrderID)
	if g.StatusFunc != nil {
		return g.StatusFunc(ctx, externalOrderID)
	}
	return clients.PaymentStateActive, nil
}

type memoryUserRepo struct {
	users map[string]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]*domain.User{}}
}

func (r *memoryUserRepo) Create(ctx context.Context, user *domain.User) error {
	if _, exists := r.users[user.Email]; exists {
		return fmt.Errorf("%w: user with email '%s'", domain.ErrConflict, user.Email)
	}
	stored := *user
	r.users[user.Email] = &stored
	return nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("%w: user with email %s", domain.ErrNotFound, email)
	}
	stored := *user
	return &stored, nil
}

type staticTokens struct{}

func (staticTokens) Issue(identity domain.Identity) (string, error) {
	return "token-for-" + identity.Email + "-" + string(identity.Role), nil
}

type memoryProductRepo struct {
	products map[string]*domain.Product
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: map[string]*domain.Product{}}
}

func (r *memoryProductRepo) Create(ctx context.Context, product *domain.Product) error {
	for _, existing := range r.products {
		if existing.SKU == product.SKU {
			return fmt.Errorf("%w: product with sku '%s'", domain.ErrConflict, product.SKU)
		}
	}
	stored := *product
	r.products[product.ID] = &stored
	return nil
}

func (r *memoryProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product with id %s", domain.ErrNotFound, id)
	}
	stored := *product
	return &stored, nil
}

func (r *memoryProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("%w: product with id %s", domain.ErrNotFound, product.ID)
	}
	stored := *product
	r.products[product.ID] = &stored
	return nil
}

func (r *memoryProductRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("%w: product with id %s", domain.ErrNotFound, id)
	}
	delete(r.products, id)
	return nil
}

func (r *memoryProductRepo) List(ctx context.Context, category string, limit, offset int) ([]domain.Product, error) {
	out := []domain.Product{}
	for _, product := range r.products {
		if category == "" || strings.EqualFold(product.Category, category) {
			out = append(out, *product)
		}
	}
	return out, nil
}

type memoryCartRepo struct {
	carts map[string]*domain.Cart
}

func newMemoryCartRepo() *memoryCartRepo {
	return &memoryCartRepo{carts: map[string]*domain.Cart{}}
}

func (r *memoryCartRepo) Get(ctx context.Context, ownerEmail string) (*domain.Cart, error) {
	cart, ok := r.carts[ownerEmail]
	if !ok {
		return &domain.Cart{OwnerEmail: ownerEmail, Items: []domain.LineItem{}}, nil
	}
	stored := *cart
	return &stored, nil
}

func (r *memoryCartRepo) Save(ctx context.Context, cart *domain.Cart) error {
	stored := *cart
	r.carts[cart.OwnerEmail] = &stored
	return nil
}

func (r *memoryCartRepo) Delete(ctx context.Context, ownerEmail string) error {
	delete(r.carts, ownerEmail)
	return nil
}
