package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"bakerlane-api/internal/client"
	"bakerlane-api/internal/config"
	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/logger"
	"bakerlane-api/internal/model"
	"bakerlane-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "correct-horse-battery"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.InitDB(config.Database{
		Driver: "sqlite",
		URL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []Message
}

func (n *recordingNotifier) Notify(msg Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) Messages() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Message(nil), n.msgs...)
}

func (n *recordingNotifier) OfKind(kind model.TemplateKind) []Message {
	var out []Message
	for _, msg := range n.Messages() {
		if msg.Kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

type stubBilling struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (b *stubBilling) Provider() string { return "stub" }

func (b *stubBilling) CreateSubscription(ctx context.Context, planID, shopID string) (*client.BillingSubscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return &client.BillingSubscription{
		ExternalID:  fmt.Sprintf("sub_%s_%d", shopID[:8], b.calls),
		PlanID:      planID,
		Status:      model.SubscriptionCreated,
		ApprovalURL: "https://billing.example/approve",
	}, nil
}

type memoryStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	deleteErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (s *memoryStorage) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url := "https://cdn.example/" + uuid.NewString()
	s.objects[url] = data
	return url, nil
}

func (s *memoryStorage) Delete(ctx context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	if s.deleteErr != nil {
		return false, s.deleteErr
	}
	_, ok := s.objects[url]
	delete(s.objects, url)
	return ok, nil
}

type fixture struct {
	db       *gorm.DB
	clock    *fakeClock
	notifier *recordingNotifier
	billing  *stubBilling
	storage  *memoryStorage
	seq      int

	identityRepo     repository.IdentityRepository
	sessionRepo      repository.SessionRepository
	shopRepo         repository.ShopRepository
	productRepo      repository.ProductRepository
	orderRepo        repository.OrderRepository
	subscriptionRepo repository.SubscriptionRepository
	errorLogRepo     repository.ErrorLogRepository

	auth          AuthService
	shops         ShopService
	orders        OrderService
	reviews       ReviewService
	subscriptions SubscriptionService
	admin         AdminService
}

const testWebhookSecret = "whsec_test"

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	lg := logger.Discard()
	f := &fixture{
		db:       db,
		clock:    newFakeClock(),
		notifier: &recordingNotifier{},
		billing:  &stubBilling{},
		storage:  newMemoryStorage(),

		identityRepo:     repository.NewIdentityRepository(db),
		sessionRepo:      repository.NewSessionRepository(db),
		shopRepo:         repository.NewShopRepository(db),
		productRepo:      repository.NewProductRepository(db),
		orderRepo:        repository.NewOrderRepository(db),
		subscriptionRepo: repository.NewSubscriptionRepository(db),
	}

	hasher := client.NewPasswordHasher(bcrypt.MinCost)
	sessionCfg := config.Session{TTL: 7 * 24 * time.Hour, AdminTTL: 12 * time.Hour}

	f.auth = NewAuthService(
		db,
		f.identityRepo,
		f.sessionRepo,
		f.shopRepo,
		repository.NewAdminRepository(db),
		repository.NewOTPRepository(db),
		hasher,
		f.notifier,
		sessionCfg,
		lg,
		f.clock.Now,
	)
	f.shops = NewShopService(db, f.shopRepo, f.productRepo, f.storage, lg)
	f.orders = NewOrderService(
		db,
		f.orderRepo,
		f.productRepo,
		f.shopRepo,
		f.identityRepo,
		f.notifier,
		RevealFrom(model.OrderDelivered),
		time.Hour,
		lg,
		f.clock.Now,
	)
	f.reviews = NewReviewService(db, repository.NewReviewRepository(db), f.orderRepo, f.productRepo, f.shopRepo, f.identityRepo)
	f.subscriptions = NewSubscriptionService(
		db,
		f.billing,
		"plan_monthly",
		testWebhookSecret,
		f.subscriptionRepo,
		f.shopRepo,
		repository.NewWebhookEventRepository(db),
		lg,
	)
	f.errorLogRepo = repository.NewErrorLogRepository(db)
	f.admin = NewAdminService(db, f.identityRepo, f.sessionRepo, f.shopRepo, f.productRepo, f.errorLogRepo, f.storage, lg)
	return f
}

func (f *fixture) register(t *testing.T, kind model.IdentityKind, name string) *model.Identity {
	t.Helper()

	f.seq++
	identity, err := f.auth.Register(context.Background(), kind, &dto.RegisterRequest{
		Name:     name,
		Email:    name + "@example.com",
		Phone:    fmt.Sprintf("+9199000%05d", f.seq),
		Password: testPassword,
		Terms:    true,
	})
	require.NoError(t, err)
	return identity
}

func (f *fixture) buyer(t *testing.T, name string) *model.Identity {
	t.Helper()
	return f.register(t, model.KindBuyer, name)
}

// seller registers a seller and logs in once so the shop exists.
func (f *fixture) seller(t *testing.T, name string) (*model.Identity, *model.Shop) {
	t.Helper()

	seller := f.register(t, model.KindSeller, name)
	_, err := f.auth.Login(context.Background(), model.KindSeller, seller.EmailValue(), testPassword)
	require.NoError(t, err)

	shop, err := f.shopRepo.FindByClientID(context.Background(), seller.ID)
	require.NoError(t, err)
	return seller, shop
}

func (f *fixture) product(t *testing.T, seller *model.Identity, name, price string) *model.Product {
	t.Helper()

	product, err := f.shops.AddProduct(context.Background(), seller, &dto.CreateProductRequest{
		ProductName: name,
		Price:       decimal.RequireFromString(price),
		Stock:       10,
		UnitType:    string(model.UnitQuantity),
		UnitValue:   1,
		Category:    string(model.CategoryCake),
	})
	require.NoError(t, err)
	return product
}

func (f *fixture) placeOrder(t *testing.T, buyer *model.Identity, shop *model.Shop, lines ...OrderLine) *model.Order {
	t.Helper()

	order, err := f.orders.CreateOrder(context.Background(), buyer, shop.ID, StandardOrder{Items: lines})
	require.NoError(t, err)
	return order
}

func (f *fixture) customOrder(t *testing.T, buyer *model.Identity, shop *model.Shop) *model.Order {
	t.Helper()

	order, err := f.orders.CreateOrder(context.Background(), buyer, shop.ID, CustomOrder{
		Customization: model.Customization{Weight: "1kg", Flavor: "chocolate", Theme: "birthday"},
	})
	require.NoError(t, err)
	return order
}

// forceStatus puts an order straight into status, bypassing the machine.
func (f *fixture) forceStatus(t *testing.T, orderID string, status model.OrderStatus) {
	t.Helper()
	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", orderID).Update("order_status", status).Error)
}

func (f *fixture) reloadOrder(t *testing.T, orderID string) *model.Order {
	t.Helper()
	order, err := f.orderRepo.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	return order
}

func (f *fixture) reloadShop(t *testing.T, shopID string) *model.Shop {
	t.Helper()
	shop, err := f.shopRepo.FindByID(context.Background(), shopID)
	require.NoError(t, err)
	return shop
}
