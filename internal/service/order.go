package service

import (
	"context"
	"fmt"
	"time"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/model"
	"bakerlane-api/internal/repository"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderRequest is either a StandardOrder or a CustomOrder.
type OrderRequest interface {
	orderKind() model.OrderKind
}

type OrderLine struct {
	ProductID string
	Quantity  int
}

// StandardOrder buys catalog products at their current price.
type StandardOrder struct {
	Items []OrderLine
}

// CustomOrder asks the seller for a bespoke cake; it is priced later with
// UpdatePrice.
type CustomOrder struct {
	Customization model.Customization
}

func (StandardOrder) orderKind() model.OrderKind { return model.OrderKindStandard }
func (CustomOrder) orderKind() model.OrderKind   { return model.OrderKindCustom }

// ContactPolicy decides whether an order in the given status may show the
// counterpart's email and phone.
type ContactPolicy func(status model.OrderStatus) bool

// RevealFrom shows contact details once an order has reached from, and never
// for cancelled orders.
func RevealFrom(from model.OrderStatus) ContactPolicy {
	stage := from.Stage()
	return func(status model.OrderStatus) bool {
		return status != model.OrderCancelled && status.Stage() >= stage
	}
}

// ParseContactPolicy builds the policy from its configured status name.
func ParseContactPolicy(from string) (ContactPolicy, error) {
	status := model.OrderStatus(from)
	if !status.Valid() || status == model.OrderCancelled {
		return nil, fmt.Errorf("invalid contact reveal status %q", from)
	}
	return RevealFrom(status), nil
}

// Contact is the other party of an order as shown to the viewer.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type OrderView struct {
	*model.Order
	Counterpart *Contact `json:"counterpart,omitempty"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, buyer *model.Identity, shopID string, req OrderRequest) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, target model.OrderStatus) (*model.Order, error)
	UpdateShopOrderStatus(ctx context.Context, seller *model.Identity, orderID string, target model.OrderStatus) (*model.Order, error)
	CancelOrder(ctx context.Context, buyer *model.Identity, orderID string) error
	UpdatePrice(ctx context.Context, seller *model.Identity, orderID string, total decimal.Decimal) (*model.Order, error)
	DeleteOrder(ctx context.Context, requester *model.Identity, orderID string) error
	GetOrder(ctx context.Context, requester *model.Identity, orderID string) (*OrderView, error)
	GetMyOrders(ctx context.Context, buyer *model.Identity) ([]*OrderView, error)
	GetShopOrders(ctx context.Context, seller *model.Identity) ([]*OrderView, error)
	CountShopOrders(ctx context.Context, seller *model.Identity) (int64, error)
}

type orderServiceImpl struct {
	db           *gorm.DB
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	shopRepo     repository.ShopRepository
	identityRepo repository.IdentityRepository
	notifier     Notifier
	contact      ContactPolicy
	cancelWindow time.Duration
	logger       *log.Logger
	now          func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	shopRepo repository.ShopRepository,
	identityRepo repository.IdentityRepository,
	notifier Notifier,
	contact ContactPolicy,
	cancelWindow time.Duration,
	logger *log.Logger,
	now func() time.Time,
) OrderService {
	if now == nil {
		now = time.Now
	}
	if contact == nil {
		contact = RevealFrom(model.OrderDelivered)
	}
	return &orderServiceImpl{
		db:           db,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		shopRepo:     shopRepo,
		identityRepo: identityRepo,
		notifier:     notifier,
		contact:      contact,
		cancelWindow: cancelWindow,
		logger:       logger,
		now:          now,
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, buyer *model.Identity, shopID string, req OrderRequest) (*model.Order, error) {
	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, storeErr(err, "find shop", "shop")
	}
	if !shop.IsActive {
		return nil, apperr.Conflict("shop is not accepting orders")
	}

	order := &model.Order{
		ID:            uuid.NewString(),
		UserID:        buyer.ID,
		ShopID:        shop.ID,
		PaymentStatus: model.PaymentPending,
		OrderStatus:   model.OrderPending,
		TotalAmount:   decimal.Zero,
		Items:         []model.OrderItem{},
		CreatedAt:     s.now().UTC(),
	}
	order.UpdatedAt = order.CreatedAt

	switch r := req.(type) {
	case StandardOrder:
		order.Kind = model.OrderKindStandard
		err = s.createStandard(ctx, order, r)
	case CustomOrder:
		order.Kind = model.OrderKindCustom
		err = s.createCustom(ctx, order, r)
	default:
		err = apperr.Validation("order needs items or a customization", nil)
	}
	if err != nil {
		return nil, err
	}

	s.notifyOrderPlaced(ctx, buyer, shop, order)
	return order, nil
}

func (s *orderServiceImpl) createStandard(ctx context.Context, order *model.Order, req StandardOrder) error {
	if len(req.Items) == 0 {
		return apperr.Validation("order needs at least one item", map[string]string{"items": "required"})
	}

	quantities := make(map[string]int, len(req.Items))
	productIDs := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return apperr.Validation("quantity must be at least 1", map[string]string{"quantity": "min"})
		}
		if _, dup := quantities[line.ProductID]; dup {
			return apperr.Validation("each product may appear once per order", map[string]string{"items": "unique"})
		}
		quantities[line.ProductID] = line.Quantity
		productIDs = append(productIDs, line.ProductID)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.productRepo.FindMany(ctx, tx, productIDs)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		byID := make(map[string]*model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		total := decimal.Zero
		claims := make([]*model.PendingOrderClaim, 0, len(productIDs))
		for _, id := range productIDs {
			product, ok := byID[id]
			if !ok || !product.IsActive || product.ShopID != order.ShopID {
				return apperr.NotFound("product " + id)
			}

			pending, err := s.orderRepo.HasPendingForProduct(ctx, tx, order.UserID, id)
			if err != nil {
				return fmt.Errorf("check pending orders: %w", err)
			}
			if pending {
				return apperr.ErrDuplicateActiveOrder
			}

			item := model.OrderItem{
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.ProductName,
				Quantity:    quantities[id],
				UnitPrice:   product.Price,
			}
			total = total.Add(item.LineTotal())
			order.Items = append(order.Items, item)

			claims = append(claims, &model.PendingOrderClaim{
				UserID:    order.UserID,
				ProductID: product.ID,
				OrderID:   order.ID,
			})
		}
		order.TotalAmount = total

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}
		if err := s.orderRepo.CreateClaims(ctx, tx, claims); err != nil {
			if isDuplicateKey(err) {
				return apperr.ErrDuplicateActiveOrder
			}
			return fmt.Errorf("claim products: %w", err)
		}
		return s.countOrder(ctx, tx, order.ShopID)
	})
}

func (s *orderServiceImpl) createCustom(ctx context.Context, order *model.Order, req CustomOrder) error {
	if req.Customization.IsZero() {
		return apperr.Validation("customization is empty", map[string]string{"customization": "required"})
	}
	order.Customization = req.Customization

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}
		return s.countOrder(ctx, tx, order.ShopID)
	})
}

// countOrder bumps the shop's order counter inside the order's transaction.
// The shop vanishing between lookup and commit is a consistency failure.
func (s *orderServiceImpl) countOrder(ctx context.Context, tx *gorm.DB, shopID string) error {
	if err := s.shopRepo.IncrementTotalOrder(ctx, tx, shopID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("increment order count: shop %s missing after order insert", shopID)
		}
		return fmt.Errorf("increment order count: %w", err)
	}
	return nil
}

func (s *orderServiceImpl) findOrder(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, storeErr(err, "find order", "order")
	}
	return order, nil
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID string, target model.OrderStatus) (*model.Order, error) {
	if !target.Valid() {
		return nil, apperr.Validation("unknown order status", map[string]string{"status": "oneof"})
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, order, target); err != nil {
		return nil, err
	}

	s.notifyStatusChanged(ctx, order)
	return order, nil
}

// transition applies a status change with compare-and-swap on the current
// status. A concurrent change is reported against the status that won.
func (s *orderServiceImpl) transition(ctx context.Context, order *model.Order, target model.OrderStatus) error {
	from := order.OrderStatus
	if !from.CanTransitionTo(target) {
		return apperr.InvalidTransition(string(from), string(target))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.CompareAndSetStatus(ctx, tx, order.ID, from, target)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if !ok {
			current, err := s.orderRepo.FindByIDTx(ctx, tx, order.ID)
			if err != nil {
				return storeErr(err, "reload order", "order")
			}
			return apperr.InvalidTransition(string(current.OrderStatus), string(target))
		}

		if from == model.OrderPending {
			if err := s.orderRepo.ReleaseClaims(ctx, tx, order.ID); err != nil {
				return fmt.Errorf("release order claims: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.OrderStatus = target
	order.UpdatedAt = s.now().UTC()
	return nil
}

// ownShop returns the seller's shop, failing with Forbidden when the order
// belongs to another shop.
func (s *orderServiceImpl) ownShop(ctx context.Context, seller *model.Identity, order *model.Order) (*model.Shop, error) {
	shop, err := s.shopRepo.FindByClientID(ctx, seller.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrForbidden.With("order belongs to another shop")
		}
		return nil, fmt.Errorf("find shop: %w", err)
	}
	if shop.ID != order.ShopID {
		return nil, apperr.ErrForbidden.With("order belongs to another shop")
	}
	return shop, nil
}

func (s *orderServiceImpl) UpdateShopOrderStatus(ctx context.Context, seller *model.Identity, orderID string, target model.OrderStatus) (*model.Order, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownShop(ctx, seller, order); err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, orderID, target)
}

// CancelOrder is the buyer's self-service cancel: only while preparing and
// only inside the window after creation.
func (s *orderServiceImpl) CancelOrder(ctx context.Context, buyer *model.Identity, orderID string) error {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != buyer.ID {
		return apperr.ErrForbidden.With("order belongs to another buyer")
	}
	if s.now().Sub(order.CreatedAt) > s.cancelWindow {
		return apperr.ErrCancellationWindowExpired
	}
	if order.OrderStatus != model.OrderPreparing {
		return apperr.InvalidTransition(string(order.OrderStatus), string(model.OrderCancelled)).
			With(fmt.Sprintf("only preparing orders can be cancelled, this one is %s", order.OrderStatus))
	}

	if err := s.transition(ctx, order, model.OrderCancelled); err != nil {
		return err
	}

	s.notifyStatusChanged(ctx, order)
	return nil
}

// UpdatePrice lets the owning seller quote an order that is still open.
func (s *orderServiceImpl) UpdatePrice(ctx context.Context, seller *model.Identity, orderID string, total decimal.Decimal) (*model.Order, error) {
	if !total.IsPositive() {
		return nil, apperr.Validation("total must be positive", map[string]string{"totalAmount": "gt"})
	}

	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownShop(ctx, seller, order); err != nil {
		return nil, err
	}
	if order.OrderStatus.IsTerminal() {
		return nil, apperr.Conflict(fmt.Sprintf("cannot change the price of a %s order", order.OrderStatus))
	}

	ok, err := s.orderRepo.UpdateTotal(ctx, s.db, order.ID, total.Round(2))
	if err != nil {
		return nil, fmt.Errorf("update order total: %w", err)
	}
	if !ok {
		return nil, apperr.Conflict("order was closed before the price could change")
	}

	order.TotalAmount = total.Round(2)
	return order, nil
}

// DeleteOrder is allowed to the buyer and the owning seller until the order
// has left the shop.
func (s *orderServiceImpl) DeleteOrder(ctx context.Context, requester *model.Identity, orderID string) error {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.checkParticipant(ctx, requester, order); err != nil {
		return err
	}

	switch order.OrderStatus {
	case model.OrderOnTheWay, model.OrderDelivered:
		return apperr.Conflict(fmt.Sprintf("cannot delete an order that is %s", order.OrderStatus))
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Delete(ctx, tx, order.ID); err != nil {
			return storeErr(err, "delete order", "order")
		}
		return nil
	})
}

func (s *orderServiceImpl) checkParticipant(ctx context.Context, requester *model.Identity, order *model.Order) error {
	switch requester.Kind {
	case model.KindBuyer:
		if order.UserID == requester.ID {
			return nil
		}
	case model.KindSeller:
		_, err := s.ownShop(ctx, requester, order)
		return err
	}
	return apperr.ErrForbidden.With("not a party to this order")
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, requester *model.Identity, orderID string) (*OrderView, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.checkParticipant(ctx, requester, order); err != nil {
		return nil, err
	}

	var views []*OrderView
	if requester.Kind == model.KindBuyer {
		views, err = s.buyerViews(ctx, []*model.Order{order})
	} else {
		views, err = s.sellerViews(ctx, []*model.Order{order})
	}
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *orderServiceImpl) GetMyOrders(ctx context.Context, buyer *model.Identity) ([]*OrderView, error) {
	orders, err := s.orderRepo.ListByUser(ctx, buyer.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.buyerViews(ctx, orders)
}

func (s *orderServiceImpl) GetShopOrders(ctx context.Context, seller *model.Identity) ([]*OrderView, error) {
	shop, err := s.shopRepo.FindByClientID(ctx, seller.ID)
	if err != nil {
		return nil, storeErr(err, "find shop", "shop")
	}

	orders, err := s.orderRepo.ListByShop(ctx, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("list shop orders: %w", err)
	}
	return s.sellerViews(ctx, orders)
}

func (s *orderServiceImpl) CountShopOrders(ctx context.Context, seller *model.Identity) (int64, error) {
	shop, err := s.shopRepo.FindByClientID(ctx, seller.ID)
	if err != nil {
		return 0, storeErr(err, "find shop", "shop")
	}

	count, err := s.orderRepo.CountByShop(ctx, shop.ID)
	if err != nil {
		return 0, fmt.Errorf("count shop orders: %w", err)
	}
	return count, nil
}

// buyerViews attaches the shop and its seller as counterpart.
func (s *orderServiceImpl) buyerViews(ctx context.Context, orders []*model.Order) ([]*OrderView, error) {
	shopIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		shopIDs = append(shopIDs, o.ShopID)
	}
	shops, err := s.shopRepo.FindByIDs(ctx, shopIDs)
	if err != nil {
		return nil, fmt.Errorf("load shops: %w", err)
	}

	sellerIDs := make([]string, 0, len(shops))
	for _, shop := range shops {
		sellerIDs = append(sellerIDs, shop.ClientID)
	}
	sellers, err := s.identityRepo.FindByIDs(ctx, sellerIDs)
	if err != nil {
		return nil, fmt.Errorf("load sellers: %w", err)
	}

	views := make([]*OrderView, 0, len(orders))
	for _, o := range orders {
		view := &OrderView{Order: o}
		if shop, ok := shops[o.ShopID]; ok {
			view.Counterpart = s.contactFor(o.OrderStatus, shop.ID, shop.ShopName, sellers[shop.ClientID])
		}
		views = append(views, view)
	}
	return views, nil
}

// sellerViews attaches the buyer as counterpart.
func (s *orderServiceImpl) sellerViews(ctx context.Context, orders []*model.Order) ([]*OrderView, error) {
	buyerIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		buyerIDs = append(buyerIDs, o.UserID)
	}
	buyers, err := s.identityRepo.FindByIDs(ctx, buyerIDs)
	if err != nil {
		return nil, fmt.Errorf("load buyers: %w", err)
	}

	views := make([]*OrderView, 0, len(orders))
	for _, o := range orders {
		view := &OrderView{Order: o}
		if buyer, ok := buyers[o.UserID]; ok {
			view.Counterpart = s.contactFor(o.OrderStatus, buyer.ID, buyer.Name, buyer)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *orderServiceImpl) contactFor(status model.OrderStatus, id, name string, person *model.Identity) *Contact {
	contact := &Contact{ID: id, Name: name}
	if person != nil && s.contact(status) {
		contact.Email = person.EmailValue()
		contact.Phone = person.PhoneValue()
	}
	return contact
}

func (s *orderServiceImpl) notifyOrderPlaced(ctx context.Context, buyer *model.Identity, shop *model.Shop, order *model.Order) {
	link := "/orders/" + order.ID

	s.notifier.Notify(Message{
		RecipientID:   buyer.ID,
		RecipientKind: model.KindBuyer,
		Email:         buyer.EmailValue(),
		Kind:          model.TemplateOrderConfirmation,
		Subject:       "Your order has been placed",
		Body:          fmt.Sprintf("Your order %s at %s has been placed. Total: %s.", order.ID, shop.ShopName, order.TotalAmount.StringFixed(2)),
		Link:          link,
	})

	seller, err := s.identityRepo.FindByID(ctx, model.KindSeller, shop.ClientID)
	if err != nil {
		s.logger.Warnj(log.JSON{"msg": "load seller for order alert", "order": order.ID, "error": err.Error()})
	}
	msg := Message{
		RecipientID:   shop.ClientID,
		RecipientKind: model.KindSeller,
		Kind:          model.TemplateOrderAlert,
		Subject:       "New order received",
		Body:          fmt.Sprintf("New %s order %s from %s.", order.Kind, order.ID, buyer.Name),
		Link:          "/seller/orders/" + order.ID,
	}
	if seller != nil {
		msg.Email = seller.EmailValue()
	}
	s.notifier.Notify(msg)
}

func (s *orderServiceImpl) notifyStatusChanged(ctx context.Context, order *model.Order) {
	buyer, err := s.identityRepo.FindByID(ctx, model.KindBuyer, order.UserID)
	if err != nil {
		s.logger.Warnj(log.JSON{"msg": "load buyer for status notification", "order": order.ID, "error": err.Error()})
	}
	msg := Message{
		RecipientID:   order.UserID,
		RecipientKind: model.KindBuyer,
		Kind:          model.TemplateOrderStatus,
		Subject:       "Order update",
		Body:          fmt.Sprintf("Your order %s is now %s.", order.ID, order.OrderStatus),
		Link:          "/orders/" + order.ID,
	}
	if buyer != nil {
		msg.Email = buyer.EmailValue()
	}
	s.notifier.Notify(msg)
}
