package service

import (
	"context"
	"fmt"

	"bakerlane-api/internal/client"
	"bakerlane-api/internal/model"
	"bakerlane-api/internal/repository"

	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

const errorLogPageSize = 100

// AdminService covers moderation. Order status changes go through
// OrderService.UpdateStatus.
type AdminService interface {
	ListIdentities(ctx context.Context, kind model.IdentityKind) ([]*model.Identity, error)
	VerifySeller(ctx context.Context, sellerID string) error
	DeleteBuyer(ctx context.Context, buyerID string) error
	DeleteSeller(ctx context.Context, sellerID string) error
	ListProducts(ctx context.Context) ([]*model.Product, error)
	ToggleProduct(ctx context.Context, productID string) (*model.Product, error)
	ListErrorLogs(ctx context.Context) ([]*model.ErrorLog, error)
}

type adminServiceImpl struct {
	db           *gorm.DB
	identityRepo repository.IdentityRepository
	sessionRepo  repository.SessionRepository
	shopRepo     repository.ShopRepository
	productRepo  repository.ProductRepository
	errorLogRepo repository.ErrorLogRepository
	storage      client.StorageClient
	logger       *log.Logger
}

func NewAdminService(
	db *gorm.DB,
	identityRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
	errorLogRepo repository.ErrorLogRepository,
	storage client.StorageClient,
	logger *log.Logger,
) AdminService {
	return &adminServiceImpl{
		db:           db,
		identityRepo: identityRepo,
		sessionRepo:  sessionRepo,
		shopRepo:     shopRepo,
		productRepo:  productRepo,
		errorLogRepo: errorLogRepo,
		storage:      storage,
		logger:       logger,
	}
}

func (s *adminServiceImpl) ListIdentities(ctx context.Context, kind model.IdentityKind) ([]*model.Identity, error) {
	identities, err := s.identityRepo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", kind, err)
	}
	return identities, nil
}

func (s *adminServiceImpl) VerifySeller(ctx context.Context, sellerID string) error {
	if err := s.identityRepo.MarkVerified(ctx, model.KindSeller, sellerID); err != nil {
		return storeErr(err, "verify seller", "seller")
	}
	return nil
}

// DeleteBuyer removes the account and signs it out everywhere. Orders and
// reviews stay as history.
func (s *adminServiceImpl) DeleteBuyer(ctx context.Context, buyerID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.sessionRepo.DeleteByIdentity(ctx, tx, buyerID); err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		return s.identityRepo.Delete(ctx, tx, model.KindBuyer, buyerID)
	})
	if err != nil {
		return storeErr(err, "delete buyer", "buyer")
	}

	s.logger.Infoj(log.JSON{"msg": "buyer deleted", "buyer": buyerID})
	return nil
}

// DeleteSeller removes the account together with every product it owns in
// one transaction and closes its shop. Product images are removed after
// commit; a failed image delete is logged and left behind.
func (s *adminServiceImpl) DeleteSeller(ctx context.Context, sellerID string) error {
	var products []*model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.identityRepo.LockForUpdate(ctx, tx, sellerID); err != nil {
			return err
		}

		var err error
		products, err = s.productRepo.DeleteByClient(ctx, tx, sellerID)
		if err != nil {
			return fmt.Errorf("delete products: %w", err)
		}
		if err := s.shopRepo.Retire(ctx, tx, sellerID); err != nil {
			return fmt.Errorf("retire shop: %w", err)
		}
		if err := s.sessionRepo.DeleteByIdentity(ctx, tx, sellerID); err != nil {
			return fmt.Errorf("delete sessions: %w", err)
		}
		return s.identityRepo.Delete(ctx, tx, model.KindSeller, sellerID)
	})
	if err != nil {
		return storeErr(err, "delete seller", "seller")
	}

	for _, product := range products {
		for _, url := range product.Images {
			if _, err := s.storage.Delete(ctx, url); err != nil {
				s.logger.Warnj(log.JSON{"msg": "delete product image", "product": product.ID, "url": url, "error": err.Error()})
			}
		}
	}

	s.logger.Infoj(log.JSON{"msg": "seller deleted", "seller": sellerID, "products": len(products)})
	return nil
}

func (s *adminServiceImpl) ListProducts(ctx context.Context) ([]*model.Product, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *adminServiceImpl) ToggleProduct(ctx context.Context, productID string) (*model.Product, error) {
	product, err := s.productRepo.ToggleActive(ctx, productID)
	if err != nil {
		return nil, storeErr(err, "toggle product", "product")
	}
	return product, nil
}

func (s *adminServiceImpl) ListErrorLogs(ctx context.Context) ([]*model.ErrorLog, error) {
	entries, err := s.errorLogRepo.ListRecent(ctx, errorLogPageSize)
	if err != nil {
		return nil, fmt.Errorf("list error logs: %w", err)
	}
	return entries, nil
}
