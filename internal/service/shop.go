package service

import (
	"context"
	"fmt"
	"strings"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/client"
	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/model"
	"bakerlane-api/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

// Upload is an image received from a seller.
type Upload struct {
	Data        []byte
	ContentType string
}

type ShopService interface {
	GetMyShop(ctx context.Context, seller *model.Identity) (*model.Shop, error)
	GetShop(ctx context.Context, shopID string) (*model.Shop, error)
	UpdateShop(ctx context.Context, seller *model.Identity, req *dto.UpdateShopRequest) (*model.Shop, error)
	ToggleShopActive(ctx context.Context, seller *model.Identity) (*model.Shop, error)

	AddProduct(ctx context.Context, seller *model.Identity, req *dto.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, seller *model.Identity, productID string, req *dto.UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, seller *model.Identity, productID string) error
	AddProductImages(ctx context.Context, seller *model.Identity, productID string, uploads []Upload) (*model.Product, error)
	ListMyProducts(ctx context.Context, seller *model.Identity) ([]*model.Product, error)
	ListShopProducts(ctx context.Context, shopID string) ([]*model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
}

type shopServiceImpl struct {
	db          *gorm.DB
	shopRepo    repository.ShopRepository
	productRepo repository.ProductRepository
	storage     client.StorageClient
	logger      *log.Logger
}

func NewShopService(
	db *gorm.DB,
	shopRepo repository.ShopRepository,
	productRepo repository.ProductRepository,
	storage client.StorageClient,
	logger *log.Logger,
) ShopService {
	return &shopServiceImpl{
		db:          db,
		shopRepo:    shopRepo,
		productRepo: productRepo,
		storage:     storage,
		logger:      logger,
	}
}

func (s *shopServiceImpl) GetMyShop(ctx context.Context, seller *model.Identity) (*model.Shop, error) {
	shop, err := s.shopRepo.FindByClientID(ctx, seller.ID)
	if err != nil {
		return nil, storeErr(err, "find shop", "shop")
	}
	return shop, nil
}

// GetShop is the public storefront, counters and rating included.
func (s *shopServiceImpl) GetShop(ctx context.Context, shopID string) (*model.Shop, error) {
	shop, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, storeErr(err, "find shop", "shop")
	}
	return shop, nil
}

func (s *shopServiceImpl) UpdateShop(ctx context.Context, seller *model.Identity, req *dto.UpdateShopRequest) (*model.Shop, error) {
	shop, err := s.GetMyShop(ctx, seller)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.ShopName != nil {
		name := strings.TrimSpace(*req.ShopName)
		fields["shop_name"] = name
		fields["slug"] = slug.Make(name)
	}
	if req.ShopDescription != nil {
		fields["shop_description"] = *req.ShopDescription
	}
	if req.ShopCategory != nil {
		fields["shop_category"] = *req.ShopCategory
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.City != nil {
		fields["city"] = *req.City
	}
	if req.Pincode != nil {
		fields["pincode"] = *req.Pincode
	}
	if links := req.SocialLinks; links != nil {
		if links.Instagram != nil {
			fields["social_instagram"] = *links.Instagram
		}
		if links.Whatsapp != nil {
			fields["social_whatsapp"] = *links.Whatsapp
		}
		if links.Website != nil {
			fields["social_website"] = *links.Website
		}
	}

	if err := s.shopRepo.Update(ctx, shop.ID, fields); err != nil {
		return nil, storeErr(err, "update shop", "shop")
	}
	return s.GetMyShop(ctx, seller)
}

func (s *shopServiceImpl) ToggleShopActive(ctx context.Context, seller *model.Identity) (*model.Shop, error) {
	shop, err := s.GetMyShop(ctx, seller)
	if err != nil {
		return nil, err
	}

	if err := s.shopRepo.SetActive(ctx, shop.ID, !shop.IsActive); err != nil {
		return nil, fmt.Errorf("toggle shop: %w", err)
	}
	shop.IsActive = !shop.IsActive
	return shop, nil
}

func (s *shopServiceImpl) AddProduct(ctx context.Context, seller *model.Identity, req *dto.CreateProductRequest) (*model.Product, error) {
	if !req.Price.IsPositive() {
		return nil, apperr.Validation("price must be positive", map[string]string{"price": "gt"})
	}
	category := model.ProductCategory(req.Category)
	if !category.Valid() {
		return nil, apperr.Validation("unknown category", map[string]string{"category": "oneof"})
	}

	shop, err := s.GetMyShop(ctx, seller)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		ID:                 uuid.NewString(),
		ShopID:             shop.ID,
		ClientID:           seller.ID,
		ProductName:        strings.TrimSpace(req.ProductName),
		ProductDescription: req.ProductDescription,
		Price:              req.Price,
		Images:             []string{},
		Stock:              req.Stock,
		UnitType:           model.UnitType(req.UnitType),
		UnitValue:          req.UnitValue,
		Category:           category,
		IsActive:           true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(ctx, tx, product); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if err := s.shopRepo.AdjustProductCount(ctx, tx, shop.ID, 1); err != nil {
			return fmt.Errorf("count product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// ownedProduct loads a product and checks the seller owns it.
func (s *shopServiceImpl) ownedProduct(ctx context.Context, seller *model.Identity, productID string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, storeErr(err, "find product", "product")
	}
	if product.ClientID != seller.ID {
		return nil, apperr.ErrForbidden.With("product belongs to another shop")
	}
	return product, nil
}

// UpdateProduct never touches existing orders; their line items keep the
// price they were placed at.
func (s *shopServiceImpl) UpdateProduct(ctx context.Context, seller *model.Identity, productID string, req *dto.UpdateProductRequest) (*model.Product, error) {
	if _, err := s.ownedProduct(ctx, seller, productID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.ProductName != nil {
		fields["product_name"] = strings.TrimSpace(*req.ProductName)
	}
	if req.ProductDescription != nil {
		fields["product_description"] = *req.ProductDescription
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, apperr.Validation("price must be positive", map[string]string{"price": "gt"})
		}
		fields["price"] = *req.Price
	}
	if req.Stock != nil {
		fields["stock"] = *req.Stock
	}
	if req.UnitType != nil {
		fields["unit_type"] = *req.UnitType
	}
	if req.UnitValue != nil {
		fields["unit_value"] = *req.UnitValue
	}
	if req.Category != nil {
		if !model.ProductCategory(*req.Category).Valid() {
			return nil, apperr.Validation("unknown category", map[string]string{"category": "oneof"})
		}
		fields["category"] = *req.Category
	}

	if err := s.productRepo.Update(ctx, productID, fields); err != nil {
		return nil, storeErr(err, "update product", "product")
	}
	return s.GetProduct(ctx, productID)
}

// DeleteProduct removes the row first; image cleanup afterwards is best
// effort and never fails the call.
func (s *shopServiceImpl) DeleteProduct(ctx context.Context, seller *model.Identity, productID string) error {
	product, err := s.ownedProduct(ctx, seller, productID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err := s.productRepo.Delete(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		if !deleted {
			return apperr.NotFound("product")
		}
		if err := s.shopRepo.AdjustProductCount(ctx, tx, product.ShopID, -1); err != nil {
			return fmt.Errorf("count product: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, url := range product.Images {
		if _, err := s.storage.Delete(ctx, url); err != nil {
			s.logger.Warnj(log.JSON{"msg": "delete product image", "product": productID, "url": url, "error": err.Error()})
		}
	}
	return nil
}

func (s *shopServiceImpl) AddProductImages(ctx context.Context, seller *model.Identity, productID string, uploads []Upload) (*model.Product, error) {
	if len(uploads) == 0 {
		return nil, apperr.Validation("at least one image is required", map[string]string{"images": "required"})
	}
	if _, err := s.ownedProduct(ctx, seller, productID); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		url, err := s.storage.Upload(ctx, upload.Data, upload.ContentType)
		if err != nil {
			return nil, apperr.ErrUpstream.With("image upload failed").Wrap(err)
		}
		urls = append(urls, url)
	}

	product, err := s.productRepo.AppendImages(ctx, productID, urls)
	if err != nil {
		return nil, storeErr(err, "attach images", "product")
	}
	return product, nil
}

func (s *shopServiceImpl) ListMyProducts(ctx context.Context, seller *model.Identity) ([]*model.Product, error) {
	shop, err := s.GetMyShop(ctx, seller)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListByShop(ctx, shop.ID, false)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *shopServiceImpl) ListShopProducts(ctx context.Context, shopID string) ([]*model.Product, error) {
	if _, err := s.shopRepo.FindByID(ctx, shopID); err != nil {
		return nil, storeErr(err, "find shop", "shop")
	}

	products, err := s.productRepo.ListByShop(ctx, shopID, true)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *shopServiceImpl) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, storeErr(err, "find product", "product")
	}
	return product, nil
}
