package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/middleware"
	"bakerlane-api/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	maxImageSize   = 5 << 20
	maxImageCount  = 5
	imageFormField = "images"
)

type ShopHandler struct {
	shopService service.ShopService
}

func NewShopHandler(shopService service.ShopService) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
	}
}

func (h *ShopHandler) GetMyShop(c echo.Context) error {
	shop, err := h.shopService.GetMyShop(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shop)
}

func (h *ShopHandler) UpdateShop(c echo.Context) error {
	var req dto.UpdateShopRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	shop, err := h.shopService.UpdateShop(c.Request().Context(), middleware.Identity(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shop)
}

func (h *ShopHandler) ToggleShopActive(c echo.Context) error {
	shop, err := h.shopService.ToggleShopActive(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shop)
}

func (h *ShopHandler) AddProduct(c echo.Context) error {
	var req dto.CreateProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.shopService.AddProduct(c.Request().Context(), middleware.Identity(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, product)
}

func (h *ShopHandler) UpdateProduct(c echo.Context) error {
	var req dto.UpdateProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	product, err := h.shopService.UpdateProduct(c.Request().Context(), middleware.Identity(c), c.Param("id"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *ShopHandler) DeleteProduct(c echo.Context) error {
	if err := h.shopService.DeleteProduct(c.Request().Context(), middleware.Identity(c), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "product deleted"})
}

func (h *ShopHandler) AddProductImages(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperr.Validation("expected a multipart form", nil)
	}

	files := form.File[imageFormField]
	if len(files) > maxImageCount {
		return apperr.Validation("too many images", map[string]string{imageFormField: "max"})
	}

	uploads := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		upload, err := readImage(fh)
		if err != nil {
			return err
		}
		uploads = append(uploads, upload)
	}

	product, err := h.shopService.AddProductImages(c.Request().Context(), middleware.Identity(c), c.Param("id"), uploads)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func readImage(fh *multipart.FileHeader) (service.Upload, error) {
	if fh.Size > maxImageSize {
		return service.Upload{}, apperr.Validation("image too large", map[string]string{imageFormField: "max"})
	}

	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, apperr.Validation("unreadable image", nil)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return service.Upload{}, apperr.Validation("unreadable image", nil)
	}
	if len(data) > maxImageSize {
		return service.Upload{}, apperr.Validation("image too large", map[string]string{imageFormField: "max"})
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return service.Upload{}, apperr.Validation("only images are accepted", map[string]string{imageFormField: "image"})
	}

	return service.Upload{Data: data, ContentType: contentType}, nil
}

func (h *ShopHandler) ListMyProducts(c echo.Context) error {
	products, err := h.shopService.ListMyProducts(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ShopHandler) ListShopProducts(c echo.Context) error {
	products, err := h.shopService.ListShopProducts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *ShopHandler) GetShop(c echo.Context) error {
	shop, err := h.shopService.GetShop(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, shop)
}

func (h *ShopHandler) GetProduct(c echo.Context) error {
	product, err := h.shopService.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}
