package handler

import (
	"net/http"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/middleware"
	"bakerlane-api/internal/model"
	"bakerlane-api/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// orderRequest turns the wire shape into exactly one order variant.
func orderRequest(req *dto.CreateOrderRequest) (service.OrderRequest, error) {
	hasItems := len(req.Items) > 0
	hasCustom := req.Customization != nil

	switch {
	case hasItems && hasCustom:
		return nil, apperr.Validation("send either items or customization, not both", map[string]string{"items": "excluded_with", "customization": "excluded_with"})
	case hasItems:
		lines := make([]service.OrderLine, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, service.OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		return service.StandardOrder{Items: lines}, nil
	case hasCustom:
		return service.CustomOrder{Customization: model.Customization{
			Weight: req.Customization.Weight,
			Flavor: req.Customization.Flavor,
			Theme:  req.Customization.Theme,
			Notes:  req.Customization.Notes,
		}}, nil
	default:
		return nil, apperr.Validation("items or customization is required", map[string]string{"items": "required_without", "customization": "required_without"})
	}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req dto.CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	orderReq, err := orderRequest(&req)
	if err != nil {
		return err
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), middleware.Identity(c), req.ShopID, orderReq)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	orders, err := h.orderService.GetMyOrders(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.orderService.GetOrder(c.Request().Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	if err := h.orderService.CancelOrder(c.Request().Context(), middleware.Identity(c), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "order cancelled"})
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	if err := h.orderService.DeleteOrder(c.Request().Context(), middleware.Identity(c), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "order deleted"})
}

func (h *OrderHandler) GetShopOrders(c echo.Context) error {
	orders, err := h.orderService.GetShopOrders(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) CountShopOrders(c echo.Context) error {
	count, err := h.orderService.CountShopOrders(c.Request().Context(), middleware.Identity(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}

func (h *OrderHandler) UpdateShopOrderStatus(c echo.Context) error {
	var req dto.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdateShopOrderStatus(c.Request().Context(), middleware.Identity(c), c.Param("id"), model.OrderStatus(req.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdatePrice(c echo.Context) error {
	var req dto.UpdatePriceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdatePrice(c.Request().Context(), middleware.Identity(c), c.Param("id"), req.TotalAmount)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}
