package handler

import (
	"net/http"

	"bakerlane-api/internal/config"
	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/middleware"
	"bakerlane-api/internal/model"
	"bakerlane-api/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	authService  service.AuthService
	adminService service.AdminService
	orderService service.OrderService
	cfg          config.Session
}

func NewAdminHandler(
	authService service.AuthService,
	adminService service.AdminService,
	orderService service.OrderService,
	cfg config.Session,
) *AdminHandler {
	return &AdminHandler{
		authService:  authService,
		adminService: adminService,
		orderService: orderService,
		cfg:          cfg,
	}
}

func (h *AdminHandler) Login(c echo.Context) error {
	var req dto.AdminLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.authService.AdminLogin(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	setSessionCookie(c, middleware.AdminSessionCookie, session.ID, session.ExpiresAt, h.cfg.CookieSecure)
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged in"})
}

func (h *AdminHandler) Logout(c echo.Context) error {
	token := middleware.SessionToken(c, middleware.AdminSessionCookie)
	if err := h.authService.AdminLogout(c.Request().Context(), token); err != nil {
		return err
	}

	clearSessionCookie(c, middleware.AdminSessionCookie, h.cfg.CookieSecure)
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out"})
}

func (h *AdminHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.Admin(c))
}

func (h *AdminHandler) ListBuyers(c echo.Context) error {
	return h.list(c, model.KindBuyer)
}

func (h *AdminHandler) ListSellers(c echo.Context) error {
	return h.list(c, model.KindSeller)
}

func (h *AdminHandler) list(c echo.Context, kind model.IdentityKind) error {
	identities, err := h.adminService.ListIdentities(c.Request().Context(), kind)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, identities)
}

func (h *AdminHandler) VerifySeller(c echo.Context) error {
	if err := h.adminService.VerifySeller(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "seller verified"})
}

func (h *AdminHandler) DeleteBuyer(c echo.Context) error {
	if err := h.adminService.DeleteBuyer(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "buyer deleted"})
}

func (h *AdminHandler) DeleteSeller(c echo.Context) error {
	if err := h.adminService.DeleteSeller(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "seller and products deleted"})
}

func (h *AdminHandler) ListProducts(c echo.Context) error {
	products, err := h.adminService.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}

func (h *AdminHandler) ListErrorLogs(c echo.Context) error {
	entries, err := h.adminService.ListErrorLogs(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, entries)
}

func (h *AdminHandler) ToggleProduct(c echo.Context) error {
	product, err := h.adminService.ToggleProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	var req dto.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), c.Param("id"), model.OrderStatus(req.Status))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}
