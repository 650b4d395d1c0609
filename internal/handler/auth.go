package handler

import (
	"net/http"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/config"
	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/middleware"
	"bakerlane-api/internal/model"
	"bakerlane-api/internal/service"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService service.AuthService
	cfg         config.Session
}

func NewAuthHandler(authService service.AuthService, cfg config.Session) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

func kindParam(c echo.Context) (model.IdentityKind, error) {
	kind := model.IdentityKind(c.Param("kind"))
	if !kind.Valid() {
		return "", apperr.NotFound("account kind")
	}
	return kind, nil
}

func (h *AuthHandler) Register(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}

	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	identity, err := h.authService.Register(c.Request().Context(), kind, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, identity)
}

func (h *AuthHandler) Login(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}

	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	session, err := h.authService.Login(c.Request().Context(), kind, req.Contact, req.Password)
	if err != nil {
		return err
	}

	setSessionCookie(c, middleware.SessionCookie, session.ID, session.ExpiresAt, h.cfg.CookieSecure)
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged in"})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	token := middleware.SessionToken(c, middleware.SessionCookie)
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return err
	}

	clearSessionCookie(c, middleware.SessionCookie, h.cfg.CookieSecure)
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.Identity(c))
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req dto.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	identity, err := h.authService.UpdateProfile(c.Request().Context(), middleware.Identity(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, identity)
}

func (h *AuthHandler) UpdateAddress(c echo.Context) error {
	var req dto.UpdateAddressRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	identity, err := h.authService.UpdateAddress(c.Request().Context(), middleware.Identity(c), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, identity)
}

func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req dto.UpdatePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	err := h.authService.UpdatePassword(c.Request().Context(), middleware.Identity(c), middleware.SessionID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "password updated"})
}

func (h *AuthHandler) SendOTP(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}

	var req dto.SendOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.SendOTP(c.Request().Context(), kind, req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "if the address is registered, a code has been sent"})
}

func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	kind, err := kindParam(c)
	if err != nil {
		return err
	}

	var req dto.VerifyOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.VerifyOTP(c.Request().Context(), kind, req.Email, req.Code); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "email verified"})
}
