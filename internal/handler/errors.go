package handler

import (
	"context"
	"errors"
	"net/http"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/middleware"
	"bakerlane-api/internal/model"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const maxErrorLogMessage = 1024

// ErrorRecorder persists server-side request failures.
type ErrorRecorder interface {
	Create(ctx context.Context, entry *model.ErrorLog) error
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:        http.StatusBadRequest,
	apperr.KindUnauthorized:      http.StatusUnauthorized,
	apperr.KindForbidden:         http.StatusForbidden,
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindInvalidTransition: http.StatusBadRequest,
	apperr.KindUpstream:          http.StatusBadGateway,
}

// NewErrorHandler renders classified errors as JSON. Anything unclassified
// is logged and recorded with its request context and answered with a bare
// 500. Upstream failures are logged and recorded the same way. recorder may
// be nil.
func NewErrorHandler(logger *log.Logger, recorder ErrorRecorder) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			respond(c, he.Code, dto.ErrorResponse{Error: msg})
			return
		}

		var ae *apperr.Error
		if errors.As(err, &ae) {
			status, ok := kindStatus[ae.Kind]
			if ok {
				if ae.Kind == apperr.KindUpstream {
					logRequestError(logger, recorder, c, status, err)
				}
				respond(c, status, dto.ErrorResponse{Error: ae.Message, Code: ae.Code, Fields: ae.Fields})
				return
			}
		}

		logRequestError(logger, recorder, c, http.StatusInternalServerError, err)
		respond(c, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func respond(c echo.Context, status int, body dto.ErrorResponse) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func logRequestError(logger *log.Logger, recorder ErrorRecorder, c echo.Context, status int, err error) {
	req := c.Request()
	entry := &model.ErrorLog{
		ID:        uuid.NewString(),
		Route:     c.Path(),
		Method:    req.Method,
		Status:    status,
		Message:   truncate(err.Error(), maxErrorLogMessage),
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		UserAgent: truncate(req.UserAgent(), 255),
		IP:        c.RealIP(),
	}

	fields := log.JSON{
		"msg":    "request failed",
		"route":  entry.Route,
		"method": entry.Method,
		"status": status,
		"error":  err.Error(),
	}
	if identity := middleware.Identity(c); identity != nil {
		entry.IdentityID = identity.ID
		fields["identity"] = identity.ID
		fields["kind"] = identity.Kind
	}
	if admin := middleware.Admin(c); admin != nil {
		entry.AdminID = admin.ID
		fields["admin"] = admin.ID
	}
	logger.Errorj(fields)

	if recorder == nil {
		return
	}
	// the client may already be gone; the record is still wanted
	ctx := context.WithoutCancel(req.Context())
	if rerr := recorder.Create(ctx, entry); rerr != nil {
		logger.Errorj(log.JSON{"msg": "save error log", "route": entry.Route, "error": rerr.Error()})
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
