package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
)

// errorResponse is the uniform error body for all v1 endpoints.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Key   string `json:"key,omitempty"`
}

// replyError maps a service error to its HTTP status. Unknown errors become
// opaque 500s; the cause is logged, never leaked.
func replyError(c echo.Context, err error) error {
	if svcErr, ok := err.(*svcerrors.ServiceError); ok {
		body := errorResponse{
			Error: svcErr.Message,
			Code:  string(svcErr.Code),
			Key:   svcErr.Key,
		}
		switch svcErr.Code {
		case svcerrors.ErrCodeInvalidPreference, svcerrors.ErrCodeInvalidArgument:
			return c.JSON(http.StatusBadRequest, body)
		case svcerrors.ErrCodeNotFound:
			return c.JSON(http.StatusNotFound, body)
		case svcerrors.ErrCodeUpstreamFormat:
			return c.JSON(http.StatusBadRequest, body)
		case svcerrors.ErrCodeTimeout:
			return c.JSON(http.StatusGatewayTimeout, body)
		default:
			slog.Error("request failed", "path", c.Path(), "err", err)
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		}
	}
	slog.Error("request failed", "path", c.Path(), "err", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func requireQueryParam(c echo.Context, name string) (string, bool) {
	value := c.QueryParam(name)
	return value, value != ""
}
