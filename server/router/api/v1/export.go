package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
)

// ExportReceipts streams the user's completed receipts as an XLSX workbook or
// a CSV file.
func (s *APIV1Service) ExportReceipts(c echo.Context) error {
	userID, ok := requireQueryParam(c, "user_id")
	if !ok {
		return replyError(c, svcerrors.InvalidArgument("user_id is required"))
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "xlsx"
	}

	ctx := c.Request().Context()
	filename := fmt.Sprintf("receipts_%s.%s", time.Now().UTC().Format("20060102"), format)

	switch format {
	case "xlsx":
		data, err := s.ExportService.XLSX(ctx, userID)
		if err != nil {
			return replyError(c, err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	case "csv":
		data, err := s.ExportService.CSV(ctx, userID)
		if err != nil {
			return replyError(c, err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Blob(http.StatusOK, "text/csv", data)
	default:
		return replyError(c, svcerrors.InvalidArgument("unsupported export format: "+format))
	}
}
