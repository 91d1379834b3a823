package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mugiwara-labs/receiptsense/server/extraction"
	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
	"github.com/mugiwara-labs/receiptsense/server/suggestion"
	"github.com/mugiwara-labs/receiptsense/store"
)

type smartActionsResponse struct {
	Success     bool                               `json:"success"`
	ReceiptID   string                             `json:"receipt_id"`
	SmartAction map[string]*suggestion.SmartAction `json:"smartactions"`
	GeneratedAt string                             `json:"generated_at"`
}

// GetSmartActions combines a receipt's structured data with the user's latest
// preferences to produce suggestions.
func (s *APIV1Service) GetSmartActions(c echo.Context) error {
	receiptID, ok := requireQueryParam(c, "receipt_id")
	if !ok {
		return replyError(c, svcerrors.InvalidArgument("receipt_id is required"))
	}
	userID, ok := requireQueryParam(c, "user_id")
	if !ok {
		return replyError(c, svcerrors.InvalidArgument("user_id is required"))
	}

	ctx := c.Request().Context()
	receipt, err := s.Store.GetReceipt(ctx, receiptID)
	if err != nil {
		return replyError(c, svcerrors.UpstreamUnavailable("failed to load receipt", err))
	}
	if receipt == nil {
		return replyError(c, svcerrors.NotFound("receipt not found: "+receiptID))
	}
	if receipt.StructuredOutput == "" {
		return replyError(c, svcerrors.InvalidArgument("receipt has no structured output yet"))
	}

	structured, err := extraction.Parse(receipt.StructuredOutput)
	if err != nil {
		return replyError(c, err)
	}

	preferences := map[string]*store.PreferenceEntry{}
	if record, err := s.Store.FindLatestPreferenceRecord(ctx, userID); err != nil {
		return replyError(c, svcerrors.UpstreamUnavailable("failed to load preferences", err))
	} else if record != nil {
		preferences = record.Preferences
	}

	actions := s.SuggestionService.Generate(ctx, structured, preferences)

	return c.JSON(http.StatusOK, smartActionsResponse{
		Success:     true,
		ReceiptID:   receiptID,
		SmartAction: actions,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	})
}
