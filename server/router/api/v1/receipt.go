package v1

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/labstack/echo/v4"

	"github.com/mugiwara-labs/receiptsense/plugin/ocr"
	"github.com/mugiwara-labs/receiptsense/plugin/storage"
	"github.com/mugiwara-labs/receiptsense/server/extraction"
	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
	"github.com/mugiwara-labs/receiptsense/store"
)

const (
	maxUploadBytes   = 20 << 20
	thumbnailMaxEdge = 512
)

type receiptResponse struct {
	ReceiptID    string         `json:"receipt_id"`
	Status       string         `json:"status"`
	ImageURL     string         `json:"image_url,omitempty"`
	ThumbnailURL string         `json:"thumbnail_url,omitempty"`
	FetchedAt    string         `json:"fetched_at"`
	Data         map[string]any `json:"data,omitempty"`
}

// UploadReceipt stores the uploaded image, creates a PENDING receipt, and
// kicks off asynchronous extraction.
func (s *APIV1Service) UploadReceipt(c echo.Context) error {
	userID, ok := requireQueryParam(c, "user_id")
	if !ok {
		return replyError(c, svcerrors.InvalidArgument("user_id is required"))
	}
	if s.ObjectStore == nil {
		return replyError(c, svcerrors.UpstreamUnavailable("object storage is not configured", nil))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return replyError(c, svcerrors.InvalidArgument("file is required"))
	}
	if fileHeader.Size > maxUploadBytes {
		return replyError(c, svcerrors.InvalidArgument("file is too large"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return replyError(c, svcerrors.InvalidArgument("failed to open uploaded file"))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return replyError(c, svcerrors.UpstreamUnavailable("failed to read uploaded file", err))
	}
	if int64(len(data)) > maxUploadBytes {
		return replyError(c, svcerrors.InvalidArgument("file is too large"))
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !ocr.IsSupportedMimeType(contentType) {
		return replyError(c, svcerrors.InvalidArgument("unsupported image type: "+contentType))
	}

	ctx := c.Request().Context()
	key := storage.ReceiptKey(fileHeader.Filename)
	imageURL, err := s.ObjectStore.Put(ctx, key, data, contentType)
	if err != nil {
		return replyError(c, svcerrors.UpstreamUnavailable("failed to store image", err))
	}

	thumbnailURL := s.storeThumbnail(ctx, key, data)

	receipt, err := s.Store.CreateReceipt(ctx, &store.Receipt{
		UserID:       userID,
		ImageURL:     imageURL,
		ThumbnailURL: thumbnailURL,
	})
	if err != nil {
		return replyError(c, svcerrors.UpstreamUnavailable("failed to create receipt", err))
	}

	if s.ExtractRunner != nil {
		s.ExtractRunner.ProcessReceiptAsync(receipt.ID, data, contentType)
	}

	return c.JSON(http.StatusOK, receiptResponse{
		ReceiptID:    receipt.ID,
		Status:       receipt.Status,
		ImageURL:     receipt.ImageURL,
		ThumbnailURL: receipt.ThumbnailURL,
		FetchedAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

// storeThumbnail generates and uploads a thumbnail. Failures degrade to an
// empty URL; the receipt still refers to the full image.
func (s *APIV1Service) storeThumbnail(ctx context.Context, receiptKey string, data []byte) string {
	if !s.thumbnailSemaphore.TryAcquire(1) {
		slog.Warn("thumbnail generation skipped (concurrency limit reached)", "key", receiptKey)
		return ""
	}
	defer s.thumbnailSemaphore.Release(1)

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Warn("failed to decode image for thumbnail", "key", receiptKey, "err", err)
		return ""
	}
	thumb := imaging.Fit(img, thumbnailMaxEdge, thumbnailMaxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		slog.Warn("failed to encode thumbnail", "key", receiptKey, "err", err)
		return ""
	}

	url, err := s.ObjectStore.Put(ctx, storage.ThumbnailKey(receiptKey), buf.Bytes(), "image/jpeg")
	if err != nil {
		slog.Warn("failed to store thumbnail", "key", receiptKey, "err", err)
		return ""
	}
	return url
}

// GetReceipt returns a receipt with its parsed structured data when
// extraction has completed. Reading a completed receipt refreshes its
// timestamp so "latest receipt" reflects recent activity.
func (s *APIV1Service) GetReceipt(c echo.Context) error {
	id := c.Param("id")
	receipt, err := s.Store.GetReceipt(c.Request().Context(), id)
	if err != nil {
		return replyError(c, svcerrors.UpstreamUnavailable("failed to load receipt", err))
	}
	if receipt == nil {
		return replyError(c, svcerrors.NotFound("receipt not found: "+id))
	}

	response := receiptResponse{
		ReceiptID:    receipt.ID,
		Status:       receipt.Status,
		ImageURL:     receipt.ImageURL,
		ThumbnailURL: receipt.ThumbnailURL,
		FetchedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if receipt.StructuredOutput != "" {
		data, err := extraction.Parse(receipt.StructuredOutput)
		if err != nil {
			return replyError(c, err)
		}
		response.Data = data
		if err := s.Store.TouchReceipt(c.Request().Context(), receipt.ID); err != nil {
			slog.Warn("failed to touch receipt", "receipt", receipt.ID, "err", err)
		}
	}
	return c.JSON(http.StatusOK, response)
}

// ListReceipts returns all of the user's receipts, newest first. Structured
// data is attached where extraction has completed; unparseable rows are
// returned without data rather than failing the whole listing.
func (s *APIV1Service) ListReceipts(c echo.Context) error {
	userID, ok := requireQueryParam(c, "user_id")
	if !ok {
		return replyError(c, svcerrors.InvalidArgument("user_id is required"))
	}

	receipts, err := s.Store.ListReceipts(c.Request().Context(), &store.FindReceipt{UserID: &userID})
	if err != nil {
		return replyError(c, svcerrors.UpstreamUnavailable("failed to list receipts", err))
	}

	items := make([]receiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		item := receiptResponse{
			ReceiptID:    receipt.ID,
			Status:       receipt.Status,
			ImageURL:     receipt.ImageURL,
			ThumbnailURL: receipt.ThumbnailURL,
			FetchedAt:    time.Now().UTC().Format(time.RFC3339),
		}
		if receipt.StructuredOutput != "" {
			if data, err := extraction.Parse(receipt.StructuredOutput); err == nil {
				item.Data = data
			} else {
				slog.Warn("skipping unparseable structured output", "receipt", receipt.ID, "err", err)
			}
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"receipts": items,
		"count":    len(items),
	})
}

// GetLatestReceipt returns the user's most recently updated receipt.
func (s *APIV1Service) GetLatestReceipt(c echo.Context) error {
	userID, ok := requireQueryParam(c, "user_id")
	if !ok {
		return replyError(c, svcerrors.InvalidArgument("user_id is required"))
	}

	receipt, err := s.Store.GetLatestReceipt(c.Request().Context(), userID)
	if err != nil {
		return replyError(c, svcerrors.UpstreamUnavailable("failed to load receipt", err))
	}
	if receipt == nil {
		return replyError(c, svcerrors.NotFound("no receipts found for user: "+userID))
	}

	response := receiptResponse{
		ReceiptID:    receipt.ID,
		Status:       receipt.Status,
		ImageURL:     receipt.ImageURL,
		ThumbnailURL: receipt.ThumbnailURL,
		FetchedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if receipt.StructuredOutput != "" {
		data, err := extraction.Parse(receipt.StructuredOutput)
		if err != nil {
			return replyError(c, err)
		}
		response.Data = data
	}
	return c.JSON(http.StatusOK, response)
}
