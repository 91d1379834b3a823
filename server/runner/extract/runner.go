// Package extract provides the background runner that turns uploaded receipt
// images into raw text and structured JSON.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mugiwara-labs/receiptsense/internal/profile"
	"github.com/mugiwara-labs/receiptsense/plugin/ai"
	"github.com/mugiwara-labs/receiptsense/plugin/ocr"
	"github.com/mugiwara-labs/receiptsense/server/extraction"
	"github.com/mugiwara-labs/receiptsense/store"
)

const structuringPrompt = `You are an intelligent expense analyzer. Given the raw text from a receipt, extract:
1. The shop or merchant name.
2. The receipt total amount.
3. A list of item names.
4. An expense category like Food, Electronics, Groceries, Travel, etc.
5. Identify if any item is reimbursable.

Input Text:
'''
%s
'''
Output JSON format:
{
    "shop_name": "Merchant name",
    "total_amount": "Total as printed",
    "items": ["item1", "item2", ...],
    "expense_category": "Predicted category",
    "reimbursable_items": ["item1", "item3"]
}
Only return valid JSON.`

const (
	defaultInterval = 5 * time.Minute
	processTimeout  = 5 * time.Minute
	maxConcurrent   = 10
)

// Runner extracts text from receipt images and structures it with the oracle.
type Runner struct {
	store     *store.Store
	ocrClient *ocr.Client
	completer ai.Completer
	interval  time.Duration
	semaphore chan struct{}
}

// NewRunner creates an extraction runner. OCR is only wired when the profile
// enables it; a nil completer leaves receipts unstructured and failed.
func NewRunner(st *store.Store, p *profile.Profile, completer ai.Completer) *Runner {
	var ocrClient *ocr.Client
	if p != nil && p.OCREnabled {
		ocrClient = ocr.NewClient(&ocr.Config{
			TesseractPath: p.TesseractPath,
			DataPath:      p.TessdataPath,
			Languages:     p.OCRLanguages,
		})
	}
	return &Runner{
		store:     st,
		ocrClient: ocrClient,
		completer: completer,
		interval:  defaultInterval,
		semaphore: make(chan struct{}, maxConcurrent),
	}
}

// Run starts the background loop that retries receipts whose structuring
// failed after OCR succeeded.
func (r *Runner) Run(ctx context.Context) {
	if r.completer == nil {
		slog.Info("extract runner retry loop disabled (no AI provider configured)")
		return
	}
	slog.Info("extract runner started", "interval", r.interval)

	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("extract runner stopped")
			return
		}
	}
}

// RunOnce retries structuring for receipts stuck in PROCESSING with text
// already extracted.
func (r *Runner) RunOnce(ctx context.Context) {
	processing := store.ReceiptStatusProcessing
	receipts, err := r.store.ListReceipts(ctx, &store.FindReceipt{Status: &processing})
	if err != nil {
		slog.Error("failed to list processing receipts", "err", err)
		return
	}

	for _, receipt := range receipts {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if receipt.RawText == "" {
			continue
		}
		if err := r.structure(ctx, receipt.ID, receipt.RawText); err != nil {
			slog.Warn("failed to structure receipt", "receipt", receipt.ID, "err", err)
		}
	}
}

// ProcessReceiptAsync runs the full OCR+structuring pipeline for a freshly
// uploaded image without blocking the upload request. Processing is skipped
// when the concurrency limit is reached; the retry loop picks the receipt up
// later once its text is extracted.
func (r *Runner) ProcessReceiptAsync(receiptID string, imageData []byte, mimeType string) {
	select {
	case r.semaphore <- struct{}{}:
	default:
		slog.Warn("receipt processing skipped (concurrency limit reached)", "receipt", receiptID)
		return
	}

	go func() {
		defer func() { <-r.semaphore }()

		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()

		if err := r.process(ctx, receiptID, imageData, mimeType); err != nil {
			slog.Error("receipt processing failed", "receipt", receiptID, "err", err)
			failed := store.ReceiptStatusFailed
			if err := r.store.UpdateReceipt(ctx, &store.UpdateReceipt{ID: receiptID, Status: &failed}); err != nil {
				slog.Error("failed to mark receipt failed", "receipt", receiptID, "err", err)
			}
		}
	}()
}

func (r *Runner) process(ctx context.Context, receiptID string, imageData []byte, mimeType string) error {
	processing := store.ReceiptStatusProcessing
	if err := r.store.UpdateReceipt(ctx, &store.UpdateReceipt{ID: receiptID, Status: &processing}); err != nil {
		return err
	}

	if r.ocrClient == nil {
		return fmt.Errorf("OCR is not enabled")
	}
	if !r.ocrClient.IsSupported(mimeType) {
		return fmt.Errorf("unsupported image type: %s", mimeType)
	}

	rawText, err := r.ocrClient.ExtractText(ctx, imageData, mimeType)
	if err != nil {
		return fmt.Errorf("text extraction failed: %w", err)
	}
	if err := r.store.UpdateReceipt(ctx, &store.UpdateReceipt{ID: receiptID, RawText: &rawText}); err != nil {
		return err
	}
	slog.Info("extracted receipt text", "receipt", receiptID, "text_length", len(rawText))

	return r.structure(ctx, receiptID, rawText)
}

// structure asks the oracle to turn raw text into structured JSON and marks
// the receipt COMPLETED. The stored output is validated first so downstream
// readers never see malformed JSON.
func (r *Runner) structure(ctx context.Context, receiptID, rawText string) error {
	if r.completer == nil {
		return fmt.Errorf("no AI provider configured")
	}

	response, err := r.completer.Complete(ctx, fmt.Sprintf(structuringPrompt, rawText))
	if err != nil {
		return err
	}

	cleaned := ai.StripFence(response)
	if _, err := extraction.Parse(cleaned); err != nil {
		return err
	}

	completed := store.ReceiptStatusCompleted
	if err := r.store.UpdateReceipt(ctx, &store.UpdateReceipt{
		ID:               receiptID,
		StructuredOutput: &cleaned,
		Status:           &completed,
	}); err != nil {
		return err
	}
	slog.Info("structured receipt", "receipt", receiptID)
	return nil
}
