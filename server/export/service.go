// Package export produces downloadable XLSX and CSV workbooks of a user's
// processed receipts.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mugiwara-labs/receiptsense/server/extraction"
	svcerrors "github.com/mugiwara-labs/receiptsense/server/internal/errors"
	"github.com/mugiwara-labs/receiptsense/store"
)

var exportHeaders = []string{
	"Receipt ID",
	"Shop Name",
	"Total Amount",
	"Expense Category",
	"Items",
	"Reimbursable Items",
	"Uploaded",
}

// Service flattens completed receipts into tabular exports.
type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// row is one flattened receipt line.
type row struct {
	ID          string
	ShopName    string
	TotalAmount string
	Category    string
	Items       string
	Reimburse   string
	Uploaded    string
}

func (s *Service) rows(ctx context.Context, userID string) ([]row, error) {
	if userID == "" {
		return nil, svcerrors.InvalidArgument("user_id is required")
	}
	completed := store.ReceiptStatusCompleted
	receipts, err := s.store.ListReceipts(ctx, &store.FindReceipt{
		UserID: &userID,
		Status: &completed,
	})
	if err != nil {
		return nil, svcerrors.UpstreamUnavailable("failed to list receipts", err)
	}

	rows := make([]row, 0, len(receipts))
	for _, receipt := range receipts {
		r := row{
			ID:       receipt.ID,
			Uploaded: time.Unix(receipt.CreatedTs, 0).UTC().Format("2006-01-02"),
		}
		if receipt.StructuredOutput != "" {
			structured, err := extraction.Parse(receipt.StructuredOutput)
			if err != nil {
				slog.Warn("skipping unparseable receipt in export", "receipt", receipt.ID, "err", err)
				continue
			}
			r.ShopName = stringField(structured, "shop_name")
			r.TotalAmount = stringField(structured, "total_amount")
			r.Category = stringField(structured, "expense_category")
			r.Items = joinList(structured["items"])
			r.Reimburse = joinList(structured["reimbursable_items"])
		}
		rows = append(rows, r)
	}
	return rows, nil
}

// XLSX renders the user's completed receipts as an Excel workbook.
func (s *Service) XLSX(ctx context.Context, userID string) ([]byte, error) {
	rows, err := s.rows(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Receipts"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, svcerrors.UpstreamUnavailable("failed to build workbook", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, r := range rows {
		for col, v := range r.values() {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, svcerrors.UpstreamUnavailable("failed to write workbook", err)
	}
	return buf.Bytes(), nil
}

// CSV renders the user's completed receipts as CSV.
func (s *Service) CSV(ctx context.Context, userID string) ([]byte, error) {
	rows, err := s.rows(ctx, userID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, svcerrors.UpstreamUnavailable("failed to write csv", err)
	}
	for _, r := range rows {
		if err := w.Write(r.values()); err != nil {
			return nil, svcerrors.UpstreamUnavailable("failed to write csv", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, svcerrors.UpstreamUnavailable("failed to write csv", err)
	}
	return buf.Bytes(), nil
}

func (r row) values() []string {
	return []string{r.ID, r.ShopName, r.TotalAmount, r.Category, r.Items, r.Reimburse, r.Uploaded}
}

func stringField(structured map[string]any, field string) string {
	v, ok := structured[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func joinList(v any) string {
	items, ok := v.([]any)
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "; ")
}
