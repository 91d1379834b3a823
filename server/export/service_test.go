package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mugiwara-labs/receiptsense/store"
	storetest "github.com/mugiwara-labs/receiptsense/store/test"
)

func seedReceipt(t *testing.T, ts *store.Store, userID, structured string) *store.Receipt {
	t.Helper()
	ctx := context.Background()
	receipt, err := ts.CreateReceipt(ctx, &store.Receipt{UserID: userID})
	require.NoError(t, err)
	completed := store.ReceiptStatusCompleted
	require.NoError(t, ts.UpdateReceipt(ctx, &store.UpdateReceipt{
		ID:               receipt.ID,
		StructuredOutput: &structured,
		Status:           &completed,
	}))
	return receipt
}

const sampleStructured = `{
	"shop_name": "ACME STORE",
	"total_amount": "93.00",
	"expense_category": "Groceries",
	"items": ["milk", "bread"],
	"reimbursable_items": ["milk"]
}`

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	receipt := seedReceipt(t, ts, "user-1", sampleStructured)

	svc := NewService(ts)
	data, err := svc.CSV(ctx, "user-1")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeaders, records[0])
	assert.Equal(t, receipt.ID, records[1][0])
	assert.Equal(t, "ACME STORE", records[1][1])
	assert.Equal(t, "93.00", records[1][2])
	assert.Equal(t, "Groceries", records[1][3])
	assert.Equal(t, "milk; bread", records[1][4])
	assert.Equal(t, "milk", records[1][5])
}

func TestExportXLSX(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	seedReceipt(t, ts, "user-1", sampleStructured)

	svc := NewService(ts)
	data, err := svc.XLSX(ctx, "user-1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Receipts")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Shop Name", rows[0][1])
	assert.Equal(t, "ACME STORE", rows[1][1])
}

func TestExportSkipsOtherUsersAndPending(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)
	seedReceipt(t, ts, "someone-else", sampleStructured)
	_, err := ts.CreateReceipt(ctx, &store.Receipt{UserID: "user-1"})
	require.NoError(t, err)

	svc := NewService(ts)
	data, err := svc.CSV(ctx, "user-1")
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1, "only the header row")
}

func TestExportRequiresUser(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)

	svc := NewService(ts)
	_, err := svc.CSV(ctx, "")
	assert.Error(t, err)
}
