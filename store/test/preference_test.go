package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mugiwara-labs/receiptsense/store"
)

func TestPreferenceRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	isDefault := true
	days := 180
	preferences := map[string]*store.PreferenceEntry{
		"savings_pot": {
			ConfiguredAt: 1700000000,
			Enabled:      true,
			Value:        250.0,
			Currency:     "USD",
		},
		"preferred_language": {
			ConfiguredAt: 1700000000,
			Enabled:      true,
			Value:        "Default (English)",
			IsDefault:    &isDefault,
		},
		"receipt_expiry": {
			ConfiguredAt: 1700000000,
			Enabled:      true,
			Days:         &days,
		},
		"detect_similar_purchases": {
			ConfiguredAt: 1700000000,
			Enabled:      false,
		},
	}

	created, err := ts.CreatePreferenceRecord(ctx, &store.CreatePreferenceRecord{
		UserID:      "user-1",
		UserName:    "Nami",
		UserEmail:   "nami@example.com",
		Preferences: preferences,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.PreferenceID)
	assert.Equal(t, store.PreferenceRecordVersion, created.Version)
	assert.NotZero(t, created.CreatedTs)

	fetched, err := ts.GetPreferenceRecord(ctx, created.PreferenceID)
	require.NoError(t, err)
	require.NotNil(t, fetched)

	assert.Equal(t, "user-1", fetched.UserID)
	assert.Equal(t, "Nami", fetched.UserName)
	assert.Equal(t, created.CreatedTs, fetched.CreatedTs)
	require.Len(t, fetched.Preferences, 4)

	savings := fetched.Preferences["savings_pot"]
	require.NotNil(t, savings)
	assert.True(t, savings.Enabled)
	assert.Equal(t, 250.0, savings.Value)
	assert.Equal(t, "USD", savings.Currency)
	assert.Equal(t, int64(1700000000), savings.ConfiguredAt)

	lang := fetched.Preferences["preferred_language"]
	require.NotNil(t, lang)
	require.NotNil(t, lang.IsDefault)
	assert.True(t, *lang.IsDefault)

	expiry := fetched.Preferences["receipt_expiry"]
	require.NotNil(t, expiry)
	require.NotNil(t, expiry.Days)
	assert.Equal(t, 180, *expiry.Days)

	assert.False(t, fetched.Preferences["detect_similar_purchases"].Enabled)
}

func TestPreferenceRecordGetMissing(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	record, err := ts.GetPreferenceRecord(ctx, "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, record)

	record, err = ts.FindLatestPreferenceRecord(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestFindLatestPreferenceRecord(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	first, err := ts.CreatePreferenceRecord(ctx, &store.CreatePreferenceRecord{
		UserID:      "user-1",
		Preferences: map[string]*store.PreferenceEntry{"savings_pot": {Enabled: false}},
	})
	require.NoError(t, err)

	// Backdate the first record so creation order is unambiguous.
	_, err = ts.GetDriver().GetDB().ExecContext(ctx,
		"UPDATE preference SET created_ts = created_ts - 60 WHERE preference_id = ?", first.PreferenceID)
	require.NoError(t, err)

	second, err := ts.CreatePreferenceRecord(ctx, &store.CreatePreferenceRecord{
		UserID:      "user-1",
		Preferences: map[string]*store.PreferenceEntry{"savings_pot": {Enabled: true, Value: 99.0}},
	})
	require.NoError(t, err)

	_, err = ts.CreatePreferenceRecord(ctx, &store.CreatePreferenceRecord{
		UserID:      "user-2",
		Preferences: map[string]*store.PreferenceEntry{},
	})
	require.NoError(t, err)

	latest, err := ts.FindLatestPreferenceRecord(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.PreferenceID, latest.PreferenceID)
	assert.True(t, latest.Preferences["savings_pot"].Enabled)
}

func TestPreferenceRecordCreateIsNotIdempotent(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	create := func() string {
		record, err := ts.CreatePreferenceRecord(ctx, &store.CreatePreferenceRecord{
			UserID:      "user-1",
			Preferences: map[string]*store.PreferenceEntry{"export_format": {Enabled: true, Value: []any{"PDF"}}},
		})
		require.NoError(t, err)
		return record.PreferenceID
	}

	// Identical payloads still get distinct records.
	assert.NotEqual(t, create(), create())
}
