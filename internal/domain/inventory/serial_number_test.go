package inventory

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialNumber_DecodeServerShape(t *testing.T) {
	payload := `{
		"id": 17,
		"serial_number": "SN0001",
		"product_id": 3,
		"product_name": "iPhone 15 Pro",
		"status": "in_stock",
		"import_price": 24500000,
		"created_at": "2024-05-01T08:00:00Z",
		"updated_at": "2024-05-01T08:00:00Z"
	}`

	var s SerialNumber
	require.NoError(t, json.Unmarshal([]byte(payload), &s))

	assert.Equal(t, "17", s.RecordID())
	assert.Equal(t, "in_stock", s.RecordStatus())
	assert.Equal(t, shared.ID("3"), s.ProductID)
	assert.True(t, s.ImportPrice.Equal(decimal.NewFromInt(24500000)))
	assert.True(t, s.IsInStock())
}

func TestSerialDeletePolicy(t *testing.T) {
	for _, status := range SerialStatuses() {
		err := SerialDeletePolicy.CheckDelete(SerialNumber{ID: "1", Status: status})
		if status == SerialStatusInStock {
			assert.NoError(t, err)
			continue
		}
		require.Error(t, err, status)
		assert.True(t, errors.Is(err, shared.ErrDeleteNotAllowed))
	}
}

func TestSerialStatus_IsValid(t *testing.T) {
	assert.True(t, SerialStatusSold.IsValid())
	assert.False(t, SerialStatus("lost").IsValid())
}

func TestSerialDraft_Validation(t *testing.T) {
	assert.Error(t, shared.ValidateDraft(SerialDraft{}))
	assert.Error(t, shared.ValidateDraft(SerialDraft{SerialNumber: "SN1", ProductID: "3", Status: "lost"}))
	assert.NoError(t, shared.ValidateDraft(SerialDraft{SerialNumber: "SN1", ProductID: "3"}))
}

func TestDraftFromSerial(t *testing.T) {
	s := SerialNumber{ID: "9", SerialNumber: "SN9", ProductID: "2", Status: SerialStatusSold, Notes: "x"}

	d := DraftFromSerial(s)

	assert.Equal(t, "SN9", d.SerialNumber)
	assert.Equal(t, shared.ID("2"), d.ProductID)
	assert.Equal(t, SerialStatusSold, d.Status)
}
