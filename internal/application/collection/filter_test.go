package collection

import (
	"testing"
	"time"

	"github.com/erp/posconsole/internal/domain/inventory"
	"github.com/erp/posconsole/internal/domain/partner"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Điện Thoại", "dien thoai"},
		{"Chi nhánh Hà Nội", "chi nhanh ha noi"},
		{"NGUYỄN VĂN ĐỨC", "nguyen van duc"},
		{"SN0001", "sn0001"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fold(tt.input))
		})
	}
}

func TestMatchSearch(t *testing.T) {
	match := MatchSearch(
		func(b partner.Branch) string { return b.Name },
		func(b partner.Branch) string { return b.Address },
	)
	branch := partner.Branch{Name: "Chi nhánh Quận 1", Address: "12 Lê Lợi, TP. Hồ Chí Minh"}

	tests := []struct {
		search   string
		expected bool
	}{
		{"", true},
		{"   ", true},
		{"quan 1", true},
		{"QUẬN", true},
		{"le loi", true},
		{"ho chi minh", true},
		{"Hà Nội", false},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			q := shared.DefaultListQuery()
			q.SetSearch(tt.search)
			assert.Equal(t, tt.expected, match(branch, q))
		})
	}
}

func TestMatchStatusAndAll(t *testing.T) {
	pred := All(
		MatchStatus[inventory.SerialNumber](),
		MatchSearch(func(s inventory.SerialNumber) string { return s.SerialNumber }),
		nil,
	)
	sold := inventory.SerialNumber{SerialNumber: "SN0042", Status: inventory.SerialStatusSold}

	q := shared.DefaultListQuery()
	assert.True(t, pred(sold, q))

	q.SetFilter("status", "sold")
	assert.True(t, pred(sold, q))

	q.SetFilter("status", "in_stock")
	assert.False(t, pred(sold, q))

	q.SetFilter("status", nil)
	q.SetSearch("sn004")
	assert.True(t, pred(sold, q))
	q.SetSearch("SN9")
	assert.False(t, pred(sold, q))
}

func TestMatchFilter_NonStringValue(t *testing.T) {
	pred := MatchFilter("product", func(s inventory.SerialNumber) string { return s.ProductID.String() })
	serial := inventory.SerialNumber{ProductID: "15"}

	q := shared.DefaultListQuery()
	q.SetFilter("product", 15)
	assert.True(t, pred(serial, q))
	q.SetFilter("product", 16)
	assert.False(t, pred(serial, q))
}

// TestMatchDateRange tests inclusive date bounds given as strings or times
func TestMatchDateRange(t *testing.T) {
	type row struct{ at time.Time }
	match := MatchDateRange("date_from", "date_to", func(r row) time.Time { return r.at })
	at := row{at: time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)}

	tests := []struct {
		name     string
		filters  map[string]any
		expected bool
	}{
		{"no bounds", nil, true},
		{"from same day", map[string]any{"date_from": "2024-05-10"}, true},
		{"from later", map[string]any{"date_from": "2024-05-11"}, false},
		{"to same day includes whole day", map[string]any{"date_to": "2024-05-10"}, true},
		{"to earlier", map[string]any{"date_to": "2024-05-09"}, false},
		{"time bounds", map[string]any{
			"date_from": time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			"date_to":   time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		}, true},
		{"unparseable bound ignored", map[string]any{"date_from": "yesterday"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := shared.DefaultListQuery()
			for k, v := range tt.filters {
				q.SetFilter(k, v)
			}
			assert.Equal(t, tt.expected, match(at, q))
		})
	}
}
