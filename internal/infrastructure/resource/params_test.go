package resource

import (
	"net/url"
	"testing"
	"time"

	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

// TestParamNames_Encode tests that each resource sends its own wire names
func TestParamNames_Encode(t *testing.T) {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		params   ParamNames
		filters  map[string]any
		expected url.Values
	}{
		{
			name:    "serials use product_id and date_from",
			params:  Serials.Spec.Params,
			filters: map[string]any{FilterProduct: shared.ID("3"), FilterDateFrom: from, FilterStatus: "in_stock"},
			expected: url.Values{
				"page": {"2"}, "limit": {"20"}, "search": {"SN00"},
				"product_id": {"3"}, "date_from": {"2024-05-01"}, "status": {"in_stock"},
			},
		},
		{
			name:    "registrations use from/to",
			params:  Registrations.Spec.Params,
			filters: map[string]any{FilterDateFrom: "2024-05-01", FilterDateTo: "2024-05-31"},
			expected: url.Values{
				"page": {"2"}, "limit": {"20"}, "search": {"SN00"},
				"from": {"2024-05-01"}, "to": {"2024-05-31"},
			},
		},
		{
			name:    "purchase orders send distributor as supplier_id",
			params:  PurchaseOrders.Spec.Params,
			filters: map[string]any{FilterDistributor: 9},
			expected: url.Values{
				"page": {"2"}, "limit": {"20"}, "search": {"SN00"},
				"supplier_id": {"9"},
			},
		},
		{
			name:    "unmapped keys pass through",
			params:  Branches.Spec.Params,
			filters: map[string]any{"region": "north"},
			expected: url.Values{
				"page": {"2"}, "limit": {"20"}, "search": {"SN00"},
				"region": {"north"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := shared.NewListQuery(20)
			q.SetSearch("SN00")
			for k, v := range tt.filters {
				q.SetFilter(k, v)
			}
			q.Page = 2
			assert.Equal(t, tt.expected, tt.params.Encode(q))
		})
	}
}

// TestParamNames_EncodeFilters tests that export parameters carry no pagination
func TestParamNames_EncodeFilters(t *testing.T) {
	q := shared.NewListQuery(20)
	q.SetFilter(FilterStatus, "completed")
	v := Orders.Spec.Params.EncodeFilters(q)
	assert.Equal(t, url.Values{"status": {"completed"}}, v)
}

// TestParamNames_Decode tests decoding wire names back to logical keys
func TestParamNames_Decode(t *testing.T) {
	v := url.Values{
		"page":        {"3"},
		"limit":       {"10"},
		"search":      {"iphone"},
		"supplier_id": {"4"},
		"from":        {"2024-01-01"},
		"status":      {""},
	}
	q := PurchaseOrders.Spec.Params.Decode(v, 20)

	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 10, q.PageSize)
	assert.Equal(t, "iphone", q.Search)
	assert.Equal(t, map[string]any{FilterDistributor: "4", FilterDateFrom: "2024-01-01"}, q.Filters)
}

// TestParamNames_DecodeDefaults tests invalid paging values fall back to defaults
func TestParamNames_DecodeDefaults(t *testing.T) {
	q := DefaultParamNames().Decode(url.Values{"page": {"-1"}, "limit": {"abc"}}, 25)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 25, q.PageSize)
	assert.Empty(t, q.Filters)
}
