package resource

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/erp/posconsole/internal/domain/shared"
)

// Logical filter keys understood by every resource
const (
	FilterStatus       = "status"
	FilterProduct      = "product"
	FilterCustomer     = "customer"
	FilterBranch       = "branch"
	FilterDistributor  = "distributor"
	FilterRegistration = "registration"
	FilterCategory     = "category"
	FilterType         = "type"
	FilterPayment      = "payment"
	FilterDateFrom     = "date_from"
	FilterDateTo       = "date_to"
)

// ParamNames maps logical query keys to the wire parameter names of one
// resource. Naming is not unified across the backend (product_id vs
// supplier_id, date_from vs from), so each resource declares its own.
type ParamNames struct {
	Page    string
	Limit   string
	Search  string
	Filters map[string]string
}

// DefaultParamNames returns page/limit/search with identity filter names
func DefaultParamNames() ParamNames {
	return ParamNames{
		Page:    "page",
		Limit:   "limit",
		Search:  "search",
		Filters: map[string]string{FilterStatus: "status"},
	}
}

// With returns a copy with additional filter mappings
func (p ParamNames) With(pairs ...string) ParamNames {
	c := p
	c.Filters = make(map[string]string, len(p.Filters)+len(pairs)/2)
	for k, v := range p.Filters {
		c.Filters[k] = v
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Filters[pairs[i]] = pairs[i+1]
	}
	return c
}

// WireName returns the wire name for a logical filter key. Unmapped keys are
// sent unchanged.
func (p ParamNames) WireName(key string) string {
	if name, ok := p.Filters[key]; ok {
		return name
	}
	return key
}

// Encode converts a query into URL parameters including pagination
func (p ParamNames) Encode(q shared.ListQuery) url.Values {
	v := p.EncodeFilters(q)
	if q.Page > 0 {
		v.Set(p.Page, strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set(p.Limit, strconv.Itoa(q.PageSize))
	}
	return v
}

// EncodeFilters converts search and filters into URL parameters, without pagination
func (p ParamNames) EncodeFilters(q shared.ListQuery) url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set(p.Search, q.Search)
	}
	for key, value := range q.Filters {
		s := formatValue(value)
		if s == "" {
			continue
		}
		v.Set(p.WireName(key), s)
	}
	return v
}

func formatValue(value any) string {
	switch x := value.(type) {
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02")
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format("2006-01-02")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Decode is the inverse of Encode: it rebuilds a logical query from URL
// parameters, used by servers speaking the same contract. Unknown parameters
// become filters under their wire name.
func (p ParamNames) Decode(v url.Values, defaultPageSize int) shared.ListQuery {
	q := shared.NewListQuery(defaultPageSize)
	logical := make(map[string]string, len(p.Filters))
	for k, wire := range p.Filters {
		logical[wire] = k
	}
	for wire, values := range v {
		if len(values) == 0 || values[0] == "" {
			continue
		}
		switch wire {
		case p.Page:
			if n, err := strconv.Atoi(values[0]); err == nil && n > 0 {
				q.Page = n
			}
		case p.Limit:
			if n, err := strconv.Atoi(values[0]); err == nil && n > 0 {
				q.PageSize = n
			}
		case p.Search:
			q.Search = values[0]
		default:
			key := wire
			if l, ok := logical[wire]; ok {
				key = l
			}
			q.Filters[key] = values[0]
		}
	}
	return q
}
