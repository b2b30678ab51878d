package collection

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/erp/posconsole/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Predicate decides whether a record matches the query when filtering client-side
type Predicate[T any] func(record T, q shared.ListQuery) bool

// Fold lowercases s and removes Vietnamese diacritics so that "Điện thoại"
// matches "dien thoai"
func Fold(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			switch r {
			case 'đ', 'Đ':
				return 'd'
			}
			return r
		}),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	// casers are stateful and must not be shared between goroutines
	return cases.Fold().String(out)
}

// MatchSearch matches when the query search text is empty or is contained in
// any of the extracted fields, ignoring case and diacritics
func MatchSearch[T any](fields ...func(T) string) Predicate[T] {
	return func(record T, q shared.ListQuery) bool {
		needle := strings.TrimSpace(q.Search)
		if needle == "" {
			return true
		}
		needle = Fold(needle)
		for _, field := range fields {
			if strings.Contains(Fold(field(record)), needle) {
				return true
			}
		}
		return false
	}
}

// MatchStatus matches when no status filter is set or the record has that status
func MatchStatus[T shared.Record]() Predicate[T] {
	return MatchFilter[T]("status", func(r T) string { return r.RecordStatus() })
}

// MatchFilter matches when the filter key is unset or equals the extracted field
func MatchFilter[T any](key string, field func(T) string) Predicate[T] {
	return func(record T, q shared.ListQuery) bool {
		v, ok := q.Filter(key)
		if !ok {
			return true
		}
		return fmt.Sprint(v) == field(record)
	}
}

// MatchDateRange matches when the record date lies within the optional
// [fromKey, toKey] filter bounds. Bounds are time.Time values or 2006-01-02
// strings; the upper bound includes the whole day.
func MatchDateRange[T any](fromKey, toKey string, field func(T) time.Time) Predicate[T] {
	return func(record T, q shared.ListQuery) bool {
		at := field(record)
		if from, ok := dateBound(q, fromKey); ok && at.Before(from) {
			return false
		}
		if to, ok := dateBound(q, toKey); ok && !at.Before(to.AddDate(0, 0, 1)) {
			return false
		}
		return true
	}
}

func dateBound(q shared.ListQuery, key string) (time.Time, bool) {
	v, ok := q.Filter(key)
	if !ok {
		return time.Time{}, false
	}
	switch x := v.(type) {
	case time.Time:
		return x.Truncate(24 * time.Hour), true
	case string:
		t, err := time.Parse("2006-01-02", x)
		return t, err == nil
	}
	return time.Time{}, false
}

// All combines predicates; a record must match every one of them
func All[T any](preds ...Predicate[T]) Predicate[T] {
	return func(record T, q shared.ListQuery) bool {
		for _, p := range preds {
			if p != nil && !p(record, q) {
				return false
			}
		}
		return true
	}
}
