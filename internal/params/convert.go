package params

import "time"

// Value enumerates the types the typed extraction helpers can produce.
type Value interface {
	bool | int | string | []int | time.Time
}

// Get extracts key as T. Bool is false when absent; []int is an empty slice
// when absent (reported with false so callers can tell the difference).
func Get[T Value](p Params, key string) (T, bool) {
	var zero T
	var (
		out any
		ok  bool
	)

	switch any(zero).(type) {
	case bool:
		v := p.Bool(key)
		out, ok = v, v
	case int:
		v, found := p.Int(key)
		out, ok = v, found
	case string:
		v, found := p.String(key)
		out, ok = v, found
	case []int:
		out, ok = p.Ints(key), p.Has(key)
	case time.Time:
		v, found := p.Year(key)
		out, ok = v, found
	}

	typed, match := out.(T)
	if !match {
		return zero, false
	}
	return typed, ok
}
