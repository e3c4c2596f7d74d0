package params

import (
	"strconv"
	"strings"
	"time"
)

// DefaultDelimiter separates fields in module and directive parameter lists.
const DefaultDelimiter = '|'

// Params is an ordered set of key/value fields parsed from a parameter string.
// Keys are stored ASCII-lowercased; values keep their original casing. A Params
// value is never mutated after Parse returns, so it can be shared freely.
type Params struct {
	keys   []string
	values map[string]string
}

// Parse splits raw on the default delimiter.
func Parse(raw string) Params {
	return ParseWith(raw, DefaultDelimiter)
}

// ParseWith splits raw on delim. Each field is either a bare flag (`key`) or a
// `key=value` pair. Empty fields are skipped and a repeated key keeps its first
// position but takes the last value.
func ParseWith(raw string, delim rune) Params {
	p := Params{values: map[string]string{}}
	if strings.TrimSpace(raw) == "" {
		return p
	}

	for _, field := range strings.Split(raw, string(delim)) {
		key, value, _ := strings.Cut(field, "=")
		key = foldKey(key)
		if key == "" {
			continue
		}
		if _, seen := p.values[key]; !seen {
			p.keys = append(p.keys, key)
		}
		p.values[key] = strings.TrimSpace(value)
	}
	return p
}

// ParseDirective splits off the leading directive name (the first field) and
// parses the remaining fields. The name keeps its casing but is trimmed.
func ParseDirective(raw string) (string, Params) {
	name, rest, found := strings.Cut(raw, string(DefaultDelimiter))
	name = strings.TrimSpace(name)
	if !found {
		return name, Params{values: map[string]string{}}
	}
	return name, Parse(rest)
}

// Len reports the number of distinct keys.
func (p Params) Len() int {
	return len(p.keys)
}

// Keys returns the keys in first-seen order.
func (p Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Has reports whether key was supplied, either as a flag or with a value.
func (p Params) Has(key string) bool {
	_, ok := p.values[foldKey(key)]
	return ok
}

// Lookup returns the raw value for key. Bare flags yield an empty value.
func (p Params) Lookup(key string) (string, bool) {
	value, ok := p.values[foldKey(key)]
	return value, ok
}

// String returns the value for key; an empty string is a valid, present value.
func (p Params) String(key string) (string, bool) {
	return p.Lookup(key)
}

// Bool reports true when the key is present, with or without a value.
func (p Params) Bool(key string) bool {
	return p.Has(key)
}

// Int parses the value as a base-10 integer.
func (p Params) Int(key string) (int, bool) {
	value, ok := p.Lookup(key)
	if !ok {
		return 0, false
	}
	return ToInt(value)
}

// Ints splits the value on commas and keeps the entries that parse as
// integers. A missing key yields an empty, non-nil slice.
func (p Params) Ints(key string) []int {
	value, ok := p.Lookup(key)
	if !ok {
		return []int{}
	}
	return ToInts(value)
}

// Year parses the `Y<digits>` shorthand into January 1st of that year (UTC).
func (p Params) Year(key string) (time.Time, bool) {
	value, ok := p.Lookup(key)
	if !ok {
		return time.Time{}, false
	}
	return ToYear(value)
}

// Encode renders the params back into `key=value|flag` form.
func (p Params) Encode() string {
	parts := make([]string, 0, len(p.keys))
	for _, key := range p.keys {
		value := p.values[key]
		if value == "" {
			parts = append(parts, key)
			continue
		}
		parts = append(parts, key+"="+value)
	}
	return strings.Join(parts, string(DefaultDelimiter))
}

// ToInt converts a raw value into an int. Invalid input yields false.
func ToInt(raw string) (int, bool) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return value, true
}

// ToInts converts a comma separated list, dropping non-numeric entries.
func ToInts(raw string) []int {
	out := []int{}
	for _, part := range strings.Split(raw, ",") {
		if value, ok := ToInt(part); ok {
			out = append(out, value)
		}
	}
	return out
}

// ToYear converts `Y2014` (or `y2014`) into 2014-01-01 UTC.
func ToYear(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 || (raw[0] != 'Y' && raw[0] != 'y') {
		return time.Time{}, false
	}
	digits := raw[1:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return time.Time{}, false
		}
	}
	year, err := strconv.Atoi(digits)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
}

func foldKey(key string) string {
	key = strings.TrimSpace(key)
	b := []byte(key)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
