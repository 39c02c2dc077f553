// Package wire models, in Go, what the generated marshalling code does at
// runtime. Values are decoded JSON (any); every conversion reports the
// absent outcome as a false second result.
package wire

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strings"
	"time"
)

// blobLineLength matches the 64 character line option used when encoding blobs
const blobLineLength = 64

// Bool accepts JSON booleans only
func Bool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// String accepts JSON strings only
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Int accepts integral JSON numbers. Integer literals are read exactly;
// other forms such as 1e3 go through float64.
func Int(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}

	f, ok := number(v)
	if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Float accepts any JSON number, narrowed to single precision
func Float(v any) (float32, bool) {
	f, ok := number(v)
	return float32(f), ok
}

// Double accepts any JSON number
func Double(v any) (float64, bool) {
	return number(v)
}

// BlobToWire encodes b as standard base64, broken into 64 character lines
func BlobToWire(b []byte) string {
	enc := base64.StdEncoding.EncodeToString(b)
	if len(enc) <= blobLineLength {
		return enc
	}

	var sb strings.Builder
	for len(enc) > blobLineLength {
		sb.WriteString(enc[:blobLineLength])
		sb.WriteString("\r\n")
		enc = enc[blobLineLength:]
	}
	sb.WriteString(enc)
	return sb.String()
}

// BlobFromWire decodes a base64 string, skipping characters outside the alphabet
func BlobFromWire(v any) ([]byte, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}

	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+', r == '/', r == '=':
			return r
		}
		return -1
	}, s)

	b, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, false
	}
	return b, true
}

// TimeToWire returns milliseconds since the Unix epoch, truncated toward
// zero like Int(timeIntervalSince1970 * 1000)
func TimeToWire(t time.Time) int64 {
	ms := t.Unix()*1000 + int64(t.Nanosecond())/int64(time.Millisecond)
	if ms < 0 && t.Nanosecond()%int(time.Millisecond) != 0 {
		ms++
	}
	return ms
}

// TimeFromWire reads milliseconds since the Unix epoch from any JSON number
func TimeFromWire(v any) (time.Time, bool) {
	ms, ok := number(v)
	if !ok || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, false
	}
	whole := math.Floor(ms)
	sub := time.Duration(math.Round((ms - whole) * float64(time.Millisecond)))
	return time.UnixMilli(int64(whole)).Add(sub).UTC(), true
}

// Object accepts JSON objects
func Object(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// Array accepts JSON arrays and keeps only the elements elem accepts.
// A non-array is absent; an array of only malformed elements is empty, not absent.
func Array[T any](v any, elem func(any) (T, bool)) ([]T, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if decoded, ok := elem(item); ok {
			out = append(out, decoded)
		}
	}
	return out, true
}

// Dictionary accepts JSON objects and keeps only the values elem accepts
func Dictionary[T any](v any, elem func(any) (T, bool)) (map[string]T, bool) {
	m, ok := Object(v)
	if !ok {
		return nil, false
	}

	out := make(map[string]T, len(m))
	for key, value := range m {
		if decoded, ok := elem(value); ok {
			out[key] = decoded
		}
	}
	return out, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
