package contracts

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Float is a numeric value that may be unknown.
// The zero value is unknown; unknown is never treated as 0.
type Float struct {
	v  float64
	ok bool
}

// Some returns a known value. Non-finite inputs (NaN, ±Inf) are unknown.
func Some(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}
	return Float{v: v, ok: true}
}

// Unknown returns an unknown value
func Unknown() Float {
	return Float{}
}

// Get returns the value and whether it is known
func (f Float) Get() (float64, bool) {
	return f.v, f.ok
}

// Known reports whether the value is known
func (f Float) Known() bool {
	return f.ok
}

// Or returns the value, or def when unknown
func (f Float) Or(def float64) float64 {
	if !f.ok {
		return def
	}
	return f.v
}

// Format renders the value with prec decimals, or marker when unknown
func (f Float) Format(prec int, marker string) string {
	if !f.ok {
		return marker
	}
	return strconv.FormatFloat(f.v, 'f', prec, 64)
}

// Gt compares two values; unknown when either side is unknown
func (f Float) Gt(o Float) Bool {
	if !f.ok || !o.ok {
		return Bool{}
	}
	return SomeBool(f.v > o.v)
}

// MarshalJSON encodes unknown as null
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.ok {
		return []byte("null"), nil
	}
	return json.Marshal(f.v)
}

// UnmarshalJSON decodes null as unknown
func (f *Float) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}

// Bool is a tri-state flag: true, false or unknown. The zero value is unknown.
type Bool struct {
	v  bool
	ok bool
}

// SomeBool returns a known flag
func SomeBool(v bool) Bool {
	return Bool{v: v, ok: true}
}

// UnknownBool returns an unknown flag
func UnknownBool() Bool {
	return Bool{}
}

// Get returns the flag and whether it is known
func (b Bool) Get() (bool, bool) {
	return b.v, b.ok
}

// Known reports whether the flag is known
func (b Bool) Known() bool {
	return b.ok
}

// True reports whether the flag is known and true
func (b Bool) True() bool {
	return b.ok && b.v
}

// False reports whether the flag is known and false
func (b Bool) False() bool {
	return b.ok && !b.v
}

// Format renders "true"/"false", or marker when unknown
func (b Bool) Format(marker string) string {
	if !b.ok {
		return marker
	}
	return strconv.FormatBool(b.v)
}

// MarshalJSON encodes unknown as null
func (b Bool) MarshalJSON() ([]byte, error) {
	if !b.ok {
		return []byte("null"), nil
	}
	return json.Marshal(b.v)
}

// UnmarshalJSON decodes null as unknown
func (b *Bool) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = Bool{}
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = SomeBool(v)
	return nil
}
