package math

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/z64scene/pkg/errs"
)

// TwosComplement encodes value into byteCount bytes. Unsigned encodings reject
// negative values and values wider than the width; signed encodings accept the
// signed range and return its two's complement bit pattern.
func TwosComplement(value int64, byteCount int, signed bool) (uint64, error) {
	if byteCount < 1 || byteCount > 8 {
		return 0, fmt.Errorf("invalid byte count %d", byteCount)
	}
	bits := uint(byteCount * 8)
	mask := uint64(1)<<bits - 1
	if bits == 64 {
		mask = ^uint64(0)
	}

	if signed {
		lo := -(int64(1) << (bits - 1))
		hi := int64(1)<<(bits-1) - 1
		if bits < 64 && (value < lo || value > hi) {
			return 0, errs.FieldOverflow("%d does not fit a signed %d-byte value", value, byteCount)
		}
		return uint64(value) & mask, nil
	}

	if value < 0 || (bits < 64 && uint64(value) > mask) {
		return 0, errs.FieldOverflow("%d does not fit an unsigned %d-byte value", value, byteCount)
	}
	return uint64(value), nil
}

// Field describes a packed bit field.
type Field struct {
	Name  string
	Shift uint
	Width uint
}

// Pack places value into the field, rejecting values wider than the field.
func (f Field) Pack(value int) (uint32, error) {
	limit := 1<<f.Width - 1
	if value < 0 || value > limit {
		return 0, errs.FieldOverflow("%s=%d exceeds %d-bit field", f.Name, value, f.Width)
	}
	return uint32(value) << f.Shift, nil
}

// ParseWord parses a C integer literal. Hexadecimal words are read as 32-bit
// two's complement so 0xFFFFFFFF yields -1.
func ParseWord(s string) (int32, error) {
	s = strings.TrimSpace(s)
	neg := false
	body := s
	if strings.HasPrefix(body, "-") {
		neg = true
		body = body[1:]
	}

	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		u, err := strconv.ParseUint(body[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("parsing hex word %q: %w", s, err)
		}
		v := int32(uint32(u))
		if neg {
			v = -v
		}
		return v, nil
	}

	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing word %q: %w", s, err)
	}
	return int32(v), nil
}

// ParseFloat parses a C float literal such as "45.0f".
func ParseFloat(s string) (float32, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "f")
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing float %q: %w", s, err)
	}
	return float32(v), nil
}

// FormatFloat renders a float32 as a C float literal that always has a decimal point.
func FormatFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s + "f"
}
