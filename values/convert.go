package values

import (
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TypeMismatchError is returned when a Value cannot be extracted as the
// requested type without loss. Extraction never truncates or
// reinterprets bits; a failed extraction leaves no side effects.
type TypeMismatchError struct {
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("values: type mismatch: expected %s, found %s", e.Expected, e.Actual)
}

func mismatch(expected string, actual Type) error {
	return &TypeMismatchError{Expected: expected, Actual: actual.String()}
}

// Bool extracts the value as a bool.
func (v Value) Bool() (bool, error) {
	if v.typ != TypeBool {
		return false, mismatch("bool", v.typ)
	}
	return v.num != 0, nil
}

// Int8 extracts the value as an int8. Only an exact tag match succeeds.
func (v Value) Int8() (int8, error) {
	if v.typ != TypeInt8 {
		return 0, mismatch("int8", v.typ)
	}
	return int8(v.num), nil
}

// Int16 extracts the value as an int16, widening from smaller integer
// tags when the conversion is lossless.
func (v Value) Int16() (int16, error) {
	switch v.typ {
	case TypeInt8:
		return int16(int8(v.num)), nil
	case TypeInt16:
		return int16(v.num), nil
	case TypeUInt8:
		return int16(v.num), nil
	default:
		return 0, mismatch("int16", v.typ)
	}
}

// Int32 extracts the value as an int32, widening from smaller integer
// tags when the conversion is lossless.
func (v Value) Int32() (int32, error) {
	switch v.typ {
	case TypeInt8:
		return int32(int8(v.num)), nil
	case TypeInt16:
		return int32(int16(v.num)), nil
	case TypeInt32:
		return int32(v.num), nil
	case TypeUInt8, TypeUInt16:
		return int32(v.num), nil
	default:
		return 0, mismatch("int32", v.typ)
	}
}

// Int64 extracts the value as an int64, widening from smaller integer
// tags when the conversion is lossless.
func (v Value) Int64() (int64, error) {
	switch v.typ {
	case TypeInt8:
		return int64(int8(v.num)), nil
	case TypeInt16:
		return int64(int16(v.num)), nil
	case TypeInt32:
		return int64(int32(v.num)), nil
	case TypeInt64:
		return int64(v.num), nil
	case TypeUInt8, TypeUInt16, TypeUInt32:
		return int64(v.num), nil
	default:
		return 0, mismatch("int64", v.typ)
	}
}

// Int128 extracts the value as a 128-bit signed integer, widening from
// any narrower integer tag.
func (v Value) Int128() (*big.Int, error) {
	switch v.typ {
	case TypeInt128:
		return new(big.Int).Set(v.big), nil
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		n, _ := v.Int64()
		return big.NewInt(n), nil
	case TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64:
		return new(big.Int).SetUint64(v.num), nil
	default:
		return nil, mismatch("int128", v.typ)
	}
}

// Uint8 extracts the value as a uint8. Only an exact tag match succeeds.
func (v Value) Uint8() (uint8, error) {
	if v.typ != TypeUInt8 {
		return 0, mismatch("uint8", v.typ)
	}
	return uint8(v.num), nil
}

// Uint16 extracts the value as a uint16, widening from uint8.
func (v Value) Uint16() (uint16, error) {
	switch v.typ {
	case TypeUInt8, TypeUInt16:
		return uint16(v.num), nil
	default:
		return 0, mismatch("uint16", v.typ)
	}
}

// Uint32 extracts the value as a uint32, widening from smaller unsigned
// tags.
func (v Value) Uint32() (uint32, error) {
	switch v.typ {
	case TypeUInt8, TypeUInt16, TypeUInt32:
		return uint32(v.num), nil
	default:
		return 0, mismatch("uint32", v.typ)
	}
}

// Uint64 extracts the value as a uint64, widening from smaller unsigned
// tags.
func (v Value) Uint64() (uint64, error) {
	switch v.typ {
	case TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64:
		return v.num, nil
	default:
		return 0, mismatch("uint64", v.typ)
	}
}

// Uint128 extracts the value as a 128-bit unsigned integer, widening
// from any narrower unsigned tag.
func (v Value) Uint128() (*big.Int, error) {
	switch v.typ {
	case TypeUInt128:
		return new(big.Int).Set(v.big), nil
	case TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64:
		return new(big.Int).SetUint64(v.num), nil
	default:
		return nil, mismatch("uint128", v.typ)
	}
}

// Float32 extracts the value as a float32. Only an exact tag match
// succeeds.
func (v Value) Float32() (float32, error) {
	if v.typ != TypeFloat32 {
		return 0, mismatch("float32", v.typ)
	}
	return math.Float32frombits(uint32(v.num)), nil
}

// Float64 extracts the value as a float64, widening from float32.
func (v Value) Float64() (float64, error) {
	switch v.typ {
	case TypeFloat32:
		return float64(math.Float32frombits(uint32(v.num))), nil
	case TypeFloat64:
		return math.Float64frombits(v.num), nil
	default:
		return 0, mismatch("float64", v.typ)
	}
}

// Decimal extracts the value as a decimal.
func (v Value) Decimal() (decimal.Decimal, error) {
	if v.typ != TypeDecimal {
		return decimal.Decimal{}, mismatch("decimal", v.typ)
	}
	return v.dec, nil
}

// Text extracts the value as a string. UUID values are rendered in their
// canonical textual form; any other tag is a mismatch.
func (v Value) Text() (string, error) {
	switch v.typ {
	case TypeString, TypeUUID:
		return v.str, nil
	default:
		return "", mismatch("string", v.typ)
	}
}

// Bytes extracts the value as a binary blob.
func (v Value) Bytes() ([]byte, error) {
	if v.typ != TypeBlob {
		return nil, mismatch("blob", v.typ)
	}
	return v.blob, nil
}

// Date32 extracts the value as days elapsed since the UNIX epoch.
func (v Value) Date32() (int32, error) {
	if v.typ != TypeDate32 {
		return 0, mismatch("date32", v.typ)
	}
	return int32(v.num), nil
}

// Time64 extracts the value as time-of-day in its declared unit.
func (v Value) Time64() (TimeUnit, int64, error) {
	if v.typ != TypeTime64 {
		return 0, 0, mismatch("time64", v.typ)
	}
	return v.unit, int64(v.num), nil
}

// Timestamp extracts the value as elapsed time since the UNIX epoch in
// its declared unit.
func (v Value) Timestamp() (TimeUnit, int64, error) {
	if v.typ != TypeTimestamp {
		return 0, 0, mismatch("timestamp", v.typ)
	}
	return v.unit, int64(v.num), nil
}

// Time extracts the value as a time.Time in UTC. Timestamp and Date32
// tags succeed, everything else is a mismatch.
func (v Value) Time() (time.Time, error) {
	switch v.typ {
	case TypeTimestamp:
		return time.Unix(0, v.unit.Nanos(int64(v.num))).UTC(), nil
	case TypeDate32:
		return time.Unix(int64(int32(v.num))*86400, 0).UTC(), nil
	default:
		return time.Time{}, mismatch("timestamp", v.typ)
	}
}

// Interval extracts the value as an interval.
func (v Value) Interval() (IntervalValue, error) {
	if v.typ != TypeInterval {
		return IntervalValue{}, mismatch("interval", v.typ)
	}
	return v.ivl, nil
}

// UUID extracts the value as a UUID.
func (v Value) UUID() (uuid.UUID, error) {
	if v.typ != TypeUUID {
		return uuid.Nil, mismatch("uuid", v.typ)
	}
	u, err := uuid.Parse(v.str)
	if err != nil {
		return uuid.Nil, fmt.Errorf("values: malformed uuid payload: %w", err)
	}
	return u, nil
}

// As extracts a Value as the Go type T, applying the same lossless
// conversion rules as the typed accessors.
func As[T any](v Value) (T, error) {
	var out T
	var err error
	switch p := any(&out).(type) {
	case *bool:
		*p, err = v.Bool()
	case *int8:
		*p, err = v.Int8()
	case *int16:
		*p, err = v.Int16()
	case *int32:
		*p, err = v.Int32()
	case *int64:
		*p, err = v.Int64()
	case *int:
		var n int64
		n, err = v.Int64()
		*p = int(n)
	case *uint8:
		*p, err = v.Uint8()
	case *uint16:
		*p, err = v.Uint16()
	case *uint32:
		*p, err = v.Uint32()
	case *uint64:
		*p, err = v.Uint64()
	case *float32:
		*p, err = v.Float32()
	case *float64:
		*p, err = v.Float64()
	case *string:
		*p, err = v.Text()
	case *[]byte:
		*p, err = v.Bytes()
	case **big.Int:
		*p, err = v.Int128()
	case *decimal.Decimal:
		*p, err = v.Decimal()
	case *time.Time:
		*p, err = v.Time()
	case *IntervalValue:
		*p, err = v.Interval()
	case *uuid.UUID:
		*p, err = v.UUID()
	case *Value:
		*p = v
	default:
		err = fmt.Errorf("values: unsupported target type %T", out)
	}
	return out, err
}
