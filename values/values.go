package values

import (
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type identifies the scalar family a Value belongs to. The tag is fixed
// at construction and never changes for the lifetime of the Value.
type Type uint8

const (
	TypeNull Type = iota
	TypeBool
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeInt128
	TypeUInt8
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeUInt128
	TypeFloat32
	TypeFloat64
	TypeDecimal
	TypeString
	TypeBlob
	TypeDate32
	TypeTime64
	TypeTimestamp
	TypeInterval
	TypeUUID
)

var typeNames = map[Type]string{
	TypeNull:      "null",
	TypeBool:      "bool",
	TypeInt8:      "int8",
	TypeInt16:     "int16",
	TypeInt32:     "int32",
	TypeInt64:     "int64",
	TypeInt128:    "int128",
	TypeUInt8:     "uint8",
	TypeUInt16:    "uint16",
	TypeUInt32:    "uint32",
	TypeUInt64:    "uint64",
	TypeUInt128:   "uint128",
	TypeFloat32:   "float32",
	TypeFloat64:   "float64",
	TypeDecimal:   "decimal",
	TypeString:    "string",
	TypeBlob:      "blob",
	TypeDate32:    "date32",
	TypeTime64:    "time64",
	TypeTimestamp: "timestamp",
	TypeInterval:  "interval",
	TypeUUID:      "uuid",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// TimeUnit is the precision of a Time64 or Timestamp value.
type TimeUnit uint8

const (
	Second TimeUnit = iota
	Millisecond
	Microsecond
	Nanosecond
)

// Nanos converts a value expressed in the unit to nanoseconds.
func (u TimeUnit) Nanos(value int64) int64 {
	switch u {
	case Second:
		return value * 1_000_000_000
	case Millisecond:
		return value * 1_000_000
	case Microsecond:
		return value * 1_000
	default:
		return value
	}
}

func (u TimeUnit) String() string {
	switch u {
	case Second:
		return "s"
	case Millisecond:
		return "ms"
	case Microsecond:
		return "us"
	default:
		return "ns"
	}
}

// IntervalValue is the elapsed time in months, days and nanoseconds
// between two points in time. The three components are independent; a
// month is not a fixed number of days.
type IntervalValue struct {
	Months int32
	Days   int32
	Nanos  int64
}

// Value is a single scalar crossing the driver boundary, either as a
// bound parameter or as a cell extracted from a result column.
//
// The zero Value is null.
type Value struct {
	typ  Type
	unit TimeUnit
	num  uint64
	str  string
	blob []byte
	big  *big.Int
	dec  decimal.Decimal
	ivl  IntervalValue
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool returns a bool Value.
func Bool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{typ: TypeBool, num: n}
}

// Int8 returns an int8 Value.
func Int8(v int8) Value { return Value{typ: TypeInt8, num: uint64(v)} }

// Int16 returns an int16 Value.
func Int16(v int16) Value { return Value{typ: TypeInt16, num: uint64(v)} }

// Int32 returns an int32 Value.
func Int32(v int32) Value { return Value{typ: TypeInt32, num: uint64(v)} }

// Int64 returns an int64 Value.
func Int64(v int64) Value { return Value{typ: TypeInt64, num: uint64(v)} }

// UInt8 returns a uint8 Value.
func UInt8(v uint8) Value { return Value{typ: TypeUInt8, num: uint64(v)} }

// UInt16 returns a uint16 Value.
func UInt16(v uint16) Value { return Value{typ: TypeUInt16, num: uint64(v)} }

// UInt32 returns a uint32 Value.
func UInt32(v uint32) Value { return Value{typ: TypeUInt32, num: uint64(v)} }

// UInt64 returns a uint64 Value.
func UInt64(v uint64) Value { return Value{typ: TypeUInt64, num: v} }

var (
	minInt128  = new(big.Int).Lsh(big.NewInt(-1), 127)
	maxInt128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	maxUInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

// Int128 returns a 128-bit signed integer Value. It returns an error if
// v does not fit in 128 bits.
func Int128(v *big.Int) (Value, error) {
	if v.Cmp(minInt128) < 0 || v.Cmp(maxInt128) > 0 {
		return Value{}, fmt.Errorf("values: %s overflows int128", v.String())
	}
	return Value{typ: TypeInt128, big: new(big.Int).Set(v)}, nil
}

// UInt128 returns a 128-bit unsigned integer Value. It returns an error
// if v is negative or does not fit in 128 bits.
func UInt128(v *big.Int) (Value, error) {
	if v.Sign() < 0 || v.Cmp(maxUInt128) > 0 {
		return Value{}, fmt.Errorf("values: %s overflows uint128", v.String())
	}
	return Value{typ: TypeUInt128, big: new(big.Int).Set(v)}, nil
}

// Float32 returns a float32 Value.
func Float32(v float32) Value {
	return Value{typ: TypeFloat32, num: uint64(math.Float32bits(v))}
}

// Float64 returns a float64 Value.
func Float64(v float64) Value {
	return Value{typ: TypeFloat64, num: math.Float64bits(v)}
}

// Decimal returns a fixed-point decimal Value.
func Decimal(v decimal.Decimal) Value { return Value{typ: TypeDecimal, dec: v} }

// String returns a utf8 string Value.
func String(v string) Value { return Value{typ: TypeString, str: v} }

// Blob returns a binary Value.
func Blob(v []byte) Value { return Value{typ: TypeBlob, blob: v} }

// Date32 returns a date Value holding the number of days elapsed since
// the UNIX epoch.
func Date32(days int32) Value { return Value{typ: TypeDate32, num: uint64(days)} }

// Date returns a date Value for the calendar date of t.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	days := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
	return Date32(int32(days))
}

// Time64 returns a time-of-day Value holding the time elapsed since
// midnight in the given unit.
func Time64(unit TimeUnit, v int64) Value {
	return Value{typ: TypeTime64, unit: unit, num: uint64(v)}
}

// Timestamp returns a timestamp Value holding the time elapsed since the
// UNIX epoch (UTC) in the given unit.
func Timestamp(unit TimeUnit, v int64) Value {
	return Value{typ: TypeTimestamp, unit: unit, num: uint64(v)}
}

// Time returns a microsecond-precision timestamp Value for t.
func Time(t time.Time) Value {
	return Timestamp(Microsecond, t.UnixMicro())
}

// Interval returns an interval Value.
func Interval(months, days int32, nanos int64) Value {
	return Value{typ: TypeInterval, ivl: IntervalValue{Months: months, Days: days, Nanos: nanos}}
}

// Duration returns an interval Value spanning d.
func Duration(d time.Duration) Value {
	return Interval(0, 0, d.Nanoseconds())
}

// UUID returns a uuid Value. The nil UUID maps to null.
func UUID(v uuid.UUID) Value {
	if v == uuid.Nil {
		return Null()
	}
	return Value{typ: TypeUUID, str: v.String()}
}

// Of converts a native Go value into a Value. It returns an error for
// types that have no representation in the value model.
func Of(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int8:
		return Int8(x), nil
	case int16:
		return Int16(x), nil
	case int32:
		return Int32(x), nil
	case int64:
		return Int64(x), nil
	case int:
		return Int64(int64(x)), nil
	case uint8:
		return UInt8(x), nil
	case uint16:
		return UInt16(x), nil
	case uint32:
		return UInt32(x), nil
	case uint64:
		return UInt64(x), nil
	case uint:
		return UInt64(uint64(x)), nil
	case float32:
		return Float32(x), nil
	case float64:
		return Float64(x), nil
	case string:
		return String(x), nil
	case []byte:
		return Blob(x), nil
	case *big.Int:
		return Int128(x)
	case decimal.Decimal:
		return Decimal(x), nil
	case time.Time:
		return Time(x), nil
	case time.Duration:
		return Duration(x), nil
	case uuid.UUID:
		return UUID(x), nil
	case IntervalValue:
		return Interval(x.Months, x.Days, x.Nanos), nil
	default:
		return Value{}, fmt.Errorf("values: cannot convert %T into a value", v)
	}
}

// MustOf is Of for values known to be convertible. It panics otherwise.
func MustOf(v any) Value {
	value, err := Of(v)
	if err != nil {
		panic(err)
	}
	return value
}

// Type returns the tag assigned at construction.
func (v Value) Type() Type { return v.typ }

// IsNull reports whether the Value is null.
func (v Value) IsNull() bool { return v.typ == TypeNull }

// String renders the value as text. This rendering doubles as the
// fallback representation used by backends that cannot bind a type
// natively, so it must stay parseable by the engines (RFC 3339
// timestamps, plain decimal notation, hex blobs).
func (v Value) String() string {
	switch v.typ {
	case TypeNull:
		return "null"
	case TypeBool:
		if v.num != 0 {
			return "true"
		}
		return "false"
	case TypeInt8:
		return fmt.Sprintf("%d", int8(v.num))
	case TypeInt16:
		return fmt.Sprintf("%d", int16(v.num))
	case TypeInt32:
		return fmt.Sprintf("%d", int32(v.num))
	case TypeInt64:
		return fmt.Sprintf("%d", int64(v.num))
	case TypeInt128, TypeUInt128:
		return v.big.String()
	case TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64:
		return fmt.Sprintf("%d", v.num)
	case TypeFloat32:
		return fmt.Sprintf("%v", math.Float32frombits(uint32(v.num)))
	case TypeFloat64:
		return fmt.Sprintf("%v", math.Float64frombits(v.num))
	case TypeDecimal:
		return v.dec.String()
	case TypeString, TypeUUID:
		return v.str
	case TypeBlob:
		return hex.EncodeToString(v.blob)
	case TypeDate32:
		days := int64(int32(v.num))
		return time.Unix(days*86400, 0).UTC().Format("2006-01-02")
	case TypeTime64:
		return formatTimeOfDay(v.unit, int64(v.num))
	case TypeTimestamp:
		return formatTimestamp(v.unit, int64(v.num))
	case TypeInterval:
		return formatInterval(v.ivl)
	default:
		return fmt.Sprintf("value(%s)", v.typ)
	}
}

func formatTimestamp(unit TimeUnit, value int64) string {
	switch unit {
	case Second:
		return time.Unix(value, 0).UTC().Format("2006-01-02T15:04:05Z")
	case Millisecond:
		return time.UnixMilli(value).UTC().Format("2006-01-02T15:04:05.000Z")
	case Microsecond:
		return time.UnixMicro(value).UTC().Format("2006-01-02T15:04:05.000000Z")
	default:
		return time.Unix(0, value).UTC().Format("2006-01-02T15:04:05.000000000Z")
	}
}

func formatTimeOfDay(unit TimeUnit, value int64) string {
	var secs, frac int64
	var width int
	switch unit {
	case Second:
		secs = value
	case Millisecond:
		secs, frac, width = value/1_000, value%1_000, 3
	case Microsecond:
		secs, frac, width = value/1_000_000, value%1_000_000, 6
	default:
		secs, frac, width = value/1_000_000_000, value%1_000_000_000, 9
	}
	base := fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	if width == 0 {
		return base
	}
	return fmt.Sprintf("%s.%0*d", base, width, frac)
}

func formatInterval(ivl IntervalValue) string {
	var parts []string
	appendUnit := func(singular string, value int64) {
		if value == 0 {
			return
		}
		name := singular
		if value != 1 && value != -1 {
			name += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", value, name))
	}
	appendUnit("month", int64(ivl.Months))
	appendUnit("day", int64(ivl.Days))
	nanos := ivl.Nanos
	appendUnit("hour", nanos/int64(time.Hour))
	nanos %= int64(time.Hour)
	appendUnit("minute", nanos/int64(time.Minute))
	nanos %= int64(time.Minute)
	appendUnit("second", nanos/int64(time.Second))
	nanos %= int64(time.Second)
	appendUnit("millisecond", nanos/int64(time.Millisecond))
	nanos %= int64(time.Millisecond)
	appendUnit("microsecond", nanos/int64(time.Microsecond))
	nanos %= int64(time.Microsecond)
	appendUnit("nanosecond", nanos)
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, " ")
}
