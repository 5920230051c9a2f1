package values

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestZeroValueIsNull(t *testing.T) {
	var v Value
	if !v.IsNull() {
		t.Error("Expected zero Value to be null")
	}
	if v.Type() != TypeNull {
		t.Errorf("Expected TypeNull, got %v", v.Type())
	}
}

func TestConstructorTypes(t *testing.T) {
	cases := []struct {
		value Value
		typ   Type
	}{
		{Null(), TypeNull},
		{Bool(true), TypeBool},
		{Int8(-1), TypeInt8},
		{Int16(-1), TypeInt16},
		{Int32(-1), TypeInt32},
		{Int64(-1), TypeInt64},
		{UInt8(1), TypeUInt8},
		{UInt16(1), TypeUInt16},
		{UInt32(1), TypeUInt32},
		{UInt64(1), TypeUInt64},
		{Float32(1.5), TypeFloat32},
		{Float64(1.5), TypeFloat64},
		{String("hi"), TypeString},
		{Blob([]byte{1}), TypeBlob},
		{Date32(0), TypeDate32},
		{Interval(1, 2, 3), TypeInterval},
	}
	for _, c := range cases {
		if c.value.Type() != c.typ {
			t.Errorf("Expected %v, got %v", c.typ, c.value.Type())
		}
	}
}

func TestInt128Range(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	if _, err := Int128(max); err != nil {
		t.Errorf("Failed to accept max int128: %v", err)
	}
	over := new(big.Int).Add(max, big.NewInt(1))
	if _, err := Int128(over); err == nil {
		t.Error("Expected out of range error for 2^127")
	}
	if _, err := UInt128(big.NewInt(-1)); err == nil {
		t.Error("Expected error for negative uint128")
	}
}

func TestUUIDNilIsNull(t *testing.T) {
	v := UUID(uuid.Nil)
	if !v.IsNull() {
		t.Error("Expected nil UUID to map to null")
	}
	id := uuid.MustParse("67e55044-10b1-426f-9247-bb680e5fe0c8")
	v = UUID(id)
	if v.Type() != TypeUUID {
		t.Errorf("Expected TypeUUID, got %v", v.Type())
	}
}

func TestOf(t *testing.T) {
	cases := []struct {
		in  any
		typ Type
	}{
		{nil, TypeNull},
		{true, TypeBool},
		{int8(1), TypeInt8},
		{int16(1), TypeInt16},
		{int32(1), TypeInt32},
		{int64(1), TypeInt64},
		{int(1), TypeInt64},
		{uint8(1), TypeUInt8},
		{uint16(1), TypeUInt16},
		{uint32(1), TypeUInt32},
		{uint64(1), TypeUInt64},
		{float32(1), TypeFloat32},
		{float64(1), TypeFloat64},
		{"hi", TypeString},
		{[]byte{1}, TypeBlob},
		{big.NewInt(42), TypeInt128},
		{decimal.New(105, -1), TypeDecimal},
		{time.Unix(0, 0), TypeTimestamp},
		{time.Second, TypeInterval},
		{uuid.MustParse("67e55044-10b1-426f-9247-bb680e5fe0c8"), TypeUUID},
		{IntervalValue{Months: 1}, TypeInterval},
	}
	for _, c := range cases {
		v, err := Of(c.in)
		if err != nil {
			t.Fatalf("Failed to convert %T: %v", c.in, err)
		}
		if v.Type() != c.typ {
			t.Errorf("Expected %v for %T, got %v", c.typ, c.in, v.Type())
		}
	}
	if _, err := Of(struct{}{}); err == nil {
		t.Error("Expected error for unsupported type")
	}
}

func TestStringRendering(t *testing.T) {
	d, _ := Int128(big.NewInt(-170141183460469))
	cases := []struct {
		value Value
		want  string
	}{
		{Null(), "null"},
		{Bool(true), "true"},
		{Int32(-7), "-7"},
		{UInt64(math.MaxUint64), "18446744073709551615"},
		{d, "-170141183460469"},
		{Float64(2.5), "2.5"},
		{String("hello"), "hello"},
		{Blob([]byte{0xde, 0xad}), "dead"},
		{Decimal(decimal.New(10550, -2)), "105.5"},
		{Interval(2, 3, int64(4*time.Hour+20*time.Minute)), "2 months 3 days 4 hours 20 minutes"},
		{Interval(0, 0, 0), "0 seconds"},
		{Interval(-1, 0, 0), "-1 month"},
		{Interval(-2, -3, 0), "-2 months -3 days"},
		{Duration(-90 * time.Minute), "-1 hour -30 minutes"},
	}
	for _, c := range cases {
		if got := c.value.String(); got != c.want {
			t.Errorf("Expected %q, got %q", c.want, got)
		}
	}
}

func TestTimestampRendering(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	if got := Time(ts).String(); got != "2024-03-15T10:30:00.000000Z" {
		t.Errorf("Unexpected timestamp rendering %q", got)
	}
	if got := Timestamp(Second, ts.Unix()).String(); got != "2024-03-15T10:30:00Z" {
		t.Errorf("Unexpected timestamp rendering %q", got)
	}
	if got := Time64(Millisecond, 37_800_123).String(); got != "10:30:00.123" {
		t.Errorf("Unexpected time rendering %q", got)
	}
}
