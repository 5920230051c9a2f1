// Package values defines the typed value model shared by every backend.
//
// A Value is a tagged scalar that can represent everything the supported
// engines can transport: null, booleans, signed and unsigned integers up
// to 128 bits, floats, arbitrary-precision decimals, strings, blobs,
// dates, times, timestamps, intervals and UUIDs.
//
// # Construction
//
// Values are built with the typed constructors or converted from native
// Go values with Of:
//
//	v := values.Int64(42)
//	v, err := values.Of(time.Now())
//
// # Extraction
//
// Extraction is lossless or it fails. Exact matches and widening numeric
// conversions succeed, everything else returns a TypeMismatchError:
//
//	n, err := v.Int64()        // ok for int8..int64, uint8..uint32
//	s, err := v.Text()         // ok for string and uuid tags only
//	x, err := values.As[int64](v)
//
// # Parameters
//
// Parameters carries positional or named bindings for a prepared
// statement. Backends receive Parameters through the driver contract
// and translate each Value to whatever their engine can bind natively,
// falling back to the textual rendering (Value.String) for types the
// engine has no native binding for.
package values
