// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package ranges defines the unsigned bit-width ranges used to validate
// numeric fields of CoAP messages and options.
package ranges

import (
	"go.e43.eu/coap/internal/errors"
)

// Range is an inclusive range of unsigned integers
type Range struct {
	Min, Max uint64
}

// Canonical bit-width ranges
var (
	U4  = Range{0, 0xF}
	U8  = Range{0, 0xFF}
	U16 = Range{0, 0xFFFF}
	U24 = Range{0, 0xFFFFFF}
	U32 = Range{0, 0xFFFFFFFF}
)

// Contains reports whether v lies in r
func (r Range) Contains(v uint64) bool {
	return v >= r.Min && v <= r.Max
}

// From returns a copy of r with a different lower bound
func (r Range) From(min uint64) Range {
	return Range{min, r.Max}
}

// Check returns a RangeError describing what if v is outside of r
func (r Range) Check(what string, v uint64) error {
	if r.Contains(v) {
		return nil
	}
	return errors.RangeError{What: what, Value: v, Min: r.Min, Max: r.Max}
}

// CheckSigned is Check for signed inputs; negative values are always rejected
func (r Range) CheckSigned(what string, v int64) error {
	if v < 0 {
		return errors.RangeError{What: what, Value: uint64(v), Min: r.Min, Max: r.Max}
	}
	return r.Check(what, uint64(v))
}

// Bytes returns the number of bytes needed to hold r.Max
func (r Range) Bytes() int {
	n := 0
	for m := r.Max; m != 0; m >>= 8 {
		n++
	}
	return n
}

// CheckLen returns a LengthError describing what if n is not in [min, max]
func CheckLen(what string, n, min, max int) error {
	if n >= min && n <= max {
		return nil
	}
	return errors.LengthError{What: what, Actual: n, Min: min, Max: max}
}
