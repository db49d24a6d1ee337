// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

type cerror string

func (e cerror) Error() string {
	return string(e)
}

// Is reports whether target is the category this sentinel belongs to
func (e cerror) Is(target error) bool {
	t, ok := target.(cerror)
	if !ok {
		return false
	}
	c, ok := categories[e]
	return ok && c == t
}

// Error categories. Every error returned by this module matches exactly one of
// these with errors.Is
const (
	// A value was built outside of its permitted range, or was structurally
	// forbidden. Raised by constructors, never deferred to encode time
	ErrValidation = cerror("coap: Validation failed")

	// The bytes being decoded do not form a valid message
	ErrMalformed = cerror("coap: Malformed message")

	// The encoder was asked to produce something the wire format cannot carry
	ErrInternal = cerror("coap: Internal invariant violated")
)

const (
	// Numeric value outside of its range
	ErrOutOfRange = cerror("coap: Value out of range")

	// Length of a string or opaque value outside of its range
	ErrLengthOutOfRange = cerror("coap: Length out of range")

	// Value is within range but forbidden (e.g. an Uri-Path of "..")
	ErrInvalidValue = cerror("coap: Invalid value")

	// Attempt to read past the end of the buffer
	ErrOutOfBounds = cerror("coap: Read out of bounds")

	// Version field of a UDP header is not 1
	ErrUnsupportedVersion = cerror("coap: Unsupported version")

	// Option delta or length nibble uses the reserved value 15
	ErrInvalidOption = cerror("coap: Invalid option delta or length")

	// Option number outside of every known band
	ErrUnknownOption = cerror("coap: Unknown option number")

	// String option value is not valid UTF-8
	ErrInvalidUTF8 = cerror("coap: Invalid UTF-8")

	// Token length field greater than 8
	ErrInvalidTokenLength = cerror("coap: Invalid token length")

	// Payload marker present but followed by no payload
	ErrEmptyPayload = cerror("coap: Payload marker followed by empty payload")

	// OSCORE option value does not have a valid structure
	ErrInvalidOSCORE = cerror("coap: Invalid OSCORE option value")

	// Header fields are inconsistent with the buffer
	ErrInvalidHeader = cerror("coap: Invalid header")

	// TCP frame longer than the reader is configured to accept
	ErrFrameTooLarge = cerror("coap: Frame too large")

	// Token byte width does not fit in the TKL field
	ErrTokenWidth = cerror("coap: Token width does not fit TKL")

	// Content longer than the TCP extended length can describe
	ErrContentTooLarge = cerror("coap: Content too large")

	// uint option value wider than the encoder supports
	ErrValueTooLarge = cerror("coap: Uint option value too large")
)

var categories = map[cerror]cerror{
	ErrOutOfRange:       ErrValidation,
	ErrLengthOutOfRange: ErrValidation,
	ErrInvalidValue:     ErrValidation,

	ErrOutOfBounds:        ErrMalformed,
	ErrUnsupportedVersion: ErrMalformed,
	ErrInvalidOption:      ErrMalformed,
	ErrUnknownOption:      ErrMalformed,
	ErrInvalidUTF8:        ErrMalformed,
	ErrInvalidTokenLength: ErrMalformed,
	ErrEmptyPayload:       ErrMalformed,
	ErrInvalidOSCORE:      ErrMalformed,
	ErrInvalidHeader:      ErrMalformed,
	ErrFrameTooLarge:      ErrMalformed,

	ErrTokenWidth:      ErrInternal,
	ErrContentTooLarge: ErrInternal,
	ErrValueTooLarge:   ErrInternal,
}

// Category returns the category sentinel err belongs to, or nil
func Category(err error) error {
	for _, c := range []cerror{ErrValidation, ErrMalformed, ErrInternal} {
		if stderrors.Is(err, c) {
			return c
		}
	}
	return nil
}

// RangeError is returned when a numeric value lies outside of [Min, Max]
type RangeError struct {
	What     string
	Value    uint64
	Min, Max uint64
}

func (err RangeError) Is(target error) bool {
	return target == ErrOutOfRange || target == ErrValidation
}

func (err RangeError) Error() string {
	return fmt.Sprintf("%s: %s %d not in [%d, %d]", ErrOutOfRange, err.What, err.Value, err.Min, err.Max)
}

// LengthError is returned when the length of a string or opaque value lies
// outside of [Min, Max]
type LengthError struct {
	What     string
	Actual   int
	Min, Max int
}

func (err LengthError) Is(target error) bool {
	return target == ErrLengthOutOfRange || target == ErrValidation
}

func (err LengthError) Error() string {
	return fmt.Sprintf("%s: %s length %d not in [%d, %d]", ErrLengthOutOfRange, err.What, err.Actual, err.Min, err.Max)
}

// BoundsError is returned by the byte reader on underrun
type BoundsError struct {
	Pos, Want, Avail int
}

func (err BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds || target == ErrMalformed
}

func (err BoundsError) Error() string {
	return fmt.Sprintf("%s (want %d bytes at %d, %d available)", ErrOutOfBounds, err.Want, err.Pos, err.Avail)
}

// MalformedError marks a validation failure found in decoded bytes. It
// matches ErrMalformed instead of ErrValidation, and otherwise matches
// whatever the underlying error matches
type MalformedError struct {
	Underlying error
}

func (err MalformedError) Is(target error) bool {
	switch target {
	case ErrMalformed:
		return true
	case ErrValidation, ErrInternal:
		return false
	}
	return stderrors.Is(err.Underlying, target)
}

// As exposes the underlying typed errors (RangeError, LengthError). There is
// no Unwrap, so the validation category stays hidden
func (err MalformedError) As(target interface{}) bool {
	return stderrors.As(err.Underlying, target)
}

func (err MalformedError) Error() string {
	return err.Underlying.Error()
}

// Malformed recategorises a validation error raised while decoding as
// malformed input. Other errors are returned unchanged
func Malformed(err error) error {
	if err == nil || Category(err) != ErrValidation {
		return err
	}
	return MalformedError{err}
}

// OptionError records which option a decode or encode error occurred in
type OptionError struct {
	Underlying error
	Number     uint32
	Index      int
}

func (err OptionError) Unwrap() error {
	return err.Underlying
}

func (err OptionError) Error() string {
	uerr := strings.TrimPrefix(err.Underlying.Error(), "coap: ")
	return fmt.Sprintf("coap: %s (at option #%d, number %d)", uerr, err.Index, err.Number)
}

// WithOption wraps err with the position and number of the option being
// processed. Returns nil if err is nil
func WithOption(err error, index int, number uint32) error {
	if err == nil {
		return nil
	}

	switch err := err.(type) {
	case OptionError:
		return err
	default:
		return OptionError{err, number, index}
	}
}
