// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coap

import (
	"go.e43.eu/coap/internal/errors"
)

// Error categories
const (
	ErrValidation = errors.ErrValidation
	ErrMalformed  = errors.ErrMalformed
	ErrInternal   = errors.ErrInternal
)

const (
	ErrOutOfRange         = errors.ErrOutOfRange
	ErrLengthOutOfRange   = errors.ErrLengthOutOfRange
	ErrInvalidValue       = errors.ErrInvalidValue
	ErrOutOfBounds        = errors.ErrOutOfBounds
	ErrUnsupportedVersion = errors.ErrUnsupportedVersion
	ErrInvalidOption      = errors.ErrInvalidOption
	ErrUnknownOption      = errors.ErrUnknownOption
	ErrInvalidUTF8        = errors.ErrInvalidUTF8
	ErrInvalidTokenLength = errors.ErrInvalidTokenLength
	ErrEmptyPayload       = errors.ErrEmptyPayload
	ErrInvalidOSCORE      = errors.ErrInvalidOSCORE
	ErrInvalidHeader      = errors.ErrInvalidHeader
	ErrFrameTooLarge      = errors.ErrFrameTooLarge
	ErrTokenWidth         = errors.ErrTokenWidth
	ErrContentTooLarge    = errors.ErrContentTooLarge
	ErrValueTooLarge      = errors.ErrValueTooLarge
)

type (
	RangeError     = errors.RangeError
	LengthError    = errors.LengthError
	BoundsError    = errors.BoundsError
	OptionError    = errors.OptionError
	MalformedError = errors.MalformedError
)

// Category returns which of ErrValidation, ErrMalformed or ErrInternal err
// belongs to, or nil
func Category(err error) error {
	return errors.Category(err)
}
