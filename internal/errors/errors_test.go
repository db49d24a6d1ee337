// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategories(t *testing.T) {
	t.Parallel()

	for err, cat := range categories {
		assert.True(t, stderrors.Is(err, cat), "%s should be %s", err, cat)
		assert.Equal(t, cat, Category(err))

		for _, other := range []cerror{ErrValidation, ErrMalformed, ErrInternal} {
			if other != cat {
				assert.False(t, stderrors.Is(err, other), "%s should not be %s", err, other)
			}
		}
	}

	assert.Nil(t, Category(io.EOF))
	assert.Nil(t, Category(nil))
	assert.False(t, stderrors.Is(ErrOutOfRange, ErrLengthOutOfRange))
}

func TestTypedErrors(t *testing.T) {
	t.Parallel()

	var err error = RangeError{What: "Observe", Value: 1 << 24, Min: 0, Max: 1<<24 - 1}
	assert.True(t, stderrors.Is(err, ErrOutOfRange))
	assert.Equal(t, ErrValidation, Category(err))
	assert.Equal(t, "coap: Value out of range: Observe 16777216 not in [0, 16777215]", err.Error())

	err = LengthError{What: "ETag", Actual: 9, Min: 1, Max: 8}
	assert.True(t, stderrors.Is(err, ErrLengthOutOfRange))
	assert.Equal(t, ErrValidation, Category(err))
	assert.Equal(t, "coap: Length out of range: ETag length 9 not in [1, 8]", err.Error())

	err = BoundsError{Pos: 4, Want: 2, Avail: 1}
	assert.True(t, stderrors.Is(err, ErrOutOfBounds))
	assert.Equal(t, ErrMalformed, Category(err))
	assert.Equal(t, "coap: Read out of bounds (want 2 bytes at 4, 1 available)", err.Error())
}

func TestWithOption(t *testing.T) {
	t.Parallel()

	assert.Nil(t, WithOption(nil, 0, 1))

	err := WithOption(ErrInvalidUTF8, 2, 11)
	assert.True(t, stderrors.Is(err, ErrInvalidUTF8))
	assert.Equal(t, ErrMalformed, Category(err))
	assert.Equal(t, "coap: Invalid UTF-8 (at option #2, number 11)", err.Error())

	// The innermost position wins
	assert.Equal(t, err, WithOption(err, 5, 60))

	wrapped := fmt.Errorf("context: %w", err)
	var oe OptionError
	assert.True(t, stderrors.As(wrapped, &oe))
	assert.Equal(t, uint32(11), oe.Number)
}

func TestMalformed(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Malformed(nil))
	assert.Equal(t, ErrOutOfBounds, Malformed(ErrOutOfBounds))
	assert.Equal(t, ErrValueTooLarge, Malformed(ErrValueTooLarge))

	re := RangeError{What: "Hop-Limit", Value: 0, Min: 1, Max: 255}
	err := Malformed(re)
	assert.Equal(t, MalformedError{re}, err)
	assert.Equal(t, re.Error(), err.Error())
	assert.Equal(t, ErrMalformed, Category(err))
	assert.True(t, stderrors.Is(err, ErrOutOfRange))
	assert.False(t, stderrors.Is(err, ErrValidation))
	assert.False(t, stderrors.Is(err, ErrInternal))

	var got RangeError
	assert.True(t, stderrors.As(err, &got))
	assert.Equal(t, re, got)

	wrapped := WithOption(Malformed(ErrInvalidValue), 0, 11)
	assert.Equal(t, ErrMalformed, Category(wrapped))
	assert.True(t, stderrors.Is(wrapped, ErrInvalidValue))
	assert.Equal(t, "coap: Invalid value (at option #0, number 11)", wrapped.Error())
}
