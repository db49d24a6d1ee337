// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "go.e43.eu/coap/internal/errors"
)

func TestReaderPrimitives(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06,
		0x07, 0x08, 0x09, 0x0A,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE,
		0x12, 0x34, 0x56,
		'h', 'i',
		0xAA, 0xBB,
	})

	b, err := r.ReadUByte()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), b)

	s, err := r.ReadUShort()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0203), s)

	u24, err := r.ReadUInt24()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x040506), u24)

	u, err := r.ReadUInt()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0708090A), u)

	l, err := r.ReadLong()
	require.NoError(t, err)
	assert.Equal(t, int64(-2), l)

	n, err := r.ReadNLong(3)
	require.NoError(t, err)
	assert.Equal(t, int64(0x123456), n)

	str, err := r.ReadUTF8(2)
	require.NoError(t, err)
	assert.Equal(t, "hi", str)

	assert.Equal(t, 23, r.Position())
	assert.False(t, r.Exhausted())
	assert.Equal(t, []byte{0xAA, 0xBB}, r.ReadRemaining())
	assert.True(t, r.Exhausted())
	assert.Nil(t, r.ReadRemaining())
}

func TestReaderBounds(t *testing.T) {
	t.Parallel()

	r := newReader([]byte{0x01, 0x02, 0x03, 0x04}, 1, 3)

	_, err := r.ReadUInt24()
	assert.True(t, errors.Is(err, cerrors.ErrOutOfBounds), "%v", err)
	assert.Equal(t, cerrors.BoundsError{Pos: 1, Want: 3, Avail: 2}, err)
	assert.Equal(t, 1, r.Position(), "failed reads leave the cursor alone")

	v, err := r.ReadUShort()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0203), v)

	_, err = r.ReadUByte()
	assert.True(t, errors.Is(err, cerrors.ErrMalformed))

	n, err := r.ReadNLong(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = r.ReadNLong(9)
	assert.True(t, errors.Is(err, cerrors.ErrValueTooLarge))

	_, err = r.ReadByteArray(-1)
	assert.True(t, errors.Is(err, cerrors.ErrOutOfBounds))
}

func TestReaderUTF8(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0xC3, 0x28, 'o', 'k'})
	_, err := r.ReadUTF8(2)
	assert.True(t, errors.Is(err, cerrors.ErrInvalidUTF8))
	assert.Equal(t, 0, r.Position())

	b, err := r.ReadByteArray(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC3, 0x28}, b)

	s, err := r.ReadUTF8(2)
	require.NoError(t, err)
	assert.Equal(t, "ok", s)
}

func TestReaderCopies(t *testing.T) {
	t.Parallel()

	buf := []byte{1, 2, 3}
	b, err := NewReader(buf).ReadByteArray(3)
	require.NoError(t, err)
	buf[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, b)
}

func TestWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteUByte(0x01))
	require.NoError(t, w.WriteUShort(0x0203))
	require.NoError(t, w.WriteUInt(0x04050607))
	require.NoError(t, w.WriteLong(-1))
	require.NoError(t, w.WriteNLong(0x123456, 3))
	require.NoError(t, w.WriteNLong(0x99, 0))
	require.NoError(t, w.WriteBytes([]byte{0xAA}))
	require.NoError(t, w.WriteString("hi"))
	assert.True(t, errors.Is(w.WriteNLong(0, 9), cerrors.ErrValueTooLarge))

	assert.Equal(t, []byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06, 0x07,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		0x12, 0x34, 0x56,
		0xAA,
		'h', 'i',
	}, buf.Bytes())
}
