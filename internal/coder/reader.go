// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"unicode/utf8"

	coapinterfaces "go.e43.eu/coap/interfaces"
	"go.e43.eu/coap/internal/errors"
)

// reader is a cursor over buf[pos:end]
type reader struct {
	buf      []byte
	pos, end int
}

var _ coapinterfaces.Reader = &reader{}

func newReader(buf []byte, start, end int) *reader {
	return &reader{buf: buf, pos: start, end: end}
}

// NewReader returns a Reader over the whole of buf
func NewReader(buf []byte) coapinterfaces.Reader {
	return newReader(buf, 0, len(buf))
}

// take advances the cursor by n bytes, returning the bytes passed over
func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || n > r.end-r.pos {
		return nil, errors.BoundsError{Pos: r.pos, Want: n, Avail: r.end - r.pos}
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) ReadUByte() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) ReadUShort() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

func (r *reader) ReadUInt24() (uint32, error) {
	b, err := r.take(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

func (r *reader) ReadUInt() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

func (r *reader) ReadLong() (int64, error) {
	return r.ReadNLong(8)
}

func (r *reader) ReadNLong(n int) (int64, error) {
	if n > 8 {
		return 0, errors.ErrValueTooLarge
	}

	b, err := r.take(n)
	if err != nil {
		return 0, err
	}

	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return int64(v), nil
}

func (r *reader) ReadByteArray(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil || n == 0 {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

func (r *reader) ReadRemaining() []byte {
	b, _ := r.ReadByteArray(r.end - r.pos)
	return b
}

func (r *reader) ReadUTF8(n int) (string, error) {
	b, err := r.take(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		r.pos -= n
		return "", errors.ErrInvalidUTF8
	}
	return string(b), nil
}

func (r *reader) Exhausted() bool {
	return r.pos >= r.end
}

func (r *reader) Position() int {
	return r.pos
}
