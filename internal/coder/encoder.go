// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"bytes"
	"sort"
	"sync"

	"go.e43.eu/coap/internal/errors"
	"go.e43.eu/coap/internal/ranges"
	"go.e43.eu/coap/message"
)

const payloadMarker = 0xFF

// Widest uint option value the encoder will write
const maxUintBytes = 5

// Largest content a TCP header can describe (0xFFFFFFFF + 65805)
const maxTCPContent = 1<<32 - 1 + 65805

var typeRange = ranges.Range{Min: 0, Max: 3}

var encoderPool = sync.Pool{
	New: func() interface{} {
		e := new(encoder)
		e.hw.reset(&e.header)
		e.cw.reset(&e.content)
		return e
	},
}

// encoder serializes one message in two passes: options and payload into
// content, then the header (whose TCP form depends on the content length)
type encoder struct {
	header, content bytes.Buffer
	hw, cw          writer

	sorted []indexedOption
}

type indexedOption struct {
	index int
	opt   message.Option
}

func getEncoder() *encoder {
	return encoderPool.Get().(*encoder)
}

func (e *encoder) release() {
	e.header.Reset()
	e.content.Reset()
	for i := range e.sorted {
		e.sorted[i].opt = nil
	}
	e.sorted = e.sorted[:0]
	encoderPool.Put(e)
}

// bytes returns a fresh copy of the encoded message
func (e *encoder) bytes() []byte {
	out := make([]byte, 0, e.header.Len()+e.content.Len())
	out = append(out, e.header.Bytes()...)
	return append(out, e.content.Bytes()...)
}

func (e *encoder) encode(m message.Message) error {
	if err := e.encodeContent(m.MessageOptions(), m.MessagePayload()); err != nil {
		return err
	}

	switch m := m.(type) {
	case message.UDP:
		return e.encodeUDPHeader(m)
	case message.TCP:
		return e.encodeTCPHeader(m, uint64(e.content.Len()))
	default:
		return errors.ErrInvalidValue
	}
}

func (e *encoder) encodeContent(opts []message.Option, payload []byte) error {
	for i, o := range opts {
		if o == nil {
			return errors.WithOption(errors.ErrInvalidValue, i, 0)
		}
		if err := message.CheckOption(o); err != nil {
			return errors.WithOption(err, i, uint32(o.Number()))
		}
		e.sorted = append(e.sorted, indexedOption{i, o})
	}
	sort.SliceStable(e.sorted, func(i, j int) bool {
		return e.sorted[i].opt.Number() < e.sorted[j].opt.Number()
	})

	var prev uint16
	for _, so := range e.sorted {
		f := so.opt.Format()
		n := f.OptionNumber()
		if err := e.encodeOption(n-prev, f); err != nil {
			return errors.WithOption(err, so.index, uint32(n))
		}
		prev = n
	}

	if len(payload) > 0 {
		if err := e.cw.WriteUByte(payloadMarker); err != nil {
			return err
		}
		return e.cw.WriteBytes(payload)
	}
	return nil
}

func (e *encoder) encodeOption(delta uint16, f message.Format) error {
	switch f := f.(type) {
	case message.EmptyFormat:
		return e.writeOptionHeader(int(delta), 0)

	case message.OpaqueFormat:
		if err := e.writeOptionHeader(int(delta), len(f.Value)); err != nil {
			return err
		}
		return e.cw.WriteBytes(f.Value)

	case message.StringFormat:
		if err := e.writeOptionHeader(int(delta), len(f.Value)); err != nil {
			return err
		}
		return e.cw.WriteString(f.Value)

	case message.UintFormat:
		n := uintWidth(f.Value)
		if n > maxUintBytes {
			return errors.ErrValueTooLarge
		}
		if err := e.writeOptionHeader(int(delta), n); err != nil {
			return err
		}
		return e.cw.WriteNLong(int64(f.Value), n)

	default:
		return errors.ErrInvalidValue
	}
}

// uintWidth returns the number of bytes in the minimal big-endian
// representation of v
func uintWidth(v uint64) int {
	n := 0
	for ; v != 0; v >>= 8 {
		n++
	}
	return n
}

// extended splits v into a 4 bit nibble and the width and value of its
// extension: 13 adds one byte (v-13), 14 adds two bytes (v-269)
func extended(v int) (nibble uint8, width int, ext int) {
	switch {
	case v < 13:
		return uint8(v), 0, 0
	case v < 269:
		return 13, 1, v - 13
	default:
		return 14, 2, v - 269
	}
}

func (e *encoder) writeOptionHeader(delta, length int) error {
	if err := ranges.CheckLen("option value", length, 0, message.MaxOptionLength); err != nil {
		return err
	}

	dn, dw, dx := extended(delta)
	ln, lw, lx := extended(length)
	if err := e.cw.WriteUByte(dn<<4 | ln); err != nil {
		return err
	}
	if err := e.cw.WriteNLong(int64(dx), dw); err != nil {
		return err
	}
	return e.cw.WriteNLong(int64(lx), lw)
}

func checkCode(c message.Code) error {
	if c == nil || !message.ValidCode(c) {
		return errors.ErrInvalidValue
	}
	return nil
}

func tokenLength(token int64) (int, error) {
	tkl := message.TokenWidth(token)
	if !ranges.U4.Contains(uint64(tkl)) {
		return 0, errors.ErrTokenWidth
	}
	return tkl, nil
}

func (e *encoder) encodeUDPHeader(m message.UDP) error {
	if !m.Type.Valid() {
		return typeRange.Check("message type", uint64(m.Type))
	}
	if err := checkCode(m.Code); err != nil {
		return err
	}
	tkl, err := tokenLength(m.Token)
	if err != nil {
		return err
	}

	w := &e.hw
	if err := w.WriteUByte(1<<6 | uint8(m.Type)<<4 | uint8(tkl)); err != nil {
		return err
	}
	if err := w.WriteUByte(m.Code.Byte()); err != nil {
		return err
	}
	if err := w.WriteUShort(m.ID); err != nil {
		return err
	}
	return w.WriteNLong(m.Token, tkl)
}

func (e *encoder) encodeTCPHeader(m message.TCP, length uint64) error {
	if err := checkCode(m.Code); err != nil {
		return err
	}
	tkl, err := tokenLength(m.Token)
	if err != nil {
		return err
	}

	var (
		nibble uint8
		width  int
		ext    uint64
	)
	switch {
	case length < 13:
		nibble = uint8(length)
	case length < 269:
		nibble, width, ext = 13, 1, length-13
	case length < 65805:
		nibble, width, ext = 14, 2, length-269
	case length <= maxTCPContent:
		nibble, width, ext = 15, 4, length-65805
	default:
		return errors.ErrContentTooLarge
	}

	w := &e.hw
	if err := w.WriteUByte(nibble<<4 | uint8(tkl)); err != nil {
		return err
	}
	if err := w.WriteNLong(int64(ext), width); err != nil {
		return err
	}
	if err := w.WriteUByte(m.Code.Byte()); err != nil {
		return err
	}
	return w.WriteNLong(m.Token, tkl)
}
