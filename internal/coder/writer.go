// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"io"

	coapinterfaces "go.e43.eu/coap/interfaces"
	"go.e43.eu/coap/internal/errors"
)

type writer struct {
	// Underlying writer
	w io.Writer
	// If the underlying writer is also an io.StringWriter, use that when writing
	// strings (to avoid allocs)
	ws io.StringWriter

	// Small scratch buffer (avoids needing to ever allocate when writing primitives)
	scratch [8]byte
}

var _ coapinterfaces.Writer = &writer{}

func (w *writer) reset(iw io.Writer) {
	w.w = iw
	if ws, ok := iw.(io.StringWriter); ok {
		w.ws = ws
	} else {
		w.ws = nil
	}
}

// NewWriter returns a Writer which writes to w
func NewWriter(w io.Writer) coapinterfaces.Writer {
	wr := new(writer)
	wr.reset(w)
	return wr
}

func (w *writer) WriteUByte(b uint8) error {
	w.scratch[0] = b
	_, err := w.w.Write(w.scratch[0:1])
	return err
}

func (w *writer) WriteUShort(v uint16) error {
	return w.WriteNLong(int64(v), 2)
}

func (w *writer) WriteUInt(v uint32) error {
	return w.WriteNLong(int64(v), 4)
}

func (w *writer) WriteLong(v int64) error {
	return w.WriteNLong(v, 8)
}

func (w *writer) WriteNLong(v int64, n int) error {
	if n < 0 || n > 8 {
		return errors.ErrValueTooLarge
	}

	for i := n - 1; i >= 0; i-- {
		w.scratch[i] = byte(v)
		v >>= 8
	}
	_, err := w.w.Write(w.scratch[0:n])
	return err
}

func (w *writer) WriteBytes(b []byte) error {
	_, err := w.w.Write(b)
	return err
}

func (w *writer) WriteString(s string) (err error) {
	if w.ws != nil {
		_, err = w.ws.WriteString(s)
	} else {
		_, err = w.w.Write([]byte(s))
	}
	return err
}
