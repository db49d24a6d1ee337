// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package coapinterfaces defines the primary interfaces of the CoAP codec
//
// (This package is primarily separated out in order to permit the implementation to
// be broken down into multiple packages)
package coapinterfaces

import (
	"io"

	"go.e43.eu/coap/message"
)

// interface Coder is the top-level interface to the CoAP codec
//
// A coder (which may be safely used from multiple goroutines) converts
// messages to and from their wire representation. Every method either
// succeeds completely or returns an error; no partial results are returned.
type Coder interface {
	// Encode returns the wire representation of m (UDP or TCP framing,
	// following the dynamic type of m)
	Encode(m message.Message) ([]byte, error)

	// EncodeHeader returns only the fixed header and token of a UDP message
	EncodeHeader(m message.UDP) ([]byte, error)

	// Write encodes m into the passed writer
	Write(w io.Writer, m message.Message) error

	// DecodeUDP decodes a whole UDP datagram
	DecodeUDP(buf []byte) (message.UDP, error)

	// DecodeTCP decodes a TCP message from the start of buf. Bytes after the
	// length declared by the header are ignored
	DecodeTCP(buf []byte) (message.TCP, error)

	// DecodeUDPHeader decodes only the header and token of a UDP message
	DecodeUDPHeader(buf []byte) (message.UDPHeader, error)

	// DecodeTCPHeader decodes only the header and token of a TCP message
	DecodeTCPHeader(buf []byte) (message.TCPHeader, error)

	// Decode decodes the options and payload following a header which was
	// decoded from buf at offset
	Decode(buf []byte, h message.Header, offset int) (message.Message, error)

	// ReadTCP reads exactly one TCP message from r. Bytes of any following
	// message are left unread
	ReadTCP(r io.Reader) (message.TCP, error)
}

// interface Reader is a bounds checked big-endian cursor over a byte slice
//
// Every read past the end of the window returns an error matching
// ErrOutOfBounds and leaves the cursor where it was.
type Reader interface {
	ReadUByte() (uint8, error)
	ReadUShort() (uint16, error)
	ReadUInt24() (uint32, error)
	ReadUInt() (uint32, error)
	ReadLong() (int64, error)

	// ReadNLong reads an n byte (0 to 8) big-endian integer. Eight byte
	// values are two's complement
	ReadNLong(n int) (int64, error)

	// ReadByteArray reads n bytes into a newly allocated slice
	ReadByteArray(n int) ([]byte, error)

	// ReadRemaining reads everything up to the end of the window
	ReadRemaining() []byte

	// ReadUTF8 reads n bytes which must be valid UTF-8
	ReadUTF8(n int) (string, error)

	// Exhausted reports whether the cursor has reached the end of the window
	Exhausted() bool

	// Position returns the cursor offset within the underlying slice
	Position() int
}

// interface Writer is the big-endian counterpart to Reader, writing to an
// io.Writer
type Writer interface {
	WriteUByte(b uint8) error
	WriteUShort(v uint16) error
	WriteUInt(v uint32) error
	WriteLong(v int64) error

	// WriteNLong writes the low n bytes (0 to 8) of v, big-endian
	WriteNLong(v int64, n int) error

	WriteBytes(b []byte) error
	WriteString(s string) error
}
