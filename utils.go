// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coap

import (
	"io"

	"go.e43.eu/coap/internal/coder"
	"go.e43.eu/coap/message"
)

// The default coder (used by the package global functions)
//
// It logs through the package's default logger and records no metrics.
var DefaultCoder = coder.NewCoder()

// CoderOption configures a Coder built by NewCoder
type CoderOption = coder.Option

var (
	// WithLogger sets the zap logger a Coder reports to
	WithLogger = coder.WithLogger

	// WithMetrics registers Prometheus collectors for a Coder
	WithMetrics = coder.WithMetrics

	// WithMaxFrameSize limits the content length ReadTCP accepts
	WithMaxFrameSize = coder.WithMaxFrameSize
)

// Encode returns the wire representation of m
func Encode(m message.Message) ([]byte, error) {
	return DefaultCoder.Encode(m)
}

// EncodeHeader returns the fixed header and token of m
func EncodeHeader(m message.UDP) ([]byte, error) {
	return DefaultCoder.EncodeHeader(m)
}

// Write encodes m into the passed writer
func Write(w io.Writer, m message.Message) error {
	return DefaultCoder.Write(w, m)
}

// DecodeUDP decodes a UDP datagram
func DecodeUDP(buf []byte) (message.UDP, error) {
	return DefaultCoder.DecodeUDP(buf)
}

// DecodeTCP decodes the TCP message at the start of buf
func DecodeTCP(buf []byte) (message.TCP, error) {
	return DefaultCoder.DecodeTCP(buf)
}

// DecodeUDPHeader decodes the header and token of a UDP message
func DecodeUDPHeader(buf []byte) (message.UDPHeader, error) {
	return DefaultCoder.DecodeUDPHeader(buf)
}

// DecodeTCPHeader decodes the header and token of a TCP message
func DecodeTCPHeader(buf []byte) (message.TCPHeader, error) {
	return DefaultCoder.DecodeTCPHeader(buf)
}

// Decode decodes the options and payload following a header decoded from buf
// at offset
func Decode(buf []byte, h message.Header, offset int) (message.Message, error) {
	return DefaultCoder.Decode(buf, h, offset)
}

// ReadTCP reads one TCP message from r
func ReadTCP(r io.Reader) (message.TCP, error) {
	return DefaultCoder.ReadTCP(r)
}

// NewReader returns a Reader over buf
func NewReader(buf []byte) Reader {
	return coder.NewReader(buf)
}

// NewWriter returns a Writer which writes to w
func NewWriter(w io.Writer) Writer {
	return coder.NewWriter(w)
}

// Construct a new Coder
func NewCoder(opts ...CoderOption) Coder {
	return coder.NewCoder(opts...)
}
