// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package message

// Header is the fixed-format prefix of a message, produced by header-only
// decoding. It is one of UDPHeader or TCPHeader
type Header interface {
	// HeaderSize returns the number of bytes the header occupies, token
	// included
	HeaderSize() int

	HeaderCode() Code
	HeaderToken() int64

	isHeader()
}

// UDPHeader is the 4 byte header of a UDP message followed by its token
type UDPHeader struct {
	Size      int
	Version   uint8
	Type      Type
	Code      Code
	MessageID uint16
	Token     int64
}

// TCPHeader is the variable length header of a TCP message followed by its
// token. Length is the byte count of options and payload
type TCPHeader struct {
	Size   int
	Length uint64
	Code   Code
	Token  int64
}

var (
	_ Header = UDPHeader{}
	_ Header = TCPHeader{}
)

func (h UDPHeader) HeaderSize() int    { return h.Size }
func (h UDPHeader) HeaderCode() Code   { return h.Code }
func (h UDPHeader) HeaderToken() int64 { return h.Token }
func (UDPHeader) isHeader()            {}

func (h TCPHeader) HeaderSize() int    { return h.Size }
func (h TCPHeader) HeaderCode() Code   { return h.Code }
func (h TCPHeader) HeaderToken() int64 { return h.Token }
func (TCPHeader) isHeader()            {}

// FrameSize returns the total number of bytes of the message the header
// describes
func (h TCPHeader) FrameSize() uint64 {
	return uint64(h.Size) + h.Length
}
