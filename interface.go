// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package coap implements encoding and decoding of the CoAP (Constrained
// Application Protocol) wire format, for both the UDP transport (RFC 7252)
// and the TCP transport (RFC 8323).
//
// Messages are built from the types of the message package and passed to
// the functions of this package (or of a Coder built with NewCoder):
//
//     b, err := coap.Encode(message.UDP{
//         Type:    message.Confirmable,
//         Code:    message.GET,
//         ID:      0xFEED,
//         Token:   0xCAFE,
//         Options: []message.Option{path},
//     })
//
// The two framings are:
//
//      UDP | [Ver|T|TKL] [Code] [Message ID] [Token] [Options] [0xFF Payload]
//      TCP | [Len|TKL] [Extended Length] [Code] [Token] [Options] [0xFF Payload]
//
// A TCP header's Len nibble gives the byte count of options and payload:
//
//        Len | Extended Length     | Content length
//     -------+---------------------+----------------------
//       0-12 | none                | Len
//         13 | 1 byte              | 13 + ext
//         14 | 2 bytes             | 269 + ext
//         15 | 4 bytes             | 65805 + ext
//
// Option deltas and lengths use the same scheme, except that 15 is reserved
// for the payload marker and there is no 4 byte form.
//
// The token is carried as an int64 and written in the fewest of 0, 1, 2, 4
// or 8 bytes which hold it. Negative tokens always take 8 bytes.
//
// Options are written in ascending order of number; options sharing a
// number keep their relative order. Option values are validated when the
// option is constructed, so a message made of constructed options never
// fails to encode for range reasons.
//
// Decoding is strict: a malformed option, an unsupported version, a payload
// marker without payload or an option value outside its permitted range
// fails the whole decode. Options without a named type in the message
// package decode into one of the catch-all types (Reserved, Unassigned,
// Unknown or ExperimentalUse) by the band their number falls in.
//
// Every error returned matches exactly one of ErrValidation, ErrMalformed or
// ErrInternal with errors.Is, except for errors from an underlying
// io.Reader or io.Writer.
package coap

import (
	coapinterfaces "go.e43.eu/coap/interfaces"
)

// interface Coder is the top-level interface to the CoAP codec
//
// A coder (which may be safely used from multiple goroutines) converts
// messages to and from their wire representation
type Coder = coapinterfaces.Coder

// interface Reader is a bounds checked big-endian cursor over a byte slice
type Reader = coapinterfaces.Reader

// interface Writer is the big-endian counterpart of Reader
type Writer = coapinterfaces.Writer
