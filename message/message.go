// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package message defines the CoAP message model: messages for the UDP
// (RFC 7252) and TCP (RFC 8323) transports, their codes, and the options they
// carry.
//
// All values in this package are immutable once built. Types whose values are
// constrained by an RFC are built through constructors which validate their
// input and return an error; an invalid value never exists.
package message

import (
	"bytes"
	"fmt"
)

// Message is either a UDP or a TCP message
type Message interface {
	// MessageCode returns the message code
	MessageCode() Code

	// MessageToken returns the logical token value
	MessageToken() int64

	// MessageOptions returns the options in the order they were given
	MessageOptions() []Option

	// MessagePayload returns the payload (possibly nil)
	MessagePayload() []byte

	isMessage()
}

// Type is the 2-bit type field of a UDP message
type Type uint8

const (
	Confirmable     Type = 0
	NonConfirmable  Type = 1
	Acknowledgement Type = 2
	Reset           Type = 3
)

func (t Type) String() string {
	switch t {
	case Confirmable:
		return "CON"
	case NonConfirmable:
		return "NON"
	case Acknowledgement:
		return "ACK"
	case Reset:
		return "RST"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Valid reports whether t fits the 2-bit type field
func (t Type) Valid() bool {
	return t <= Reset
}

// UDP is a message framed for the UDP transport
type UDP struct {
	Type    Type
	Code    Code
	ID      uint16
	Token   int64
	Options []Option
	Payload []byte
}

// TCP is a message framed for the TCP transport
type TCP struct {
	Code    Code
	Token   int64
	Options []Option
	Payload []byte
}

var (
	_ Message = UDP{}
	_ Message = TCP{}
)

func (m UDP) MessageCode() Code        { return m.Code }
func (m UDP) MessageToken() int64      { return m.Token }
func (m UDP) MessageOptions() []Option { return m.Options }
func (m UDP) MessagePayload() []byte   { return m.Payload }
func (UDP) isMessage()                 {}

func (m TCP) MessageCode() Code        { return m.Code }
func (m TCP) MessageToken() int64      { return m.Token }
func (m TCP) MessageOptions() []Option { return m.Options }
func (m TCP) MessagePayload() []byte   { return m.Payload }
func (TCP) isMessage()                 {}

// Equal compares two UDP messages by content
func (m UDP) Equal(o UDP) bool {
	return m.Type == o.Type &&
		m.ID == o.ID &&
		equalCommon(m, o)
}

// Equal compares two TCP messages by content
func (m TCP) Equal(o TCP) bool {
	return equalCommon(m, o)
}

// Equal compares two messages by content. Messages of different transports
// are never equal
func Equal(a, b Message) bool {
	switch a := a.(type) {
	case UDP:
		b, ok := b.(UDP)
		return ok && a.Equal(b)
	case TCP:
		b, ok := b.(TCP)
		return ok && a.Equal(b)
	default:
		return a == nil && b == nil
	}
}

func equalCommon(a, b Message) bool {
	if !EqualCodes(a.MessageCode(), b.MessageCode()) ||
		a.MessageToken() != b.MessageToken() ||
		!bytes.Equal(a.MessagePayload(), b.MessagePayload()) {
		return false
	}

	ao, bo := a.MessageOptions(), b.MessageOptions()
	if len(ao) != len(bo) {
		return false
	}
	for i := range ao {
		if !EqualOptions(ao[i], bo[i]) {
			return false
		}
	}
	return true
}

// TokenWidth returns the number of bytes token occupies on the wire.
//
// Zero occupies no bytes; otherwise the narrowest of 1, 2 or 4 bytes which
// holds the value unsigned is chosen. Everything else, including all negative
// values, occupies 8 bytes.
func TokenWidth(token int64) int {
	switch {
	case token == 0:
		return 0
	case token < 0:
		return 8
	case token <= 0xFF:
		return 1
	case token <= 0xFFFF:
		return 2
	case token <= 0xFFFFFFFF:
		return 4
	default:
		return 8
	}
}
