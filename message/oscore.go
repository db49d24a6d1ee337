// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package message

import (
	"bytes"

	"go.e43.eu/coap/internal/errors"
	"go.e43.eu/coap/internal/ranges"
)

/*
   RFC 8613 section 6.1

    0 1 2 3 4 5 6 7 <------------- n bytes -------------->
   +-+-+-+-+-+-+-+-+--------------------------------------
   |0 0 0|h|k|  n  |       Partial IV (if any) ...
   +-+-+-+-+-+-+-+-+--------------------------------------

    <- 1 byte -> <----- s bytes ------>
   +------------+----------------------+------------------+
   | s (if any) | kid context (if any) | kid (if any) ... |
   +------------+----------------------+------------------+
*/
const (
	oscoreFlagN        = 0x07
	oscoreFlagK        = 0x08
	oscoreFlagH        = 0x10
	oscoreFlagReserved = 0xE0

	maxPartialIV = 5
)

// OSCOREParts is the structure of an OSCORE option value. A nil KIDContext
// or KID is absent; a non-nil empty one is present with zero length
type OSCOREParts struct {
	PartialIV  []byte
	KIDContext []byte
	KID        []byte
}

// Equal compares by content, keeping the distinction between absent and
// empty fields
func (p OSCOREParts) Equal(o OSCOREParts) bool {
	return bytes.Equal(p.PartialIV, o.PartialIV) &&
		equalPresent(p.KIDContext, o.KIDContext) &&
		equalPresent(p.KID, o.KID)
}

func equalPresent(a, b []byte) bool {
	return (a == nil) == (b == nil) && bytes.Equal(a, b)
}

// Validate checks the field lengths encodable in the flag byte
func (p OSCOREParts) Validate() error {
	if err := ranges.CheckLen("OSCORE Partial IV", len(p.PartialIV), 0, maxPartialIV); err != nil {
		return err
	}
	if err := ranges.CheckLen("OSCORE kid context", len(p.KIDContext), 0, 255); err != nil {
		return err
	}
	return nil
}

// Encode packs the parts into an option value. When every flag is zero the
// value is empty
func (p OSCOREParts) Encode() []byte {
	flags := byte(len(p.PartialIV))
	if p.KID != nil {
		flags |= oscoreFlagK
	}
	if p.KIDContext != nil {
		flags |= oscoreFlagH
	}
	if flags == 0 {
		return nil
	}

	b := make([]byte, 0, 1+len(p.PartialIV)+1+len(p.KIDContext)+len(p.KID))
	b = append(b, flags)
	b = append(b, p.PartialIV...)
	if p.KIDContext != nil {
		b = append(b, byte(len(p.KIDContext)))
		b = append(b, p.KIDContext...)
	}
	return append(b, p.KID...)
}

// ParseOSCORE splits an option value into its parts
func ParseOSCORE(v []byte) (OSCOREParts, error) {
	if len(v) == 0 {
		return OSCOREParts{}, nil
	}

	flags := v[0]
	n := int(flags & oscoreFlagN)
	if flags == 0 || flags&oscoreFlagReserved != 0 || n > maxPartialIV {
		return OSCOREParts{}, errors.ErrInvalidOSCORE
	}

	rest := v[1:]
	if len(rest) < n {
		return OSCOREParts{}, errors.ErrInvalidOSCORE
	}

	var p OSCOREParts
	if n > 0 {
		p.PartialIV = cloneBytes(rest[:n])
	}
	rest = rest[n:]

	if flags&oscoreFlagH != 0 {
		if len(rest) < 1 {
			return OSCOREParts{}, errors.ErrInvalidOSCORE
		}
		s := int(rest[0])
		rest = rest[1:]
		if len(rest) < s {
			return OSCOREParts{}, errors.ErrInvalidOSCORE
		}
		p.KIDContext = append([]byte{}, rest[:s]...)
		rest = rest[s:]
	}

	if flags&oscoreFlagK != 0 {
		p.KID = append([]byte{}, rest...)
	} else if len(rest) != 0 {
		return OSCOREParts{}, errors.ErrInvalidOSCORE
	}
	return p, nil
}

// OSCORE marks a message as OSCORE protected (RFC 8613)
type OSCORE struct {
	parts OSCOREParts
	value []byte
}

func NewOSCORE(parts OSCOREParts) (OSCORE, error) {
	if err := parts.Validate(); err != nil {
		return OSCORE{}, err
	}

	v := parts.Encode()
	if err := ranges.CheckLen("OSCORE", len(v), 0, 255); err != nil {
		return OSCORE{}, err
	}

	// Re-parse so the stored parts never alias the caller's slices
	p, err := ParseOSCORE(v)
	if err != nil {
		return OSCORE{}, err
	}
	return OSCORE{p, v}, nil
}

func (o OSCORE) Parts() OSCOREParts { return o.parts }

// Value returns the encoded option value
func (o OSCORE) Value() []byte { return o.value }

func (OSCORE) Number() uint16   { return OptOSCORE }
func (o OSCORE) Format() Format { return OpaqueFormat{OptOSCORE, o.value} }
func (OSCORE) isOption()        {}
