// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package message

import (
	"bytes"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"go.e43.eu/coap/internal/errors"
	"go.e43.eu/coap/internal/ranges"
)

// Kind is the payload kind of an option value (RFC 7252 section 3.2)
type Kind uint8

const (
	KindEmpty Kind = iota + 1
	KindOpaque
	KindUint
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindOpaque:
		return "opaque"
	case KindUint:
		return "uint"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Format is the generic wire representation of an option: its number and
// a value of one of the four payload kinds. Formats carry no range checks of
// their own; those live on the named Option types.
type Format interface {
	OptionNumber() uint16
	Kind() Kind

	isFormat()
}

type EmptyFormat struct {
	Number uint16
}

type OpaqueFormat struct {
	Number uint16
	Value  []byte
}

type UintFormat struct {
	Number uint16
	Value  uint64
}

type StringFormat struct {
	Number uint16
	Value  string
}

func (f EmptyFormat) OptionNumber() uint16  { return f.Number }
func (f OpaqueFormat) OptionNumber() uint16 { return f.Number }
func (f UintFormat) OptionNumber() uint16   { return f.Number }
func (f StringFormat) OptionNumber() uint16 { return f.Number }

func (EmptyFormat) Kind() Kind  { return KindEmpty }
func (OpaqueFormat) Kind() Kind { return KindOpaque }
func (UintFormat) Kind() Kind   { return KindUint }
func (StringFormat) Kind() Kind { return KindString }

func (EmptyFormat) isFormat()  {}
func (OpaqueFormat) isFormat() {}
func (UintFormat) isFormat()   {}
func (StringFormat) isFormat() {}

// EqualFormats compares two formats by number, kind and value content
func EqualFormats(a, b Format) bool {
	if a.OptionNumber() != b.OptionNumber() || a.Kind() != b.Kind() {
		return false
	}

	switch a := a.(type) {
	case EmptyFormat:
		return true
	case OpaqueFormat:
		return bytes.Equal(a.Value, b.(OpaqueFormat).Value)
	case UintFormat:
		return a.Value == b.(UintFormat).Value
	case StringFormat:
		return a.Value == b.(StringFormat).Value
	default:
		return false
	}
}

// Option numbers with a named variant
const (
	OptIfMatch       uint16 = 1
	OptURIHost       uint16 = 3
	OptETag          uint16 = 4
	OptIfNoneMatch   uint16 = 5
	OptObserve       uint16 = 6
	OptURIPort       uint16 = 7
	OptLocationPath  uint16 = 8
	OptOSCORE        uint16 = 9
	OptURIPath       uint16 = 11
	OptContentFormat uint16 = 12
	OptMaxAge        uint16 = 14
	OptURIQuery      uint16 = 15
	OptHopLimit      uint16 = 16
	OptAccept        uint16 = 17
	OptQBlock1       uint16 = 19
	OptLocationQuery uint16 = 20
	OptEDHOC         uint16 = 21
	OptBlock2        uint16 = 23
	OptBlock1        uint16 = 27
	OptSize2         uint16 = 28
	OptQBlock2       uint16 = 31
	OptProxyURI      uint16 = 35
	OptProxyScheme   uint16 = 39
	OptSize1         uint16 = 60
	OptEcho          uint16 = 252
	OptNoResponse    uint16 = 258
	OptRequestTag    uint16 = 292
)

// Bands for option numbers without a named variant
const (
	// Highest number assigned by IETF review
	maxIETFNumber = 255
	// Highest number of the registry bands below the experimental range
	maxRegisteredNumber = 64999
)

// MaxOptionNumber is the highest option number in the registry
const MaxOptionNumber = 65535

// Longest option value the option record can describe (269 + 0xFFFF)
const MaxOptionLength = 65804

var reservedNumbers = map[uint16]struct{}{
	0:   {},
	128: {},
	132: {},
	136: {},
	140: {},
}

type optionDef struct {
	name  string
	kind  Kind
	build func(f Format) (Option, error)
}

func uintValue(f Format, r ranges.Range, what string) (uint64, error) {
	v := f.(UintFormat).Value
	return v, r.Check(what, v)
}

/*
   +-----+----------------+--------+--------+
   | No. | Name           | Format | Length |
   +-----+----------------+--------+--------+
   |   1 | If-Match       | opaque | 0-8    |
   |   3 | Uri-Host       | string | 1-255  |
   |   4 | ETag           | opaque | 1-8    |
   |   5 | If-None-Match  | empty  | 0      |
   |   6 | Observe        | uint   | 0-3    |
   |   7 | Uri-Port       | uint   | 0-2    |
   |   8 | Location-Path  | string | 0-255  |
   |   9 | OSCORE         | opaque | 0-255  |
   |  11 | Uri-Path       | string | 0-255  |
   |  12 | Content-Format | uint   | 0-2    |
   |  14 | Max-Age        | uint   | 0-4    |
   |  15 | Uri-Query      | string | 0-255  |
   |  16 | Hop-Limit      | uint   | 1      |
   |  17 | Accept         | uint   | 0-2    |
   |  19 | Q-Block1       | uint   | 0-3    |
   |  20 | Location-Query | string | 0-255  |
   |  21 | EDHOC          | empty  | 0      |
   |  23 | Block2         | uint   | 0-3    |
   |  27 | Block1         | uint   | 0-3    |
   |  28 | Size2          | uint   | 0-4    |
   |  31 | Q-Block2       | uint   | 0-3    |
   |  35 | Proxy-Uri      | string | 1-1034 |
   |  39 | Proxy-Scheme   | string | 1-255  |
   |  60 | Size1          | uint   | 0-4    |
   | 252 | Echo           | opaque | 1-40   |
   | 258 | No-Response    | uint   | 0-1    |
   | 292 | Request-Tag    | opaque | 0-8    |
   +-----+----------------+--------+--------+
*/
var optionDefs = map[uint16]optionDef{
	OptIfMatch: {"If-Match", KindOpaque, func(f Format) (Option, error) {
		return NewIfMatch(f.(OpaqueFormat).Value)
	}},
	OptURIHost: {"Uri-Host", KindString, func(f Format) (Option, error) {
		return NewURIHost(f.(StringFormat).Value)
	}},
	OptETag: {"ETag", KindOpaque, func(f Format) (Option, error) {
		return NewETag(f.(OpaqueFormat).Value)
	}},
	OptIfNoneMatch: {"If-None-Match", KindEmpty, func(f Format) (Option, error) {
		return IfNoneMatch{}, nil
	}},
	OptObserve: {"Observe", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U24, "Observe")
		if err != nil {
			return nil, err
		}
		return NewObserve(uint32(v))
	}},
	OptURIPort: {"Uri-Port", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U16, "Uri-Port")
		if err != nil {
			return nil, err
		}
		return NewURIPort(uint16(v)), nil
	}},
	OptLocationPath: {"Location-Path", KindString, func(f Format) (Option, error) {
		return NewLocationPath(f.(StringFormat).Value)
	}},
	OptOSCORE: {"OSCORE", KindOpaque, func(f Format) (Option, error) {
		parts, err := ParseOSCORE(f.(OpaqueFormat).Value)
		if err != nil {
			return nil, err
		}
		return NewOSCORE(parts)
	}},
	OptURIPath: {"Uri-Path", KindString, func(f Format) (Option, error) {
		return NewURIPath(f.(StringFormat).Value)
	}},
	OptContentFormat: {"Content-Format", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U16, "Content-Format")
		if err != nil {
			return nil, err
		}
		return NewContentFormat(uint16(v)), nil
	}},
	OptMaxAge: {"Max-Age", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U32, "Max-Age")
		if err != nil {
			return nil, err
		}
		return NewMaxAge(uint32(v)), nil
	}},
	OptURIQuery: {"Uri-Query", KindString, func(f Format) (Option, error) {
		return NewURIQuery(f.(StringFormat).Value)
	}},
	OptHopLimit: {"Hop-Limit", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U8, "Hop-Limit")
		if err != nil {
			return nil, err
		}
		return NewHopLimit(uint8(v))
	}},
	OptAccept: {"Accept", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U16, "Accept")
		if err != nil {
			return nil, err
		}
		return NewAccept(uint16(v)), nil
	}},
	OptQBlock1: {"Q-Block1", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U24, "Q-Block1")
		if err != nil {
			return nil, err
		}
		return QBlock1FromValue(uint32(v))
	}},
	OptLocationQuery: {"Location-Query", KindString, func(f Format) (Option, error) {
		return NewLocationQuery(f.(StringFormat).Value)
	}},
	OptEDHOC: {"EDHOC", KindEmpty, func(f Format) (Option, error) {
		return EDHOC{}, nil
	}},
	OptBlock2: {"Block2", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U24, "Block2")
		if err != nil {
			return nil, err
		}
		return Block2FromValue(uint32(v))
	}},
	OptBlock1: {"Block1", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U24, "Block1")
		if err != nil {
			return nil, err
		}
		return Block1FromValue(uint32(v))
	}},
	OptSize2: {"Size2", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U32, "Size2")
		if err != nil {
			return nil, err
		}
		return NewSize2(uint32(v)), nil
	}},
	OptQBlock2: {"Q-Block2", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U24, "Q-Block2")
		if err != nil {
			return nil, err
		}
		return QBlock2FromValue(uint32(v))
	}},
	OptProxyURI: {"Proxy-Uri", KindString, func(f Format) (Option, error) {
		return NewProxyURI(f.(StringFormat).Value)
	}},
	OptProxyScheme: {"Proxy-Scheme", KindString, func(f Format) (Option, error) {
		return NewProxyScheme(f.(StringFormat).Value)
	}},
	OptSize1: {"Size1", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U32, "Size1")
		if err != nil {
			return nil, err
		}
		return NewSize1(uint32(v)), nil
	}},
	OptEcho: {"Echo", KindOpaque, func(f Format) (Option, error) {
		return NewEcho(f.(OpaqueFormat).Value)
	}},
	OptNoResponse: {"No-Response", KindUint, func(f Format) (Option, error) {
		v, err := uintValue(f, ranges.U8, "No-Response")
		if err != nil {
			return nil, err
		}
		return NewNoResponse(uint8(v)), nil
	}},
	OptRequestTag: {"Request-Tag", KindOpaque, func(f Format) (Option, error) {
		return NewRequestTag(f.(OpaqueFormat).Value)
	}},
}

// ToFormat maps an option to its generic wire representation
func ToFormat(o Option) Format {
	return o.Format()
}

// KindOf returns the payload kind used for option number n. Numbers without a
// named variant are opaque
func KindOf(n uint16) Kind {
	if def, ok := optionDefs[n]; ok {
		return def.kind
	}
	return KindOpaque
}

// FromFormat builds the named option for f's number, validating its value.
// Numbers without a named variant produce one of the catch-all options
// (Reserved, Unassigned, Unknown or ExperimentalUse) holding the raw value
func FromFormat(f Format) (Option, error) {
	n := f.OptionNumber()
	if def, ok := optionDefs[n]; ok {
		if f.Kind() != def.kind {
			return nil, errors.ErrInvalidValue
		}
		return def.build(f)
	}

	v := formatBytes(f)
	switch {
	case isReserved(n):
		return NewReserved(n, v)
	case n <= maxIETFNumber:
		return NewUnassigned(n, v)
	case n <= maxRegisteredNumber:
		return NewUnknown(n, v)
	default:
		return NewExperimentalUse(n, v)
	}
}

// CheckOption reports whether o holds a value its constructor would have
// accepted. Zero values such as ETag{} or HopLimit{} bypass the
// constructors; the encoder rejects them through this check
func CheckOption(o Option) error {
	if o == nil {
		return errors.ErrInvalidValue
	}

	back, err := FromFormat(o.Format())
	if err != nil {
		return err
	}

	t := reflect.TypeOf(o)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t != reflect.TypeOf(back) {
		// e.g. an Unknown{} whose number is 0
		return errors.ErrInvalidValue
	}
	return nil
}

// formatBytes returns the raw value bytes of f
func formatBytes(f Format) []byte {
	switch f := f.(type) {
	case OpaqueFormat:
		return f.Value
	case StringFormat:
		return []byte(f.Value)
	case UintFormat:
		return UintBytes(f.Value)
	default:
		return nil
	}
}

// UintBytes returns the minimal big-endian representation of v: leading zero
// bytes are stripped, so zero has no bytes at all
func UintBytes(v uint64) []byte {
	var b [8]byte
	n := 0
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
		if b[i] != 0 {
			n = 8 - i
		}
	}
	return b[8-n:]
}

func isReserved(n uint16) bool {
	_, ok := reservedNumbers[n]
	return ok
}

func isNamed(n uint16) bool {
	_, ok := optionDefs[n]
	return ok
}

// OptionName returns the registered name of option number n, or its decimal
// representation
func OptionName(n uint16) string {
	if def, ok := optionDefs[n]; ok {
		return def.name
	}
	return fmt.Sprint(n)
}

// OptionNumberByName looks up the option number of a named option. The lookup
// ignores case, and also accepts a bare decimal number
func OptionNumberByName(name string) (uint16, bool) {
	for n, def := range optionDefs {
		if strings.EqualFold(def.name, name) {
			return n, true
		}
	}

	n, err := strconv.ParseUint(name, 10, 16)
	if err != nil {
		return 0, false
	}
	return uint16(n), true
}

// Critical reports whether an unrecognised option n must cause a message to be
// rejected (RFC 7252 section 5.4.6)
func Critical(n uint16) bool {
	return n&0x01 != 0
}

// Unsafe reports whether option n is unsafe to forward by a proxy which does
// not understand it
func Unsafe(n uint16) bool {
	return n&0x02 != 0
}

// NoCacheKey reports whether option n is excluded from the cache key
func NoCacheKey(n uint16) bool {
	return n&0x1e == 0x1c
}
