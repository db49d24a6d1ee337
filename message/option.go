// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package message

import (
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	"go.e43.eu/coap/internal/errors"
	"go.e43.eu/coap/internal/ranges"
)

// Option is one of the named option types of this package, or one of the
// catch-all types (Reserved, Unassigned, Unknown, ExperimentalUse) for
// numbers without a named type.
//
// Options are built through their constructors. The zero value of a type is
// only a valid option where the constructor would accept it (IfNoneMatch{},
// Observe{}, Block2{}); Encode rejects the others.
type Option interface {
	// Number returns the option number
	Number() uint16

	// Format returns the generic wire representation of the option
	Format() Format

	isOption()
}

// EqualOptions compares two options by number and value content
func EqualOptions(a, b Option) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return EqualFormats(a.Format(), b.Format())
}

// OptionString renders o for humans, e.g. `Uri-Path: "example"`
func OptionString(o Option) string {
	name := OptionName(o.Number())
	switch f := o.Format().(type) {
	case EmptyFormat:
		return name
	case OpaqueFormat:
		return fmt.Sprintf("%s: 0x%s", name, hex.EncodeToString(f.Value))
	case UintFormat:
		return fmt.Sprintf("%s: %d", name, f.Value)
	case StringFormat:
		return fmt.Sprintf("%s: %q", name, f.Value)
	default:
		return name
	}
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}

func checkOpaque(what string, b []byte, min, max int) error {
	return ranges.CheckLen(what, len(b), min, max)
}

func checkString(what string, s string, min, max int) error {
	if err := ranges.CheckLen(what, len(s), min, max); err != nil {
		return err
	}
	if !utf8.ValidString(s) {
		return errors.ErrInvalidValue
	}
	return nil
}

// Path segments may not be "." or ".." (RFC 7252 section 6.4)
func checkSegment(what string, s string) error {
	if err := checkString(what, s, 0, 255); err != nil {
		return err
	}
	if s == "." || s == ".." {
		return errors.ErrInvalidValue
	}
	return nil
}

type opaqueValue struct {
	value []byte
}

// Value returns the option value
func (o opaqueValue) Value() []byte { return o.value }

type stringValue struct {
	value string
}

// Value returns the option value
func (o stringValue) Value() string { return o.value }

type uint32Value struct {
	value uint32
}

// Value returns the option value
func (o uint32Value) Value() uint32 { return o.value }

// IfMatch makes a request conditional on the current ETag (RFC 7252 5.10.8.1)
type IfMatch struct{ opaqueValue }

func NewIfMatch(etag []byte) (IfMatch, error) {
	if err := checkOpaque("If-Match", etag, 0, 8); err != nil {
		return IfMatch{}, err
	}
	return IfMatch{opaqueValue{cloneBytes(etag)}}, nil
}

func (IfMatch) Number() uint16   { return OptIfMatch }
func (o IfMatch) Format() Format { return OpaqueFormat{OptIfMatch, o.value} }
func (IfMatch) isOption()        {}

type URIHost struct{ stringValue }

func NewURIHost(host string) (URIHost, error) {
	if err := checkString("Uri-Host", host, 1, 255); err != nil {
		return URIHost{}, err
	}
	return URIHost{stringValue{host}}, nil
}

func (URIHost) Number() uint16   { return OptURIHost }
func (o URIHost) Format() Format { return StringFormat{OptURIHost, o.value} }
func (URIHost) isOption()        {}

type ETag struct{ opaqueValue }

func NewETag(etag []byte) (ETag, error) {
	if err := checkOpaque("ETag", etag, 1, 8); err != nil {
		return ETag{}, err
	}
	return ETag{opaqueValue{cloneBytes(etag)}}, nil
}

func (ETag) Number() uint16   { return OptETag }
func (o ETag) Format() Format { return OpaqueFormat{OptETag, o.value} }
func (ETag) isOption()        {}

// IfNoneMatch carries no value; its zero value is ready to use
type IfNoneMatch struct{}

func (IfNoneMatch) Number() uint16 { return OptIfNoneMatch }
func (IfNoneMatch) Format() Format { return EmptyFormat{OptIfNoneMatch} }
func (IfNoneMatch) isOption()      {}

// Observe (RFC 7641). In requests the value is ObserveRegister or
// ObserveDeregister; in notifications it is a 24-bit sequence number
type Observe struct{ uint32Value }

const (
	ObserveRegister   uint32 = 0
	ObserveDeregister uint32 = 1
)

func NewObserve(v uint32) (Observe, error) {
	if err := ranges.U24.Check("Observe", uint64(v)); err != nil {
		return Observe{}, err
	}
	return Observe{uint32Value{v}}, nil
}

func (Observe) Number() uint16   { return OptObserve }
func (o Observe) Format() Format { return UintFormat{OptObserve, uint64(o.value)} }
func (Observe) isOption()        {}

type URIPort struct{ uint32Value }

func NewURIPort(port uint16) URIPort {
	return URIPort{uint32Value{uint32(port)}}
}

func (URIPort) Number() uint16   { return OptURIPort }
func (o URIPort) Format() Format { return UintFormat{OptURIPort, uint64(o.value)} }
func (URIPort) isOption()        {}

type LocationPath struct{ stringValue }

func NewLocationPath(segment string) (LocationPath, error) {
	if err := checkSegment("Location-Path", segment); err != nil {
		return LocationPath{}, err
	}
	return LocationPath{stringValue{segment}}, nil
}

func (LocationPath) Number() uint16   { return OptLocationPath }
func (o LocationPath) Format() Format { return StringFormat{OptLocationPath, o.value} }
func (LocationPath) isOption()        {}

type URIPath struct{ stringValue }

func NewURIPath(segment string) (URIPath, error) {
	if err := checkSegment("Uri-Path", segment); err != nil {
		return URIPath{}, err
	}
	return URIPath{stringValue{segment}}, nil
}

func (URIPath) Number() uint16   { return OptURIPath }
func (o URIPath) Format() Format { return StringFormat{OptURIPath, o.value} }
func (URIPath) isOption()        {}

type ContentFormat struct{ uint32Value }

func NewContentFormat(format uint16) ContentFormat {
	return ContentFormat{uint32Value{uint32(format)}}
}

func (ContentFormat) Number() uint16   { return OptContentFormat }
func (o ContentFormat) Format() Format { return UintFormat{OptContentFormat, uint64(o.value)} }
func (ContentFormat) isOption()        {}

// MaxAge is a freshness lifetime in seconds
type MaxAge struct{ uint32Value }

func NewMaxAge(seconds uint32) MaxAge {
	return MaxAge{uint32Value{seconds}}
}

func (MaxAge) Number() uint16   { return OptMaxAge }
func (o MaxAge) Format() Format { return UintFormat{OptMaxAge, uint64(o.value)} }
func (MaxAge) isOption()        {}

type URIQuery struct{ stringValue }

func NewURIQuery(query string) (URIQuery, error) {
	if err := checkString("Uri-Query", query, 0, 255); err != nil {
		return URIQuery{}, err
	}
	return URIQuery{stringValue{query}}, nil
}

func (URIQuery) Number() uint16   { return OptURIQuery }
func (o URIQuery) Format() Format { return StringFormat{OptURIQuery, o.value} }
func (URIQuery) isOption()        {}

// HopLimit (RFC 8768)
type HopLimit struct{ uint32Value }

func NewHopLimit(limit uint8) (HopLimit, error) {
	if err := ranges.U8.From(1).Check("Hop-Limit", uint64(limit)); err != nil {
		return HopLimit{}, err
	}
	return HopLimit{uint32Value{uint32(limit)}}, nil
}

func (HopLimit) Number() uint16   { return OptHopLimit }
func (o HopLimit) Format() Format { return UintFormat{OptHopLimit, uint64(o.value)} }
func (HopLimit) isOption()        {}

type Accept struct{ uint32Value }

func NewAccept(format uint16) Accept {
	return Accept{uint32Value{uint32(format)}}
}

func (Accept) Number() uint16   { return OptAccept }
func (o Accept) Format() Format { return UintFormat{OptAccept, uint64(o.value)} }
func (Accept) isOption()        {}

type LocationQuery struct{ stringValue }

func NewLocationQuery(query string) (LocationQuery, error) {
	if err := checkString("Location-Query", query, 0, 255); err != nil {
		return LocationQuery{}, err
	}
	return LocationQuery{stringValue{query}}, nil
}

func (LocationQuery) Number() uint16   { return OptLocationQuery }
func (o LocationQuery) Format() Format { return StringFormat{OptLocationQuery, o.value} }
func (LocationQuery) isOption()        {}

// EDHOC signals a combined EDHOC + OSCORE request (RFC 9528). It carries no
// value
type EDHOC struct{}

func (EDHOC) Number() uint16 { return OptEDHOC }
func (EDHOC) Format() Format { return EmptyFormat{OptEDHOC} }
func (EDHOC) isOption()      {}

// Size2 is the size of the resource representation in a response
type Size2 struct{ uint32Value }

func NewSize2(size uint32) Size2 {
	return Size2{uint32Value{size}}
}

func (Size2) Number() uint16   { return OptSize2 }
func (o Size2) Format() Format { return UintFormat{OptSize2, uint64(o.value)} }
func (Size2) isOption()        {}

type ProxyURI struct{ stringValue }

func NewProxyURI(uri string) (ProxyURI, error) {
	if err := checkString("Proxy-Uri", uri, 1, 1034); err != nil {
		return ProxyURI{}, err
	}
	return ProxyURI{stringValue{uri}}, nil
}

func (ProxyURI) Number() uint16   { return OptProxyURI }
func (o ProxyURI) Format() Format { return StringFormat{OptProxyURI, o.value} }
func (ProxyURI) isOption()        {}

type ProxyScheme struct{ stringValue }

func NewProxyScheme(scheme string) (ProxyScheme, error) {
	if err := checkString("Proxy-Scheme", scheme, 1, 255); err != nil {
		return ProxyScheme{}, err
	}
	return ProxyScheme{stringValue{scheme}}, nil
}

func (ProxyScheme) Number() uint16   { return OptProxyScheme }
func (o ProxyScheme) Format() Format { return StringFormat{OptProxyScheme, o.value} }
func (ProxyScheme) isOption()        {}

// Size1 is the size of the request representation
type Size1 struct{ uint32Value }

func NewSize1(size uint32) Size1 {
	return Size1{uint32Value{size}}
}

func (Size1) Number() uint16   { return OptSize1 }
func (o Size1) Format() Format { return UintFormat{OptSize1, uint64(o.value)} }
func (Size1) isOption()        {}

// Echo (RFC 9175)
type Echo struct{ opaqueValue }

func NewEcho(value []byte) (Echo, error) {
	if err := checkOpaque("Echo", value, 1, 40); err != nil {
		return Echo{}, err
	}
	return Echo{opaqueValue{cloneBytes(value)}}, nil
}

func (Echo) Number() uint16   { return OptEcho }
func (o Echo) Format() Format { return OpaqueFormat{OptEcho, o.value} }
func (Echo) isOption()        {}

// NoResponse is a bitmask of response classes the client is not interested
// in (RFC 7967)
type NoResponse struct{ uint32Value }

func NewNoResponse(mask uint8) NoResponse {
	return NoResponse{uint32Value{uint32(mask)}}
}

func (NoResponse) Number() uint16   { return OptNoResponse }
func (o NoResponse) Format() Format { return UintFormat{OptNoResponse, uint64(o.value)} }
func (NoResponse) isOption()        {}

// RequestTag (RFC 9175)
type RequestTag struct{ opaqueValue }

func NewRequestTag(tag []byte) (RequestTag, error) {
	if err := checkOpaque("Request-Tag", tag, 0, 8); err != nil {
		return RequestTag{}, err
	}
	return RequestTag{opaqueValue{cloneBytes(tag)}}, nil
}

func (RequestTag) Number() uint16   { return OptRequestTag }
func (o RequestTag) Format() Format { return OpaqueFormat{OptRequestTag, o.value} }
func (RequestTag) isOption()        {}

// Catch-all options hold the raw value of a number without a named type.
// Which one is used depends on the band the number falls in.
type rawOption struct {
	number uint16
	value  []byte
}

func (o rawOption) Number() uint16 { return o.number }
func (o rawOption) Value() []byte  { return o.value }
func (o rawOption) Format() Format { return OpaqueFormat{o.number, o.value} }

func newRawOption(what string, number uint16, value []byte, inBand bool) (rawOption, error) {
	if isNamed(number) {
		return rawOption{}, errors.ErrInvalidValue
	}
	if !inBand {
		return rawOption{}, errors.ErrOutOfRange
	}
	if err := checkOpaque(what, value, 0, MaxOptionLength); err != nil {
		return rawOption{}, err
	}
	return rawOption{number, cloneBytes(value)}, nil
}

// Reserved holds an option with a number reserved by RFC 7252 (0, 128, 132,
// 136 and 140)
type Reserved struct{ rawOption }

func NewReserved(number uint16, value []byte) (Reserved, error) {
	o, err := newRawOption("Reserved", number, value, isReserved(number))
	return Reserved{o}, err
}

func (Reserved) isOption() {}

// Unassigned holds an option with an unassigned number in the IETF review
// band (1-255)
type Unassigned struct{ rawOption }

func NewUnassigned(number uint16, value []byte) (Unassigned, error) {
	inBand := number <= maxIETFNumber && !isReserved(number)
	o, err := newRawOption("Unassigned", number, value, inBand)
	return Unassigned{o}, err
}

func (Unassigned) isOption() {}

// Unknown holds an option from the registered range 256-64999 which this
// package has no type for
type Unknown struct{ rawOption }

func NewUnknown(number uint16, value []byte) (Unknown, error) {
	inBand := number > maxIETFNumber && number <= maxRegisteredNumber
	o, err := newRawOption("Unknown", number, value, inBand)
	return Unknown{o}, err
}

func (Unknown) isOption() {}

// ExperimentalUse holds an option in the experimental band (65000-65535)
type ExperimentalUse struct{ rawOption }

func NewExperimentalUse(number uint16, value []byte) (ExperimentalUse, error) {
	o, err := newRawOption("ExperimentalUse", number, value, number > maxRegisteredNumber)
	return ExperimentalUse{o}, err
}

func (ExperimentalUse) isOption() {}
