// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package message

import (
	"fmt"

	"go.e43.eu/coap/internal/errors"
	"go.e43.eu/coap/internal/ranges"
)

// Code is the 8-bit code field of a message, split into a 3-bit class and a
// 5-bit detail. It is one of Method, Response or RawCode
type Code interface {
	Class() uint8
	Detail() uint8
	Byte() byte
	String() string

	isCode()
}

// Method is a request method code (class 0)
type Method uint8

const (
	GET    Method = 1
	POST   Method = 2
	PUT    Method = 3
	DELETE Method = 4
)

func (m Method) Class() uint8  { return 0 }
func (m Method) Detail() uint8 { return uint8(m) }
func (m Method) Byte() byte    { return byte(m) }
func (Method) isCode()         {}

func (m Method) String() string {
	switch m {
	case GET:
		return "GET"
	case POST:
		return "POST"
	case PUT:
		return "PUT"
	case DELETE:
		return "DELETE"
	default:
		return fmt.Sprintf("Method(%d)", uint8(m))
	}
}

// Response is one of the response codes defined by RFC 7252
type Response uint8

const (
	Created                  Response = 2<<5 | 1
	Deleted                  Response = 2<<5 | 2
	Valid                    Response = 2<<5 | 3
	Changed                  Response = 2<<5 | 4
	Content                  Response = 2<<5 | 5
	BadRequest               Response = 4<<5 | 0
	Unauthorized             Response = 4<<5 | 1
	BadOption                Response = 4<<5 | 2
	Forbidden                Response = 4<<5 | 3
	NotFound                 Response = 4<<5 | 4
	MethodNotAllowed         Response = 4<<5 | 5
	NotAcceptable            Response = 4<<5 | 6
	PreconditionFailed       Response = 4<<5 | 12
	RequestEntityTooLarge    Response = 4<<5 | 13
	UnsupportedContentFormat Response = 4<<5 | 15
	InternalServerError      Response = 5<<5 | 0
	NotImplemented           Response = 5<<5 | 1
	BadGateway               Response = 5<<5 | 2
	ServiceUnavailable       Response = 5<<5 | 3
	GatewayTimeout           Response = 5<<5 | 4
	ProxyingNotSupported     Response = 5<<5 | 5
)

var responseNames = map[Response]string{
	Created:                  "Created",
	Deleted:                  "Deleted",
	Valid:                    "Valid",
	Changed:                  "Changed",
	Content:                  "Content",
	BadRequest:               "BadRequest",
	Unauthorized:             "Unauthorized",
	BadOption:                "BadOption",
	Forbidden:                "Forbidden",
	NotFound:                 "NotFound",
	MethodNotAllowed:         "MethodNotAllowed",
	NotAcceptable:            "NotAcceptable",
	PreconditionFailed:       "PreconditionFailed",
	RequestEntityTooLarge:    "RequestEntityTooLarge",
	UnsupportedContentFormat: "UnsupportedContentFormat",
	InternalServerError:      "InternalServerError",
	NotImplemented:           "NotImplemented",
	BadGateway:               "BadGateway",
	ServiceUnavailable:       "ServiceUnavailable",
	GatewayTimeout:           "GatewayTimeout",
	ProxyingNotSupported:     "ProxyingNotSupported",
}

func (r Response) Class() uint8  { return uint8(r) >> 5 }
func (r Response) Detail() uint8 { return uint8(r) & 0x1F }
func (r Response) Byte() byte    { return byte(r) }
func (Response) isCode()         {}

func (r Response) String() string {
	if n, ok := responseNames[r]; ok {
		return n
	}
	return fmt.Sprintf("Response(%d.%02d)", r.Class(), r.Detail())
}

var (
	codeClassRange  = ranges.Range{Min: 0, Max: 7}
	codeDetailRange = ranges.Range{Min: 0, Max: 31}
)

// RawCode is a code without a named mapping
type RawCode struct {
	class, detail uint8
}

// NewRawCode builds a RawCode. Codes which have a named Method or Response
// are rejected; use CodeOf to obtain the canonical Code for any byte
func NewRawCode(class, detail uint8) (RawCode, error) {
	if err := codeClassRange.Check("code class", uint64(class)); err != nil {
		return RawCode{}, err
	}
	if err := codeDetailRange.Check("code detail", uint64(detail)); err != nil {
		return RawCode{}, err
	}
	if _, raw := CodeOf(class<<5 | detail).(RawCode); !raw {
		return RawCode{}, errors.ErrInvalidValue
	}
	return RawCode{class, detail}, nil
}

func (c RawCode) Class() uint8  { return c.class }
func (c RawCode) Detail() uint8 { return c.detail }
func (c RawCode) Byte() byte    { return c.class<<5 | c.detail }
func (RawCode) isCode()         {}

func (c RawCode) String() string {
	return fmt.Sprintf("%d.%02d", c.class, c.detail)
}

// CodeOf returns the canonical Code for the wire byte b
func CodeOf(b byte) Code {
	if b >= byte(GET) && b <= byte(DELETE) {
		return Method(b)
	}
	if _, ok := responseNames[Response(b)]; ok {
		return Response(b)
	}
	return RawCode{b >> 5, b & 0x1F}
}

// ValidCode reports whether c is a Method or Response with a defined value,
// or a RawCode
func ValidCode(c Code) bool {
	switch c := c.(type) {
	case Method:
		return c >= GET && c <= DELETE
	case Response:
		_, ok := responseNames[c]
		return ok
	case RawCode:
		return true
	default:
		return false
	}
}

// EqualCodes compares codes by their wire value
func EqualCodes(a, b Code) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Byte() == b.Byte()
}
