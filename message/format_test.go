// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package message

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.e43.eu/coap/internal/errors"
)

func TestFromFormatRoundTrip(t *testing.T) {
	t.Parallel()

	options := []Option{
		must(NewIfMatch([]byte{1, 2})),
		must(NewURIHost("example.com")),
		must(NewETag([]byte{3})),
		IfNoneMatch{},
		must(NewObserve(ObserveRegister)),
		NewURIPort(5683),
		must(NewLocationPath("a")),
		must(NewOSCORE(OSCOREParts{PartialIV: []byte{5}, KID: []byte{1}})),
		must(NewURIPath("b")),
		NewContentFormat(60),
		NewMaxAge(86400),
		must(NewURIQuery("q=1")),
		must(NewHopLimit(16)),
		NewAccept(50),
		must(NewQBlock1(2, true, Size512)),
		must(NewLocationQuery("r=2")),
		EDHOC{},
		must(NewBlock2(3, false, SizeBERT)),
		must(NewBlock1(4, true, Size16)),
		NewSize2(1 << 20),
		must(NewQBlock2(5, false, Size1024)),
		must(NewProxyURI("coap://example.com/")),
		must(NewProxyScheme("coap")),
		NewSize1(4096),
		must(NewEcho([]byte{9, 9, 9})),
		NewNoResponse(2),
		must(NewRequestTag([]byte{7})),
		must(NewReserved(132, []byte{1})),
		must(NewUnassigned(2, []byte("x"))),
		must(NewUnknown(1000, nil)),
		must(NewExperimentalUse(65001, []byte{0, 1})),
	}

	for _, o := range options {
		f := ToFormat(o)
		assert.Equal(t, o.Number(), f.OptionNumber())
		assert.Equal(t, KindOf(o.Number()), f.Kind(), "%s", OptionString(o))

		back, err := FromFormat(f)
		require.NoError(t, err, "%s", OptionString(o))
		assert.IsType(t, o, back)
		assert.True(t, EqualOptions(o, back), "%s != %s", OptionString(o), OptionString(back))
	}
}

func TestFromFormat(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		Name   string
		Format Format
		Option Option
		Err    error
	}{
		{"Reserved 0", OpaqueFormat{0, []byte{1}}, must(NewReserved(0, []byte{1})), nil},
		{"Reserved 140", EmptyFormat{140}, must(NewReserved(140, nil)), nil},
		{"Unassigned 254", StringFormat{254, "hi"}, must(NewUnassigned(254, []byte("hi"))), nil},
		{"Unknown 256", UintFormat{256, 0x0102}, must(NewUnknown(256, []byte{1, 2})), nil},
		{"Unknown zero uint", UintFormat{257, 0}, must(NewUnknown(257, nil)), nil},
		{"ExperimentalUse", OpaqueFormat{65000, nil}, must(NewExperimentalUse(65000, nil)), nil},
		{"wrong kind", UintFormat{OptURIPath, 1}, nil, errors.ErrInvalidValue},
		{"wrong kind empty", OpaqueFormat{OptIfNoneMatch, nil}, nil, errors.ErrInvalidValue},
		{"Observe too large", UintFormat{OptObserve, 1 << 24}, nil, errors.ErrOutOfRange},
		{"Uri-Port too large", UintFormat{OptURIPort, 1 << 16}, nil, errors.ErrOutOfRange},
		{"Max-Age too large", UintFormat{OptMaxAge, 1 << 32}, nil, errors.ErrOutOfRange},
		{"Hop-Limit zero", UintFormat{OptHopLimit, 0}, nil, errors.ErrOutOfRange},
		{"No-Response too large", UintFormat{OptNoResponse, 256}, nil, errors.ErrOutOfRange},
		{"Block2 too large", UintFormat{OptBlock2, 1 << 24}, nil, errors.ErrOutOfRange},
		{"ETag empty", OpaqueFormat{OptETag, nil}, nil, errors.ErrLengthOutOfRange},
		{"Uri-Path dot", StringFormat{OptURIPath, "."}, nil, errors.ErrInvalidValue},
		{"OSCORE malformed", OpaqueFormat{OptOSCORE, []byte{0x00}}, nil, errors.ErrInvalidOSCORE},
	}

	for _, tc := range testcases {
		o, err := FromFormat(tc.Format)
		if tc.Err != nil {
			assert.True(t, stderrors.Is(err, tc.Err), "%s: expected %v, got %v", tc.Name, tc.Err, err)
			continue
		}

		require.NoError(t, err, tc.Name)
		assert.IsType(t, tc.Option, o, tc.Name)
		assert.True(t, EqualOptions(tc.Option, o), tc.Name)
	}
}

func TestEqualFormats(t *testing.T) {
	t.Parallel()

	assert.True(t, EqualFormats(EmptyFormat{5}, EmptyFormat{5}))
	assert.False(t, EqualFormats(EmptyFormat{5}, EmptyFormat{21}))
	assert.False(t, EqualFormats(EmptyFormat{5}, OpaqueFormat{5, nil}))
	assert.True(t, EqualFormats(OpaqueFormat{4, []byte{1}}, OpaqueFormat{4, []byte{1}}))
	assert.True(t, EqualFormats(OpaqueFormat{4, nil}, OpaqueFormat{4, []byte{}}))
	assert.False(t, EqualFormats(UintFormat{6, 1}, UintFormat{6, 2}))
	assert.True(t, EqualFormats(StringFormat{11, "a"}, StringFormat{11, "a"}))
	assert.False(t, EqualFormats(StringFormat{11, "a"}, StringFormat{11, "b"}))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindEmpty, KindOf(OptIfNoneMatch))
	assert.Equal(t, KindOpaque, KindOf(OptETag))
	assert.Equal(t, KindUint, KindOf(OptObserve))
	assert.Equal(t, KindString, KindOf(OptURIPath))
	assert.Equal(t, KindOpaque, KindOf(2))
	assert.Equal(t, KindOpaque, KindOf(65535))

	assert.Equal(t, "uint", KindUint.String())
	assert.Equal(t, "Kind(0)", Kind(0).String())
}

func TestUintBytes(t *testing.T) {
	t.Parallel()

	assert.Empty(t, UintBytes(0))
	assert.Equal(t, []byte{1}, UintBytes(1))
	assert.Equal(t, []byte{1, 0}, UintBytes(0x100))
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, UintBytes(0xFFFFFF))
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, UintBytes(1<<56))
}

func TestOptionNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Uri-Path", OptionName(OptURIPath))
	assert.Equal(t, "Q-Block2", OptionName(OptQBlock2))
	assert.Equal(t, "2049", OptionName(2049))

	for _, tc := range []struct {
		name   string
		number uint16
		ok     bool
	}{
		{"Uri-Path", OptURIPath, true},
		{"uri-path", OptURIPath, true},
		{"ETAG", OptETag, true},
		{"No-Response", OptNoResponse, true},
		{"65000", 65000, true},
		{"0", 0, true},
		{"65536", 0, false},
		{"-1", 0, false},
		{"Uri Path", 0, false},
	} {
		n, ok := OptionNumberByName(tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
		if tc.ok {
			assert.Equal(t, tc.number, n, tc.name)
		}
	}
}

func TestOptionProperties(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		number                    uint16
		critical, unsafe, noCache bool
	}{
		{OptIfMatch, true, false, false},
		{OptURIHost, true, true, false},
		{OptETag, false, false, false},
		{OptObserve, false, true, false},
		{OptURIPath, true, true, false},
		{OptMaxAge, false, true, false},
		{OptBlock2, true, true, false},
		{OptSize2, false, false, true},
		{OptProxyURI, true, true, false},
		{OptSize1, false, false, true},
		{OptEcho, false, false, true},
		{OptNoResponse, false, true, false},
		{OptRequestTag, false, false, false},
	} {
		name := OptionName(tc.number)
		assert.Equal(t, tc.critical, Critical(tc.number), "%s critical", name)
		assert.Equal(t, tc.unsafe, Unsafe(tc.number), "%s unsafe", name)
		assert.Equal(t, tc.noCache, NoCacheKey(tc.number), "%s no cache key", name)
	}
}

func TestCheckOption(t *testing.T) {
	t.Parallel()

	for _, o := range []Option{
		IfNoneMatch{},
		EDHOC{},
		Observe{},
		URIPort{},
		URIPath{},
		Block2{},
		QBlock1{},
		OSCORE{},
		IfMatch{},
		Reserved{},
		must(NewETag([]byte{1})),
		must(NewHopLimit(1)),
		must(NewUnknown(300, nil)),
		NewMaxAge(60),
	} {
		assert.NoError(t, CheckOption(o), "%T", o)
	}

	etag, err := NewETag([]byte{1})
	require.NoError(t, err)
	assert.NoError(t, CheckOption(&etag))

	for _, tc := range []struct {
		o   Option
		err error
	}{
		{ETag{}, errors.ErrLengthOutOfRange},
		{Echo{}, errors.ErrLengthOutOfRange},
		{URIHost{}, errors.ErrLengthOutOfRange},
		{ProxyURI{}, errors.ErrLengthOutOfRange},
		{ProxyScheme{}, errors.ErrLengthOutOfRange},
		{HopLimit{}, errors.ErrOutOfRange},
		{Unassigned{}, errors.ErrInvalidValue},
		{Unknown{}, errors.ErrInvalidValue},
		{ExperimentalUse{}, errors.ErrInvalidValue},
	} {
		err := CheckOption(tc.o)
		assert.True(t, stderrors.Is(err, tc.err), "%T: %v", tc.o, err)
	}
	assert.Equal(t, errors.ErrInvalidValue, CheckOption(nil))
}
