// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.e43.eu/coap/message"
)

func TestParseCode(t *testing.T) {
	t.Parallel()

	for s, code := range map[string]message.Code{
		"GET":      message.GET,
		"delete":   message.DELETE,
		"Content":  message.Content,
		"2.05":     message.Content,
		"0.00":     message.CodeOf(0),
		"2.06":     message.CodeOf(0x46),
		"7.31":     message.CodeOf(0xFF),
		"NotFound": message.NotFound,
	} {
		c, err := parseCode(s)
		require.NoError(t, err, s)
		assert.Equal(t, code, c, s)
	}

	for _, s := range []string{"", "FETCH", "8.00", "2.32", "a.b", "2."} {
		_, err := parseCode(s)
		assert.Error(t, err, s)
	}
}

func TestOptionDocument(t *testing.T) {
	t.Parallel()

	number := uint16(2049)
	testcases := []struct {
		doc    optionDocument
		option message.Option
	}{
		{optionDocument{Name: "If-None-Match"}, message.IfNoneMatch{}},
		{optionDocument{Name: "observe", Value: 0}, must(message.NewObserve(message.ObserveRegister))},
		{optionDocument{Name: "Max-Age", Value: uint64(1<<32 - 1)}, message.NewMaxAge(1<<32 - 1)},
		{optionDocument{Name: "Uri-Query", Value: "a=b"}, must(message.NewURIQuery("a=b"))},
		{optionDocument{Name: "Uri-Path"}, must(message.NewURIPath(""))},
		{optionDocument{Name: "ETag", Value: "0102"}, must(message.NewETag([]byte{1, 2}))},
		{optionDocument{Name: "11", Value: "x"}, must(message.NewURIPath("x"))},
		{optionDocument{Number: &number, Value: "ff"}, must(message.NewUnknown(2049, []byte{0xFF}))},
	}

	for _, tc := range testcases {
		o, err := tc.doc.Option()
		require.NoError(t, err, "%+v", tc.doc)
		assert.IsType(t, tc.option, o)
		assert.True(t, message.EqualOptions(tc.option, o), "%+v", tc.doc)

		// Documents produced from options read back as the same option
		back, err := newOptionDocument(o).Option()
		require.NoError(t, err)
		assert.True(t, message.EqualOptions(o, back))
	}
}

func TestDocumentPayload(t *testing.T) {
	t.Parallel()

	doc := newDocument(message.TCP{Code: message.Content, Payload: []byte("text")})
	assert.Equal(t, "text", doc.Payload)
	assert.Empty(t, doc.PayloadHex)

	doc = newDocument(message.TCP{Code: message.Content, Payload: []byte{0xC3}})
	assert.Empty(t, doc.Payload)
	assert.Equal(t, "c3", doc.PayloadHex)

	m, err := doc.Message()
	require.NoError(t, err)
	assert.True(t, message.Equal(message.TCP{Code: message.Content, Payload: []byte{0xC3}}, m))

	m, err = document{Code: "GET"}.Message()
	require.NoError(t, err)
	assert.True(t, message.Equal(message.UDP{Code: message.GET}, m))
}

func must(o message.Option, err error) message.Option {
	if err != nil {
		panic(err)
	}
	return o
}
