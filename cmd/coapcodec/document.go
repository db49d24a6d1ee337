// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.e43.eu/coap/message"
)

// document is the YAML form of a message
type document struct {
	Transport  string           `yaml:"transport"`
	Type       string           `yaml:"type,omitempty"`
	Code       string           `yaml:"code"`
	ID         uint16           `yaml:"id,omitempty"`
	Token      int64            `yaml:"token,omitempty"`
	Options    []optionDocument `yaml:"options,omitempty"`
	Payload    string           `yaml:"payload,omitempty"`
	PayloadHex string           `yaml:"payload_hex,omitempty"`
}

// optionDocument identifies an option by Name (which may also be a decimal
// number) or Number. Opaque values are written as hex strings
type optionDocument struct {
	Name   string      `yaml:"name,omitempty"`
	Number *uint16     `yaml:"number,omitempty"`
	Value  interface{} `yaml:"value,omitempty"`
}

const (
	transportUDP = "udp"
	transportTCP = "tcp"
)

var typeNames = map[string]message.Type{
	"CON": message.Confirmable,
	"NON": message.NonConfirmable,
	"ACK": message.Acknowledgement,
	"RST": message.Reset,
}

func newDocument(m message.Message) document {
	doc := document{
		Code:  m.MessageCode().String(),
		Token: m.MessageToken(),
	}

	switch m := m.(type) {
	case message.UDP:
		doc.Transport = transportUDP
		doc.Type = m.Type.String()
		doc.ID = m.ID
	case message.TCP:
		doc.Transport = transportTCP
	}

	for _, o := range m.MessageOptions() {
		doc.Options = append(doc.Options, newOptionDocument(o))
	}

	if p := m.MessagePayload(); utf8.Valid(p) {
		doc.Payload = string(p)
	} else {
		doc.PayloadHex = hex.EncodeToString(p)
	}
	return doc
}

func newOptionDocument(o message.Option) (od optionDocument) {
	n := o.Number()
	if name := message.OptionName(n); name != strconv.Itoa(int(n)) {
		od.Name = name
	} else {
		od.Number = &n
	}

	switch f := o.Format().(type) {
	case message.OpaqueFormat:
		od.Value = hex.EncodeToString(f.Value)
	case message.UintFormat:
		od.Value = f.Value
	case message.StringFormat:
		od.Value = f.Value
	}
	return od
}

// Message builds the message the document describes
func (doc document) Message() (message.Message, error) {
	code, err := parseCode(doc.Code)
	if err != nil {
		return nil, err
	}

	opts := make([]message.Option, 0, len(doc.Options))
	for i, od := range doc.Options {
		o, err := od.Option()
		if err != nil {
			return nil, fmt.Errorf("option #%d: %w", i, err)
		}
		opts = append(opts, o)
	}

	payload := []byte(doc.Payload)
	if doc.PayloadHex != "" {
		if doc.Payload != "" {
			return nil, fmt.Errorf("both payload and payload_hex given")
		}
		if payload, err = hex.DecodeString(doc.PayloadHex); err != nil {
			return nil, fmt.Errorf("payload_hex: %w", err)
		}
	}
	if len(payload) == 0 {
		payload = nil
	}

	switch strings.ToLower(doc.Transport) {
	case "", transportUDP:
		typ := message.Confirmable
		if doc.Type != "" {
			t, ok := typeNames[strings.ToUpper(doc.Type)]
			if !ok {
				return nil, fmt.Errorf("unknown message type %q", doc.Type)
			}
			typ = t
		}
		return message.UDP{
			Type:    typ,
			Code:    code,
			ID:      doc.ID,
			Token:   doc.Token,
			Options: opts,
			Payload: payload,
		}, nil
	case transportTCP:
		if doc.Type != "" || doc.ID != 0 {
			return nil, fmt.Errorf("TCP messages have no type or message ID")
		}
		return message.TCP{
			Code:    code,
			Token:   doc.Token,
			Options: opts,
			Payload: payload,
		}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", doc.Transport)
	}
}

// parseCode accepts a method or response name, or "c.dd"
func parseCode(s string) (message.Code, error) {
	if i := strings.IndexByte(s, '.'); i > 0 {
		class, err := strconv.ParseUint(s[:i], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("code %q: %w", s, err)
		}
		detail, err := strconv.ParseUint(s[i+1:], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("code %q: %w", s, err)
		}
		if class > 7 || detail > 31 {
			return nil, fmt.Errorf("code %q out of range", s)
		}
		return message.CodeOf(byte(class<<5 | detail)), nil
	}

	for b := 0; b <= 0xFF; b++ {
		if c := message.CodeOf(byte(b)); strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown code %q", s)
}

// Option builds the option, interpreting Value according to the kind of the
// option number
func (od optionDocument) Option() (message.Option, error) {
	var n uint16
	switch {
	case od.Name != "" && od.Number != nil:
		return nil, fmt.Errorf("both name and number given")
	case od.Number != nil:
		n = *od.Number
	case od.Name != "":
		var ok bool
		if n, ok = message.OptionNumberByName(od.Name); !ok {
			return nil, fmt.Errorf("unknown option %q", od.Name)
		}
	default:
		return nil, fmt.Errorf("option has neither name nor number")
	}

	var f message.Format
	switch message.KindOf(n) {
	case message.KindEmpty:
		if od.Value != nil {
			return nil, fmt.Errorf("%s takes no value", message.OptionName(n))
		}
		f = message.EmptyFormat{Number: n}
	case message.KindUint:
		v, err := uintValue(od.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", message.OptionName(n), err)
		}
		f = message.UintFormat{Number: n, Value: v}
	case message.KindString:
		s, ok := od.Value.(string)
		if !ok && od.Value != nil {
			return nil, fmt.Errorf("%s: expected a string", message.OptionName(n))
		}
		f = message.StringFormat{Number: n, Value: s}
	default:
		s, ok := od.Value.(string)
		if !ok && od.Value != nil {
			return nil, fmt.Errorf("%s: expected a hex string", message.OptionName(n))
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", message.OptionName(n), err)
		}
		f = message.OpaqueFormat{Number: n, Value: b}
	}

	return message.FromFormat(f)
}

func uintValue(v interface{}) (uint64, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case int:
		if v >= 0 {
			return uint64(v), nil
		}
	case int64:
		if v >= 0 {
			return uint64(v), nil
		}
	case uint64:
		return v, nil
	case uint:
		return uint64(v), nil
	}
	return 0, fmt.Errorf("expected an unsigned integer, got %v", v)
}
