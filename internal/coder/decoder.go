// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"go.uber.org/zap"

	"go.e43.eu/coap/internal/errors"
	"go.e43.eu/coap/internal/ranges"
	"go.e43.eu/coap/message"
)

const (
	maxTokenLength = 8
	maxUintLength  = 8
)

type decoder struct {
	r   *reader
	log *zap.Logger
}

func (d *decoder) decodeUDPHeader() (message.UDPHeader, error) {
	start := d.r.Position()

	b0, err := d.r.ReadUByte()
	if err != nil {
		return message.UDPHeader{}, err
	}

	h := message.UDPHeader{
		Version: b0 >> 6,
		Type:    message.Type((b0 >> 4) & 0x03),
	}
	if h.Version != 1 {
		return message.UDPHeader{}, errors.ErrUnsupportedVersion
	}

	tkl := int(b0 & 0x0F)
	if tkl > maxTokenLength {
		return message.UDPHeader{}, errors.ErrInvalidTokenLength
	}

	code, err := d.r.ReadUByte()
	if err != nil {
		return message.UDPHeader{}, err
	}
	h.Code = message.CodeOf(code)

	if h.MessageID, err = d.r.ReadUShort(); err != nil {
		return message.UDPHeader{}, err
	}
	if h.Token, err = d.r.ReadNLong(tkl); err != nil {
		return message.UDPHeader{}, err
	}

	h.Size = d.r.Position() - start
	return h, nil
}

func (d *decoder) decodeTCPHeader() (message.TCPHeader, error) {
	start := d.r.Position()

	b0, err := d.r.ReadUByte()
	if err != nil {
		return message.TCPHeader{}, err
	}

	tkl := int(b0 & 0x0F)
	if tkl > maxTokenLength {
		return message.TCPHeader{}, errors.ErrInvalidTokenLength
	}

	var h message.TCPHeader
	if h.Length, err = d.readLength(b0 >> 4); err != nil {
		return message.TCPHeader{}, err
	}

	code, err := d.r.ReadUByte()
	if err != nil {
		return message.TCPHeader{}, err
	}
	h.Code = message.CodeOf(code)

	if h.Token, err = d.r.ReadNLong(tkl); err != nil {
		return message.TCPHeader{}, err
	}

	h.Size = d.r.Position() - start
	return h, nil
}

// readLength resolves the extension of a TCP Len nibble
func (d *decoder) readLength(nibble uint8) (uint64, error) {
	switch nibble {
	case 13:
		v, err := d.r.ReadUByte()
		return uint64(v) + 13, err
	case 14:
		v, err := d.r.ReadUShort()
		return uint64(v) + 269, err
	case 15:
		v, err := d.r.ReadUInt()
		return uint64(v) + 65805, err
	default:
		return uint64(nibble), nil
	}
}

// readOptionField resolves the extension of an option delta or length
// nibble. 15 is reserved for the payload marker
func (d *decoder) readOptionField(nibble uint8) (int, error) {
	switch nibble {
	case 13:
		v, err := d.r.ReadUByte()
		return int(v) + 13, err
	case 14:
		v, err := d.r.ReadUShort()
		return int(v) + 269, err
	case 15:
		return 0, errors.ErrInvalidOption
	default:
		return int(nibble), nil
	}
}

// decodeContent reads options and the payload up to the end of the reader
func (d *decoder) decodeContent() (opts []message.Option, payload []byte, err error) {
	var number int
	for i := 0; !d.r.Exhausted(); i++ {
		b, err := d.r.ReadUByte()
		if err != nil {
			return nil, nil, err
		}

		if b == payloadMarker {
			payload = d.r.ReadRemaining()
			if len(payload) == 0 {
				return nil, nil, errors.ErrEmptyPayload
			}
			break
		}

		delta, err := d.readOptionField(b >> 4)
		if err != nil {
			return nil, nil, errors.WithOption(err, i, uint32(number))
		}
		number += delta

		length, err := d.readOptionField(b & 0x0F)
		if err != nil {
			return nil, nil, errors.WithOption(err, i, uint32(number))
		}

		if number > message.MaxOptionNumber {
			return nil, nil, errors.WithOption(errors.ErrUnknownOption, i, uint32(number))
		}

		o, err := d.decodeOption(uint16(number), length)
		if err != nil {
			return nil, nil, errors.WithOption(errors.Malformed(err), i, uint32(number))
		}
		opts = append(opts, o)
	}
	return opts, payload, nil
}

func (d *decoder) decodeOption(n uint16, length int) (message.Option, error) {
	var f message.Format
	switch message.KindOf(n) {
	case message.KindEmpty:
		if err := ranges.CheckLen(message.OptionName(n), length, 0, 0); err != nil {
			return nil, err
		}
		f = message.EmptyFormat{Number: n}

	case message.KindUint:
		if err := ranges.CheckLen(message.OptionName(n), length, 0, maxUintLength); err != nil {
			return nil, err
		}
		v, err := d.r.ReadNLong(length)
		if err != nil {
			return nil, err
		}
		f = message.UintFormat{Number: n, Value: uint64(v)}

	case message.KindString:
		v, err := d.r.ReadUTF8(length)
		if err != nil {
			return nil, err
		}
		f = message.StringFormat{Number: n, Value: v}

	default:
		v, err := d.r.ReadByteArray(length)
		if err != nil {
			return nil, err
		}
		f = message.OpaqueFormat{Number: n, Value: v}
	}

	o, err := message.FromFormat(f)
	if err != nil {
		return nil, err
	}

	if d.log != nil && d.log.Core().Enabled(zap.DebugLevel) {
		switch o.(type) {
		case message.Reserved, message.Unassigned, message.Unknown, message.ExperimentalUse:
			d.log.Debug("unrecognised option",
				zap.Uint16("number", n),
				zap.Int("length", length),
				zap.Bool("critical", message.Critical(n)))
		}
	}
	return o, nil
}
