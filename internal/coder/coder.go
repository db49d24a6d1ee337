// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"bufio"
	"bytes"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	coapinterfaces "go.e43.eu/coap/interfaces"
	"go.e43.eu/coap/internal/errors"
	"go.e43.eu/coap/internal/logging"
	"go.e43.eu/coap/internal/metrics"
	"go.e43.eu/coap/message"
)

var logger = logging.New("coder")

type Coder struct {
	log          *zap.Logger
	metrics      *metrics.Metrics
	maxFrameSize uint64
}

var _ coapinterfaces.Coder = &Coder{}

// Option configures a Coder
type Option func(cr *Coder)

// WithLogger sets the logger decode failures and unrecognised options are
// reported to, at debug level
func WithLogger(l *zap.Logger) Option {
	return func(cr *Coder) {
		if l == nil {
			l = zap.NewNop()
		}
		cr.log = l
	}
}

// WithMetrics registers message counters with reg. A nil reg disables them
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cr *Coder) {
		cr.metrics = metrics.New(reg)
	}
}

// WithMaxFrameSize limits the content length ReadTCP accepts. Longer frames
// are skipped and reported with ErrFrameTooLarge. Zero means no limit
func WithMaxFrameSize(n uint64) Option {
	return func(cr *Coder) {
		cr.maxFrameSize = n
	}
}

func NewCoder(opts ...Option) *Coder {
	cr := &Coder{log: logger}
	for _, opt := range opts {
		opt(cr)
	}
	return cr
}

func (cr *Coder) logger() *zap.Logger {
	// The zero Coder is usable
	if cr.log == nil {
		return logger
	}
	return cr.log
}

func (cr *Coder) newDecoder(buf []byte, start, end int) *decoder {
	return &decoder{
		r:   newReader(buf, start, end),
		log: cr.logger(),
	}
}

func transportOf(m message.Message) string {
	if _, ok := m.(message.TCP); ok {
		return metrics.TCP
	}
	return metrics.UDP
}

func (cr *Coder) Encode(m message.Message) ([]byte, error) {
	if m == nil {
		return nil, errors.ErrInvalidValue
	}

	e := getEncoder()
	defer e.release()

	if err := e.encode(m); err != nil {
		return nil, err
	}

	out := e.bytes()
	cr.metrics.ObserveEncode(transportOf(m), len(out))
	return out, nil
}

func (cr *Coder) EncodeHeader(m message.UDP) ([]byte, error) {
	e := getEncoder()
	defer e.release()

	if err := e.encodeUDPHeader(m); err != nil {
		return nil, err
	}
	return append([]byte(nil), e.header.Bytes()...), nil
}

var writerPool = sync.Pool{
	New: func() interface{} {
		return bufio.NewWriter(nil)
	},
}

func (cr *Coder) Write(w io.Writer, m message.Message) error {
	if m == nil {
		return errors.ErrInvalidValue
	}

	e := getEncoder()
	defer e.release()

	if err := e.encode(m); err != nil {
		return err
	}
	cr.metrics.ObserveEncode(transportOf(m), e.header.Len()+e.content.Len())

	switch w.(type) {
	case *bytes.Buffer, *bufio.Writer:
		// Already buffered
		return writeParts(w, e)
	}

	bw := writerPool.Get().(*bufio.Writer)
	bw.Reset(w)
	err := writeParts(bw, e)
	if err == nil {
		err = bw.Flush()
	}
	bw.Reset(nil)
	writerPool.Put(bw)
	return err
}

func writeParts(w io.Writer, e *encoder) error {
	if _, err := w.Write(e.header.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(e.content.Bytes())
	return err
}

func (cr *Coder) DecodeUDPHeader(buf []byte) (message.UDPHeader, error) {
	return cr.newDecoder(buf, 0, len(buf)).decodeUDPHeader()
}

func (cr *Coder) DecodeTCPHeader(buf []byte) (message.TCPHeader, error) {
	return cr.newDecoder(buf, 0, len(buf)).decodeTCPHeader()
}

func (cr *Coder) DecodeUDP(buf []byte) (message.UDP, error) {
	m, err := cr.decodeUDP(buf)
	cr.observeDecode(metrics.UDP, buf, err)
	return m, err
}

func (cr *Coder) decodeUDP(buf []byte) (message.UDP, error) {
	h, err := cr.DecodeUDPHeader(buf)
	if err != nil {
		return message.UDP{}, err
	}

	opts, payload, err := cr.decodeContent(buf, h, 0)
	if err != nil {
		return message.UDP{}, err
	}
	return message.UDP{
		Type:    h.Type,
		Code:    h.Code,
		ID:      h.MessageID,
		Token:   h.Token,
		Options: opts,
		Payload: payload,
	}, nil
}

func (cr *Coder) DecodeTCP(buf []byte) (message.TCP, error) {
	m, err := cr.decodeTCP(buf)
	cr.observeDecode(metrics.TCP, buf, err)
	return m, err
}

func (cr *Coder) decodeTCP(buf []byte) (message.TCP, error) {
	h, err := cr.DecodeTCPHeader(buf)
	if err != nil {
		return message.TCP{}, err
	}

	opts, payload, err := cr.decodeContent(buf, h, 0)
	if err != nil {
		return message.TCP{}, err
	}
	return message.TCP{
		Code:    h.Code,
		Token:   h.Token,
		Options: opts,
		Payload: payload,
	}, nil
}

func (cr *Coder) Decode(buf []byte, h message.Header, offset int) (message.Message, error) {
	opts, payload, err := cr.decodeContent(buf, h, offset)
	if err != nil {
		return nil, err
	}

	switch h := h.(type) {
	case message.UDPHeader:
		return message.UDP{
			Type:    h.Type,
			Code:    h.Code,
			ID:      h.MessageID,
			Token:   h.Token,
			Options: opts,
			Payload: payload,
		}, nil
	default:
		return message.TCP{
			Code:    h.HeaderCode(),
			Token:   h.HeaderToken(),
			Options: opts,
			Payload: payload,
		}, nil
	}
}

// decodeContent decodes the options and payload following h, which was
// decoded from buf at offset. For TCP the content ends where the header's
// length says it does; any bytes beyond are not looked at
func (cr *Coder) decodeContent(buf []byte, h message.Header, offset int) ([]message.Option, []byte, error) {
	if h == nil {
		return nil, nil, errors.ErrInvalidHeader
	}

	start := offset + h.HeaderSize()
	if offset < 0 || h.HeaderSize() < 0 || start > len(buf) {
		return nil, nil, errors.BoundsError{Pos: offset, Want: h.HeaderSize(), Avail: len(buf) - offset}
	}

	end := len(buf)
	switch h := h.(type) {
	case message.UDPHeader:
	case message.TCPHeader:
		if h.Length > uint64(len(buf)-start) {
			return nil, nil, errors.BoundsError{Pos: start, Want: int(h.Length), Avail: len(buf) - start}
		}
		end = start + int(h.Length)
	default:
		return nil, nil, errors.ErrInvalidHeader
	}

	return cr.newDecoder(buf, start, end).decodeContent()
}

func (cr *Coder) observeDecode(transport string, buf []byte, err error) {
	if err != nil {
		cr.logger().Debug("decode failed",
			zap.String("transport", transport),
			zap.Int("size", len(buf)),
			zap.Error(err))
	}
	cr.metrics.ObserveDecode(transport, len(buf), err)
}

// ReadTCP reads one frame from r: the header, then exactly as many bytes as
// the header declares. The body is always consumed, even when the frame
// turns out to be invalid
func (cr *Coder) ReadTCP(r io.Reader) (m message.TCP, err error) {
	// 1 byte Len/TKL, up to 4 bytes extended length, code, up to 8 token bytes
	var hdr [1 + 4 + 1 + maxTokenLength]byte
	if _, err := io.ReadFull(r, hdr[:1]); err != nil {
		return message.TCP{}, err
	}

	tkl := int(hdr[0] & 0x0F)
	if tkl > maxTokenLength {
		return message.TCP{}, errors.ErrInvalidTokenLength
	}

	n := 1 + extendedLengthWidth(hdr[0]>>4) + 1 + tkl
	if _, err := io.ReadFull(r, hdr[1:n]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return message.TCP{}, err
	}

	h, err := cr.DecodeTCPHeader(hdr[:n])
	if err != nil {
		return message.TCP{}, err
	}

	body := newFrameReader(r, h.Length)
	defer multierr.AppendInvoke(&err, multierr.Close(body))

	if cr.maxFrameSize != 0 && h.Length > cr.maxFrameSize {
		return message.TCP{}, errors.ErrFrameTooLarge
	}

	var frame bytes.Buffer
	frame.Write(hdr[:n])
	if _, err := frame.ReadFrom(body); err != nil {
		return message.TCP{}, err
	}
	if body.Remaining() != 0 {
		return message.TCP{}, io.ErrUnexpectedEOF
	}

	return cr.DecodeTCP(frame.Bytes())
}

// extendedLengthWidth returns the number of extended length bytes which
// follow a TCP Len nibble
func extendedLengthWidth(nibble uint8) int {
	switch nibble {
	case 13:
		return 1
	case 14:
		return 2
	case 15:
		return 4
	default:
		return 0
	}
}
