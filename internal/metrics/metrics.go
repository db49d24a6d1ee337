// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package metrics provides optional Prometheus instrumentation for a Coder.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"go.e43.eu/coap/internal/errors"
)

const namespace = "coap"

// Transport label values
const (
	UDP = "udp"
	TCP = "tcp"
)

// Metrics holds the collectors of one Coder
type Metrics struct {
	Encoded      *prometheus.CounterVec
	Decoded      *prometheus.CounterVec
	DecodeErrors *prometheus.CounterVec
	MessageSize  *prometheus.HistogramVec
}

// New creates and registers the collectors with reg. Returns nil if reg is
// nil. Like promauto, it panics if the collectors are already registered
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	f := promauto.With(reg)
	return &Metrics{
		Encoded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_encoded_total",
				Help:      "Total number of messages encoded",
			},
			[]string{"transport"},
		),
		Decoded: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_decoded_total",
				Help:      "Total number of messages decoded",
			},
			[]string{"transport"},
		),
		DecodeErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decode_errors_total",
				Help:      "Total number of messages which failed to decode",
			},
			[]string{"transport", "category"},
		),
		MessageSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "message_size_bytes",
				Help:      "Size of encoded and decoded messages in bytes",
				Buckets:   []float64{8, 16, 32, 64, 128, 256, 512, 1024, 2048, 65536},
			},
			[]string{"transport", "direction"},
		),
	}
}

// ObserveEncode records a successfully encoded message of size bytes
func (m *Metrics) ObserveEncode(transport string, size int) {
	if m == nil {
		return
	}
	m.Encoded.WithLabelValues(transport).Inc()
	m.MessageSize.WithLabelValues(transport, "encode").Observe(float64(size))
}

// ObserveDecode records the outcome of a decode of size bytes
func (m *Metrics) ObserveDecode(transport string, size int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.DecodeErrors.WithLabelValues(transport, CategoryLabel(err)).Inc()
		return
	}
	m.Decoded.WithLabelValues(transport).Inc()
	m.MessageSize.WithLabelValues(transport, "decode").Observe(float64(size))
}

// CategoryLabel returns the label value for the category of err
func CategoryLabel(err error) string {
	switch errors.Category(err) {
	case errors.ErrValidation:
		return "validation"
	case errors.ErrMalformed:
		return "malformed"
	case errors.ErrInternal:
		return "internal"
	default:
		return "io"
	}
}
