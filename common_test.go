// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coap

import (
	"bytes"
	"errors"
	"io"
	"io/ioutil"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.e43.eu/coap/message"
)

type testDirection int

const (
	bothTest testDirection = iota
	encodeTest
	decodeTest
)

// comparingWriter is an io.Writer which immediately compares every byte
// written to it against the values read from the passed reader. This
// enables capturing the call stack at the time any discrepancy in the
// written data occurs
//
// It captures the written data so that a final comparison (which may somtimes
// be more informative) can also be made
type comparingWriter struct {
	T *testing.T

	// The reader
	R io.Reader

	// Error returned by reader
	Rerr error

	// Bytes written
	B []byte

	// Bytes expected
	X []byte
}

func newComparingWriter(t *testing.T, r io.Reader) *comparingWriter {
	return &comparingWriter{
		T: t,
		R: r,
	}
}

func (w *comparingWriter) Write(buf []byte) (int, error) {
	w.T.Helper()

	w.B = append(w.B, buf...)

	// Gather the expected bytes
	var expected []byte
	if w.Rerr == nil {
		expected = make([]byte, len(buf))
		nr, err := io.ReadFull(w.R, expected)
		expected = expected[0:nr]
		w.X = append(w.X, expected...)
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}

		if err != nil {
			require.Equal(w.T, io.EOF, err, "comparingWriter: Comparison reader returned non-EOF error")
			assert.Failf(w.T, "Attempt to write after end", "Attempt to write %d bytes after end of expected data", len(buf)-nr)
			w.Rerr = err
		}
	}

	// If we read any bytes, cross compare them
	if len(expected) != 0 {
		assert.Equalf(w.T, expected, buf[0:len(expected)], "Expected equal value during %d byte write", len(buf))
	}

	return len(buf), nil
}

func (w *comparingWriter) Assert() {
	buf := make([]byte, 1024)
	err := w.Rerr

	var n int
	for err == nil {
		n, err = w.R.Read(buf)
		w.X = append(w.X, buf[0:n]...)
		if err == nil {
			continue
		}
		require.Equal(w.T, io.EOF, err, "comparingWriter: Comparison reader must only return io.EOF error")
	}

	assert.Equalf(w.T, w.X, w.B, "Expected written data to match expected")
}

// singleByteReader is a really annoying io.Reader which returns a single byte at a time
type singleByteReader struct {
	R io.Reader
}

func (r *singleByteReader) Read(buf []byte) (int, error) {
	switch {
	case len(buf) == 0:
		return 0, nil
	default:
		return r.R.Read(buf[0:1])
	}
}

// mustOpt unwraps the result of an option constructor
func mustOpt(o message.Option, err error) message.Option {
	if err != nil {
		panic(err)
	}
	return o
}

func opts(o ...message.Option) []message.Option {
	return o
}

type testcase struct {
	// Name of this test case
	Name string

	// Which directions to run this test in (defaults to both)
	Direction testDirection

	// The message to encode, or to use for comparison on decoding. Its
	// type selects the transport
	Object message.Message

	// The encoded representation of the message
	Bytes []byte

	// Bytes following the message which the decoder must leave alone
	// (TCP only)
	Trailer []byte

	// Error expected on en/decode
	EncErrorIs error
	DecErrorIs error

	// Comparator to use (instead of default) after successful decoding
	DecodeComparator func(t *testing.T, expt, actual message.Message)
}

func decodeAs(proto message.Message, buf []byte) (message.Message, error) {
	if _, ok := proto.(message.TCP); ok {
		return DecodeTCP(buf)
	}
	return DecodeUDP(buf)
}

func RunTestcases(t *testing.T, tcs []testcase) {
	// Insert the default DecodeComparator
	for i := range tcs {
		tc := &tcs[i]

		if tc.DecodeComparator == nil {
			tc.DecodeComparator = func(t *testing.T, l, r message.Message) {
				t.Helper()
				if diff := cmp.Diff(l, r); diff != "" {
					t.Errorf("decode output should match (-want +got):\n%s", diff)
				}
			}
		}
	}

	t.Parallel()

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			if tc.Direction != decodeTest {
				t.Run("Encode", func(t *testing.T) {
					t.Parallel()

					b, err := Encode(tc.Object)
					if tc.EncErrorIs != nil {
						require.Error(t, err, "Encoding should have returned an error")
						require.Truef(t, errors.Is(err, tc.EncErrorIs), "Error expected to be %s, but was %s", tc.EncErrorIs, err)
					} else {
						require.NoError(t, err, "Encode should succeed")
						assert.Equal(t, tc.Bytes, b)
					}
				})

				t.Run("Write", func(t *testing.T) {
					t.Parallel()

					var w io.Writer
					if tc.EncErrorIs != nil {
						w = ioutil.Discard
					} else {
						w = newComparingWriter(t, bytes.NewReader(tc.Bytes))
					}
					err := Write(w, tc.Object)
					if tc.EncErrorIs != nil {
						require.Error(t, err, "Write should have returned an error")
						require.Truef(t, errors.Is(err, tc.EncErrorIs), "Error expected to be %s, but was %s", tc.EncErrorIs, err)
					} else {
						require.NoError(t, err, "Write should succeed")
						w.(*comparingWriter).Assert()
					}
				})
			}

			if tc.Direction != encodeTest {
				t.Run("Decode", func(t *testing.T) {
					t.Parallel()

					buf := append(append([]byte(nil), tc.Bytes...), tc.Trailer...)
					m, err := decodeAs(tc.Object, buf)
					if tc.DecErrorIs != nil {
						if assert.Error(t, err, "Decoding should have returned an error") {
							assert.Truef(t, errors.Is(err, tc.DecErrorIs), "Error expected to be %s, but was %s", tc.DecErrorIs, err)
						} else {
							t.Logf("Returned %+v", m)
						}
					} else {
						require.NoError(t, err, "Decode should succeed")
						tc.DecodeComparator(t, tc.Object, m)
					}
				})

				if _, ok := tc.Object.(message.TCP); !ok || tc.DecErrorIs != nil {
					return
				}

				// Streams are read through the annoying reader, to be sure
				// ReadTCP never consumes more than one frame
				t.Run("ReadTCP+singleByteReader", func(t *testing.T) {
					t.Parallel()

					trailer := tc.Trailer
					if trailer == nil {
						trailer = []byte{0x00, 0x01}
					}
					r := bytes.NewReader(append(append([]byte(nil), tc.Bytes...), trailer...))
					m, err := ReadTCP(&singleByteReader{r})
					require.NoError(t, err, "ReadTCP should succeed")
					tc.DecodeComparator(t, tc.Object, m)

					rest, err := ioutil.ReadAll(r)
					require.NoError(t, err)
					assert.Equal(t, trailer, rest, "ReadTCP should leave the following frame alone")
				})
			}
		})
	}
}
