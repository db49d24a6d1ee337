// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"io"
	"io/ioutil"
)

// frameReader reads the body of one TCP frame from a stream. Closing it
// discards whatever of the body is left, so the stream is positioned at the
// start of the next frame
type frameReader struct {
	lr io.LimitedReader
}

func newFrameReader(r io.Reader, len uint64) *frameReader {
	return &frameReader{
		lr: io.LimitedReader{
			R: r,
			N: int64(len),
		},
	}
}

func (f *frameReader) Read(p []byte) (int, error) {
	return f.lr.Read(p)
}

func (f *frameReader) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, &f.lr)
}

// Remaining returns the number of body bytes not yet read
func (f *frameReader) Remaining() int64 {
	return f.lr.N
}

func (f *frameReader) Close() error {
	_, err := io.Copy(ioutil.Discard, &f.lr)
	return err
}

var _ io.Reader = &frameReader{}
var _ io.ReadCloser = &frameReader{}
var _ io.WriterTo = &frameReader{}
