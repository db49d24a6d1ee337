// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package logging is a thin wrapper of the zap logging library.
//
// The level of each package's logger is taken from the environment variable
// COAP_LOG_<pkg>, falling back to COAP_LOG. Only the first letter of the
// value is significant: D(ebug), I(nfo), W(arn), E(rror) or N(one).
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var root = func() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zap.DebugLevel,
	)
	return zap.New(core)
}()

// New creates a named logger at the configured level. By convention it
// appears next to the package docstring:
//  var logger = logging.New("coder")
func New(pkg string) *zap.Logger {
	return root.Named(pkg).
		WithOptions(zap.IncreaseLevel(ParseLevel(GetLevel(pkg))))
}

// GetLevel returns the configured level string of a package
func GetLevel(pkg string) string {
	lvl, ok := os.LookupEnv("COAP_LOG_" + strings.ToUpper(pkg))
	if !ok {
		lvl = os.Getenv("COAP_LOG")
	}
	return lvl
}

// ParseLevel maps a level string to a zap level. Unrecognised values yield
// InfoLevel
func ParseLevel(lvl string) zapcore.Level {
	if len(lvl) == 0 {
		return zapcore.InfoLevel
	}

	switch lvl[0] {
	case 'V', 'v', 'D', 'd':
		return zapcore.DebugLevel
	case 'I', 'i':
		return zapcore.InfoLevel
	case 'W', 'w':
		return zapcore.WarnLevel
	case 'E', 'e':
		return zapcore.ErrorLevel
	case 'F', 'f', 'N', 'n':
		return zapcore.DPanicLevel
	}
	return zapcore.InfoLevel
}
