// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger: JSON lines on stdout at the
// given level.
func Setup(level string) error {
	return configure(logrus.StandardLogger(), level, os.Stdout)
}

func configure(l *logrus.Logger, level string, out io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(lvl)
	l.SetOutput(out)
	return nil
}

// LogError logs err with the module and function it came from.
func LogError(module, funcName string, data any, err error) {
	fields := logrus.Fields{
		"module":   module,
		"funcName": funcName,
	}
	if data != nil {
		fields["data"] = data
	}
	logrus.WithFields(fields).Error(err.Error())
}
