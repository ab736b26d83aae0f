// MIT License
//
// Copyright (c) 2025 mkey-core
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// go/src/log/logger.go
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel defines the severity level of the log message.
type LogLevel int

// Log level constants starting from 0 with iota.
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// levelNames associates LogLevel constants with string labels.
var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// currentLevel holds the minimum log level to output.
var currentLevel = INFO

// buffer holds the in-memory buffer for log messages.
var buffer = &LogBuffer{}

// mu protects the log output to avoid interleaving log messages.
var mu sync.Mutex

// loggerOut writes logs both to stdout and the buffer.
var loggerOut io.Writer = io.MultiWriter(os.Stdout, buffer)

// LogBuffer is a thread-safe buffer that retains log output in memory so
// it can be inspected after the fact (device debug screens, tests).
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer for LogBuffer.
func (l *LogBuffer) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

// String returns the current contents of the buffer.
func (l *LogBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

// SetLevel sets the global logging level.
func SetLevel(lvl LogLevel) {
	currentLevel = lvl
}

// Zap builds the structured logger handed to the keystore and the device
// service. It shares the package's output so structured and formatted logs
// interleave in one stream.
func Zap() *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(&lockedWriter{}),
		zapLevel(currentLevel),
	)
	return zap.New(core)
}

func zapLevel(lvl LogLevel) zapcore.Level {
	switch lvl {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// lockedWriter serializes zap's writes with the package's own.
type lockedWriter struct{}

func (lockedWriter) Write(p []byte) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	return loggerOut.Write(p)
}

// logf formats a message, prefixes timestamp and level, and writes it.
func logf(level LogLevel, format string, args ...any) {
	if level < currentLevel {
		return
	}
	mu.Lock()
	defer mu.Unlock()

	ts := time.Now().Format("2006-01-02 15:04:05.000")
	prefix := fmt.Sprintf("%s [%s] ", ts, levelNames[level])
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	_, _ = fmt.Fprint(loggerOut, prefix+msg)
}

// Debugf logs a formatted message at DEBUG level.
func Debugf(format string, args ...any) { logf(DEBUG, format, args...) }

// Infof logs a formatted message at INFO level.
func Infof(format string, args ...any) { logf(INFO, format, args...) }

// Warnf logs a formatted message at WARN level.
func Warnf(format string, args ...any) { logf(WARN, format, args...) }

// Errorf logs a formatted message at ERROR level.
func Errorf(format string, args ...any) { logf(ERROR, format, args...) }

// Fatalf logs a formatted message at ERROR level and terminates the program.
func Fatalf(format string, args ...any) {
	logf(ERROR, format, args...)
	os.Exit(1)
}

// GetLogs returns the log content accumulated in the in-memory buffer.
func GetLogs() string {
	return buffer.String()
}
