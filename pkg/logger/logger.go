package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger - структурированный логгер, который передается во все слои.
// keyvals - пары ключ/значение: log.Info("msg", "key", value)
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
	Fatal(msg string, keyvals ...interface{})
	With(keyvals ...interface{}) Logger
}

type zeroLogger struct {
	zl zerolog.Logger
}

// New создает логгер с заданным уровнем (debug, info, warn, error)
func New(level string) Logger {
	return NewWithWriter(os.Stdout, level)
}

func NewWithWriter(w io.Writer, level string) Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zl := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	return &zeroLogger{zl: zl}
}

// NewNop возвращает логгер, который ничего не пишет (для тестов)
func NewNop() Logger {
	return &zeroLogger{zl: zerolog.Nop()}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *zeroLogger) Debug(msg string, keyvals ...interface{}) {
	l.emit(l.zl.Debug(), msg, keyvals)
}

func (l *zeroLogger) Info(msg string, keyvals ...interface{}) {
	l.emit(l.zl.Info(), msg, keyvals)
}

func (l *zeroLogger) Warn(msg string, keyvals ...interface{}) {
	l.emit(l.zl.Warn(), msg, keyvals)
}

func (l *zeroLogger) Error(msg string, keyvals ...interface{}) {
	l.emit(l.zl.Error(), msg, keyvals)
}

// Fatal пишет сообщение и завершает процесс
func (l *zeroLogger) Fatal(msg string, keyvals ...interface{}) {
	l.emit(l.zl.WithLevel(zerolog.FatalLevel), msg, keyvals)
	os.Exit(1)
}

func (l *zeroLogger) With(keyvals ...interface{}) Logger {
	ctx := l.zl.With()
	for i := 0; i < len(keyvals); i += 2 {
		key, val := pair(keyvals, i)
		ctx = ctx.Interface(key, val)
	}
	return &zeroLogger{zl: ctx.Logger()}
}

func (l *zeroLogger) emit(ev *zerolog.Event, msg string, keyvals []interface{}) {
	if ev == nil {
		return
	}
	for i := 0; i < len(keyvals); i += 2 {
		key, val := pair(keyvals, i)
		if err, ok := val.(error); ok {
			ev = ev.AnErr(key, err)
			continue
		}
		ev = ev.Interface(key, val)
	}
	ev.Msg(msg)
}

func pair(keyvals []interface{}, i int) (string, interface{}) {
	key, ok := keyvals[i].(string)
	if !ok {
		key = fmt.Sprint(keyvals[i])
	}
	if i+1 >= len(keyvals) {
		return key, "(MISSING)"
	}
	return key, keyvals[i+1]
}
