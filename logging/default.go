package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
)

// sink is the pair of destinations shared by a logger and its children.
// Debug and Info go to out; Warn and above go to errOut.
type sink struct {
	out    *log.Logger
	errOut *log.Logger
}

func (s *sink) forLevel(level Level) *log.Logger {
	if level >= WarnLevel {
		return s.errOut
	}
	return s.out
}

var palette = map[Level]string{
	WarnLevel:  ColorYellow,
	ErrorLevel: ColorRed,
	FatalLevel: ColorBold + ColorRed,
}

// DefaultLogger writes one line per entry through the standard log package.
// Keys are sorted; Warn, Error and Fatal are colored when the output is a TTY.
type DefaultLogger struct {
	sink      *sink
	level     Level
	fields    Fields
	useColors bool
	exit      func(int)
}

// NewDefaultLogger logs to stdout and stderr with timestamps
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		sink: &sink{
			out:    log.New(os.Stdout, "", log.LstdFlags),
			errOut: log.New(os.Stderr, "", log.LstdFlags),
		},
		level:     InfoLevel,
		fields:    Fields{},
		useColors: isTerminal(os.Stdout),
		exit:      os.Exit,
	}
}

// NewDefaultLoggerNoColor is NewDefaultLogger with colors forced off
func NewDefaultLoggerNoColor() *DefaultLogger {
	l := NewDefaultLogger()
	l.useColors = false
	return l
}

// NewWriterLogger sends every level to w without colors or timestamps.
// The terminal monitor uses it to keep log lines off the alt screen.
func NewWriterLogger(w io.Writer) *DefaultLogger {
	l := log.New(w, "", 0)
	return &DefaultLogger{
		sink:   &sink{out: l, errOut: l},
		level:  InfoLevel,
		fields: Fields{},
		exit:   os.Exit,
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (d *DefaultLogger) line(level Level, err error, msg string, extra []Fields) string {
	merged := make(Fields, len(d.fields))
	maps.Copy(merged, d.fields)
	for _, f := range extra {
		maps.Copy(merged, f)
	}

	var sb strings.Builder
	sb.WriteString("[" + level.String() + "] " + msg)
	if err != nil {
		sb.WriteString(": " + err.Error())
	}
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		fmt.Fprintf(&sb, " %s=%v", k, merged[k])
	}

	if color, ok := palette[level]; ok && d.useColors {
		return color + sb.String() + ColorReset
	}
	return sb.String()
}

func (d *DefaultLogger) emit(level Level, err error, msg string, extra []Fields) {
	if level < d.level {
		return
	}
	d.sink.forLevel(level).Println(d.line(level, err, msg, extra))
	if level == FatalLevel {
		d.exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) { d.emit(DebugLevel, nil, msg, fields) }
func (d *DefaultLogger) Info(msg string, fields ...Fields)  { d.emit(InfoLevel, nil, msg, fields) }
func (d *DefaultLogger) Warn(msg string, fields ...Fields)  { d.emit(WarnLevel, nil, msg, fields) }

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.emit(ErrorLevel, err, msg, fields)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.emit(FatalLevel, err, msg, fields)
}

// WithFields returns a child sharing the same sink
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	child := *d
	child.fields = make(Fields, len(d.fields)+len(fields))
	maps.Copy(child.fields, d.fields)
	maps.Copy(child.fields, fields)
	return &child
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	fields, ok := fieldsFromContext(ctx)
	if !ok {
		return d
	}
	return d.WithFields(fields)
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// NoOpLogger discards everything. Tests install it to keep output quiet.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(string, ...Fields)            {}
func (n *NoOpLogger) Info(string, ...Fields)             {}
func (n *NoOpLogger) Warn(string, ...Fields)             {}
func (n *NoOpLogger) Error(error, string, ...Fields)     {}
func (n *NoOpLogger) Fatal(error, string, ...Fields)     {}
func (n *NoOpLogger) WithFields(Fields) Logger           { return n }
func (n *NoOpLogger) WithContext(context.Context) Logger { return n }
func (n *NoOpLogger) SetLevel(Level)                     {}
