package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "FATAL"
	}
}

func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes tagged lines to the console in colour and, optionally, to a plain log file.
type Logger struct {
	mu      sync.Mutex
	out     io.Writer
	file    *os.File
	level   Level
	exit    func(int)
	palette map[Level]*color.Color
}

type Option func(*Logger)

func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.out = w }
}

func WithLevel(level Level) Option {
	return func(l *Logger) { l.level = level }
}

// WithFile mirrors every line, uncoloured, into path.
func WithFile(path string) Option {
	return func(l *Logger) {
		if path == "" {
			return
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: cannot open %s: %v\n", path, err)
			return
		}
		l.file = f
	}
}

func WithExit(exit func(int)) Option {
	return func(l *Logger) { l.exit = exit }
}

func NewLogger(opts ...Option) *Logger {
	l := &Logger{
		out:   color.Output,
		level: ParseLevel(os.Getenv("LOG_LEVEL")),
		exit:  os.Exit,
		palette: map[Level]*color.Color{
			LevelDebug: color.New(color.FgHiBlack),
			LevelInfo:  color.New(color.FgGreen),
			LevelWarn:  color.New(color.FgYellow),
			LevelError: color.New(color.FgRed),
			LevelFatal: color.New(color.FgHiRed, color.Bold),
		},
	}
	WithFile(os.Getenv("LOG_FILE"))(l)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) write(level Level, category, message string) {
	if level < l.level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	line := fmt.Sprintf("%s [%-5s] [%s] %s", ts, level, category, message)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.palette[level].Fprintln(l.out, line)
	if l.file != nil {
		fmt.Fprintln(l.file, line)
	}
}

func (l *Logger) Debug(category, message string) { l.write(LevelDebug, category, message) }
func (l *Logger) Info(category, message string)  { l.write(LevelInfo, category, message) }
func (l *Logger) Warn(category, message string)  { l.write(LevelWarn, category, message) }
func (l *Logger) Error(category, message string) { l.write(LevelError, category, message) }

func (l *Logger) Fatal(category, message string) {
	l.write(LevelFatal, category, message)
	_ = l.Close()
	l.exit(1)
}

func (l *Logger) LogProcess(stage, message string) {
	l.Info(stage, "⚙️  "+message)
}

func (l *Logger) LogDatabase(operation, driver, message string) {
	l.Debug("DB:"+driver, fmt.Sprintf("%s %s", operation, message))
}

func (l *Logger) LogKafka(operation, topic, message string) {
	l.Info("KAFKA:"+topic, fmt.Sprintf("%s %s", operation, message))
}

func (l *Logger) LogAPI(method, path, status, duration string) {
	l.Info("API", fmt.Sprintf("%s %s - %s (%s)", method, path, status, duration))
}

func (l *Logger) LogSecurity(event, message string) {
	l.Warn("SECURITY", fmt.Sprintf("%s %s", event, message))
}

func (l *Logger) LogBooking(operation string, bookingID int64, message string) {
	l.Info("BOOKING", fmt.Sprintf("%s #%d %s", operation, bookingID, message))
}
