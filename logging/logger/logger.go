package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ncobase/unicourse/ctxutil"
	"github.com/sirupsen/logrus"
)

// Key constants
const (
	VersionKey = "version"
	SessionKey = "session"
	traceKey   = ctxutil.TraceIDKey
)

// Config configuration struct
type Config struct {
	Level      int    `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"`
	Output     string `json:"output" yaml:"output"`
	OutputFile string `json:"output_file" yaml:"output_file"`
}

// Logger wraps logrus with context-aware helpers.
type Logger struct {
	*logrus.Logger
	version string
	logPath string

	mu      sync.Mutex
	logFile *os.File
	stop    chan struct{}
}

var (
	standardLogger *Logger
	once           sync.Once
)

// StdLogger returns the singleton logger instance
func StdLogger() *Logger {
	once.Do(func() {
		standardLogger = NewLogger()
	})
	return standardLogger
}

// NewLogger returns an unconfigured JSON logger writing to stderr.
func NewLogger() *Logger {
	l := &Logger{Logger: logrus.New()}
	l.SetFormatter(&logrus.JSONFormatter{})
	return l
}

// New configures the standard logger and returns its cleanup function.
func New(c *Config) (func(), error) {
	return StdLogger().Init(c)
}

// SetVersion sets the version for logging
func (l *Logger) SetVersion(v string) {
	l.version = v
}

// Init initializes the logger with the given configuration
func (l *Logger) Init(c *Config) (func(), error) {
	if c == nil {
		return func() {}, nil
	}
	if c.Level > 0 {
		l.SetLevel(logrus.Level(c.Level))
	}

	switch c.Format {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	switch c.Output {
	case "stdout":
		l.SetOutput(os.Stdout)
	case "file":
		l.logPath = c.OutputFile
		if l.logPath == "" {
			return nil, fmt.Errorf("logger: output_file is required for file output")
		}
		if err := l.setupLogFile(); err != nil {
			return nil, err
		}
		l.stop = make(chan struct{})
		go l.periodicLogRotation(l.stop)
	default:
		l.SetOutput(os.Stderr)
	}

	return func() {
		if l.stop != nil {
			close(l.stop)
			l.stop = nil
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.logFile != nil {
			_ = l.logFile.Close()
			l.logFile = nil
		}
	}, nil
}

func (l *Logger) setupLogFile() error {
	if err := os.MkdirAll(filepath.Dir(l.logPath), 0o755); err != nil {
		return err
	}
	return l.rotateLog()
}

func (l *Logger) rotateLog() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		if err := l.logFile.Close(); err != nil {
			return err
		}
	}

	logFilePath := fmt.Sprintf("%s.%s.log", strings.TrimSuffix(l.logPath, ".log"), time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}

	l.logFile = f
	l.Logger.SetOutput(f)
	return nil
}

func (l *Logger) periodicLogRotation(stop <-chan struct{}) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := l.rotateLog(); err != nil {
				l.Logger.Errorf("Error rotating log: %v", err)
			}
		}
	}
}

// entryFromContext creates a new log entry with fields from context
func (l *Logger) entryFromContext(ctx context.Context) *logrus.Entry {
	fields := logrus.Fields{}
	if ctx == nil {
		ctx = context.Background()
	}

	if traceID := ctxutil.GetTraceID(ctx); traceID != "" {
		fields[traceKey] = traceID
	}
	if sessionID := ctxutil.GetSessionID(ctx); sessionID != "" {
		fields[SessionKey] = sessionID
	}
	if l.version != "" {
		fields[VersionKey] = l.version
	}

	return l.WithFields(fields).WithContext(ctx)
}

// WithFields returns an entry carrying the context fields plus the given ones.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.Logger.WithFields(fields)
}

// Entry returns an entry carrying the context fields.
func (l *Logger) Entry(ctx context.Context) *logrus.Entry {
	return l.entryFromContext(ctx)
}

func (l *Logger) log(ctx context.Context, level logrus.Level, args ...any) {
	l.entryFromContext(ctx).Log(level, args...)
}

func (l *Logger) logf(ctx context.Context, level logrus.Level, format string, args ...any) {
	l.entryFromContext(ctx).Logf(level, format, args...)
}

func (l *Logger) Trace(ctx context.Context, args ...any) { l.log(ctx, logrus.TraceLevel, args...) }
func (l *Logger) Debug(ctx context.Context, args ...any) { l.log(ctx, logrus.DebugLevel, args...) }
func (l *Logger) Info(ctx context.Context, args ...any)  { l.log(ctx, logrus.InfoLevel, args...) }
func (l *Logger) Warn(ctx context.Context, args ...any)  { l.log(ctx, logrus.WarnLevel, args...) }
func (l *Logger) Error(ctx context.Context, args ...any) { l.log(ctx, logrus.ErrorLevel, args...) }

func (l *Logger) Tracef(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.TraceLevel, format, args...)
}
func (l *Logger) Debugf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.DebugLevel, format, args...)
}
func (l *Logger) Infof(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.InfoLevel, format, args...)
}
func (l *Logger) Warnf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.WarnLevel, format, args...)
}
func (l *Logger) Errorf(ctx context.Context, format string, args ...any) {
	l.logf(ctx, logrus.ErrorLevel, format, args...)
}

// SetOutput sets the output destination for the logger
func (l *Logger) SetOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Logger.SetOutput(out)
}

// Discard returns a logger that drops everything, handy in tests.
func Discard() *Logger {
	l := NewLogger()
	l.Logger.SetOutput(io.Discard)
	return l
}
