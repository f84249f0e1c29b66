package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Options configures the console and file outputs of a run
type Options struct {
	Dir            string
	Prefix         string // log file prefix, "clerkship" when empty
	RetentionWeeks int
	MaxFileSize    int64 // 0 disables size rotation
	ConsoleLevel   slog.Level
	FileLevel      slog.Level
	Console        io.Writer // os.Stderr when nil
}

// RotatingLogger writes to one log file per ISO week, starting a numbered
// file when the size limit is reached
type RotatingLogger struct {
	logDir      string
	prefix      string
	currentFile *os.File
	currentWeek string
	currentSize int64
	retention   time.Duration
	maxFileSize int64
	mu          sync.Mutex
}

// NewRotatingLogger creates a rotating logger; no file is opened until the
// first write
func NewRotatingLogger(logDir, prefix string, retentionWeeks int, maxFileSize int64) *RotatingLogger {
	if prefix == "" {
		prefix = "clerkship"
	}
	return &RotatingLogger{
		logDir:      logDir,
		prefix:      prefix,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
	}
}

// getWeekKey returns the week key in YYYY-Www format (ISO week)
func getWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// rotate opens the file for targetWeek (caller must hold the lock)
func (rl *RotatingLogger) rotate(targetWeek string, sizeExceeded bool) error {
	if rl.currentFile != nil {
		if err := rl.currentFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file during rotation: %v\n", err)
		}
		rl.currentFile = nil
	}

	fileName := rl.fileFor(targetWeek, sizeExceeded)
	logPath := filepath.Join(rl.logDir, fileName)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	rl.currentFile = file
	rl.currentWeek = targetWeek
	rl.currentSize = 0
	if info, err := file.Stat(); err == nil {
		rl.currentSize = info.Size()
	}

	return nil
}

// fileFor picks the base weekly file while it has room, otherwise the highest
// numbered file with room, otherwise the next number
func (rl *RotatingLogger) fileFor(targetWeek string, sizeExceeded bool) string {
	base := fmt.Sprintf("%s-%s.log", rl.prefix, targetWeek)

	if !sizeExceeded {
		info, err := os.Stat(filepath.Join(rl.logDir, base))
		if err != nil || rl.maxFileSize == 0 || info.Size() < rl.maxFileSize {
			return base
		}
	}

	highest, lastSize := rl.highestNumberedFile(targetWeek)
	if highest > 0 && lastSize < rl.maxFileSize && !sizeExceeded {
		return fmt.Sprintf("%s-%s_%02d.log", rl.prefix, targetWeek, highest)
	}
	return fmt.Sprintf("%s-%s_%02d.log", rl.prefix, targetWeek, highest+1)
}

func (rl *RotatingLogger) highestNumberedFile(targetWeek string) (int, int64) {
	pattern := fmt.Sprintf("%s-%s_??.log", rl.prefix, targetWeek)
	matches, _ := filepath.Glob(filepath.Join(rl.logDir, pattern))

	re := regexp.MustCompile(regexp.QuoteMeta(rl.prefix) + `-\d{4}-W\d{2}_(\d{2})\.log$`)

	highest := 0
	var size int64
	for _, match := range matches {
		m := re.FindStringSubmatch(filepath.Base(match))
		if len(m) < 2 {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		if num > highest {
			highest = num
			size = 0
			if info, err := os.Stat(match); err == nil {
				size = info.Size()
			}
		}
	}
	return highest, size
}

// Write writes data to the current log file, rotating first when the week
// changed or the write would exceed the size limit
func (rl *RotatingLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	week := getWeekKey(time.Now())
	sizeExceeded := rl.currentFile != nil && rl.maxFileSize > 0 && rl.currentSize+int64(len(p)) > rl.maxFileSize

	if rl.currentFile == nil || rl.currentWeek != week || sizeExceeded {
		if err := rl.rotate(week, sizeExceeded); err != nil {
			return 0, err
		}
	}

	n, err := rl.currentFile.Write(p)
	rl.currentSize += int64(n)
	return n, err
}

// CleanupOldLogs removes this logger's files older than the retention period
// and returns how many were deleted
func (rl *RotatingLogger) CleanupOldLogs() (int, error) {
	if rl.retention <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(rl.logDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := time.Now().Add(-rl.retention)
	deleted := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), rl.prefix+"-") || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(rl.logDir, entry.Name())); err == nil {
				deleted++
			}
		}
	}

	return deleted, nil
}

// Close closes the current log file
func (rl *RotatingLogger) Close() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.currentFile == nil {
		return nil
	}
	err := rl.currentFile.Close()
	rl.currentFile = nil
	return err
}

// SetupLogger builds a logger writing text to the console and JSON to the
// rotating file. When the log directory cannot be used the logger falls back
// to the console only. The returned closer is never nil.
func SetupLogger(opts Options) (*slog.Logger, io.Closer) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: opts.ConsoleLevel})

	if opts.Dir == "" {
		return slog.New(consoleHandler), noopCloser{}
	}

	if err := os.MkdirAll(opts.Dir, 0750); err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to create logs directory", "dir", opts.Dir, "error", err)
		return logger, noopCloser{}
	}

	rotating := NewRotatingLogger(opts.Dir, opts.Prefix, opts.RetentionWeeks, opts.MaxFileSize)

	// Batch runs are short, so old files are pruned once at startup
	if deleted, err := rotating.CleanupOldLogs(); err != nil {
		slog.New(consoleHandler).Warn("Failed to cleanup old logs", "error", err)
	} else if deleted > 0 {
		slog.New(consoleHandler).Debug("Cleaned up old log files", "count", deleted)
	}

	fileHandler := slog.NewJSONHandler(rotating, &slog.HandlerOptions{Level: opts.FileLevel})

	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), rotating
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

// multiHandler implements slog.Handler to write to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		newHandlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}
