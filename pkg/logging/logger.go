package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger 包装 slog.Logger，并负责关闭文件类输出
type Logger struct {
	*slog.Logger
	closers []io.Closer
}

// Options 日志配置
type Options struct {
	Level  string
	Format string
}

// New 创建 Logger，输出到给定 writer；Format 为 json 时使用 JSONHandler
func New(opts Options, writers ...io.Writer) (*Logger, error) {
	if len(writers) == 0 {
		return nil, fmt.Errorf("必须提供至少一个日志输出")
	}
	var closerList []io.Closer
	for _, w := range writers {
		if w == os.Stdout || w == os.Stderr {
			continue
		}
		if c, ok := w.(io.Closer); ok {
			closerList = append(closerList, c)
		}
	}
	output := writers[0]
	if len(writers) > 1 {
		output = io.MultiWriter(writers...)
	}
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		handler = slog.NewTextHandler(output, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(output, handlerOpts)
	default:
		return nil, fmt.Errorf("未知日志格式: %s", opts.Format)
	}
	return &Logger{
		Logger:  slog.New(handler),
		closers: closerList,
	}, nil
}

// Discard 返回丢弃所有输出的 Logger
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// Close 关闭所有可关闭的输出
func (l *Logger) Close() error {
	var errs []error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.closers = nil
	return errors.Join(errs...)
}

// ParseLevel 解析日志级别，未知值按 info 处理
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
