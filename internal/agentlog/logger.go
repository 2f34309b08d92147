package agentlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 属性键常量
const (
	KeyComponent = "component"
	KeyError     = "error"
)

// ErrUnknownFormat 表示不支持的输出格式。
var ErrUnknownFormat = errors.New("agentlog: unknown format")

// Logger 探针日志接口
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// With 返回带固定属性的派生 Logger，派生 logger 共享级别
	With(attrs ...slog.Attr) Logger

	// SetLevel 动态调整级别，对所有派生 logger 生效
	SetLevel(level slog.Level)

	// Enabled 检查级别是否启用，用于构造昂贵属性前的短路
	Enabled(ctx context.Context, level slog.Level) bool
}

// 编译时接口检查
var _ Logger = (*logger)(nil)

type logger struct {
	handler    slog.Handler
	levelVar   *slog.LevelVar
	errorCount *atomic.Uint64
	onError    func(error)
}

func (l *logger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.AddAttrs(attrs...)
	if err := l.handler.Handle(ctx, r); err != nil {
		l.errorCount.Add(1)
		if l.onError != nil {
			l.safeOnError(err)
		}
	}
}

// safeOnError 隔离回调 panic，日志失败不扩散到宿主调用链
func (l *logger) safeOnError(err error) {
	defer func() {
		if r := recover(); r != nil {
			l.errorCount.Add(1)
		}
	}()
	l.onError(err)
}

func (l *logger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs)
}

func (l *logger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs)
}

func (l *logger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs)
}

func (l *logger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs)
}

func (l *logger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return &logger{
		handler:    l.handler.WithAttrs(attrs),
		levelVar:   l.levelVar,
		errorCount: l.errorCount,
		onError:    l.onError,
	}
}

func (l *logger) SetLevel(level slog.Level) {
	l.levelVar.Set(level)
}

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.handler.Enabled(ctx, level)
}

// ErrorCount 返回内部写入失败次数，仅对 Build 创建的 Logger 有效
func ErrorCount(l Logger) uint64 {
	if xl, ok := l.(*logger); ok {
		return xl.errorCount.Load()
	}
	return 0
}

// =============================================================================
// Builder
// =============================================================================

// RotationConfig 日志文件轮转配置，字段含义与 lumberjack 一致
type RotationConfig struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Builder 日志构建器（first-error-wins，一次性使用）
type Builder struct {
	output   io.Writer
	levelVar *slog.LevelVar
	format   string
	closer   io.Closer
	onError  func(error)
	err      error
}

// New 创建构建器，默认 stderr、Info、text
func New() *Builder {
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelInfo)
	return &Builder{
		output:   os.Stderr,
		levelVar: lv,
		format:   "text",
	}
}

// SetOutput 设置输出目标
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if b.err != nil {
		return b
	}
	if w != nil {
		b.output = w
	}
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level slog.Level) *Builder {
	if b.err != nil {
		return b
	}
	b.levelVar.Set(level)
	return b
}

// SetLevelString 通过字符串设置级别，空字符串保持默认
func (b *Builder) SetLevelString(s string) *Builder {
	if b.err != nil {
		return b
	}
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json
func (b *Builder) SetFormat(format string) *Builder {
	if b.err != nil {
		return b
	}
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = normalized
	default:
		b.err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return b
}

// SetRotation 输出到按大小轮转的文件
func (b *Builder) SetRotation(filename string, cfg RotationConfig) *Builder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(filename) == "" {
		b.err = errors.New("agentlog: empty rotation filename")
		return b
	}
	lj := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	b.output = lj
	b.closer = lj
	return b
}

// SetOnError 设置写入失败回调，回调在热路径同步执行
func (b *Builder) SetOnError(fn func(error)) *Builder {
	b.onError = fn
	return b
}

// Build 构建 Logger，返回清理函数（关闭轮转文件，幂等）
func (b *Builder) Build() (Logger, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}
	opts := &slog.HandlerOptions{Level: b.levelVar}
	var handler slog.Handler
	if b.format == "json" {
		handler = slog.NewJSONHandler(b.output, opts)
	} else {
		handler = slog.NewTextHandler(b.output, opts)
	}

	l := &logger{
		handler:    handler,
		levelVar:   b.levelVar,
		errorCount: new(atomic.Uint64),
		onError:    b.onError,
	}

	var once sync.Once
	closer := b.closer
	cleanup := func() error {
		var err error
		once.Do(func() {
			if closer != nil {
				err = closer.Close()
			}
		})
		return err
	}
	return l, cleanup, nil
}

// Discard 返回丢弃所有输出的 Logger
func Discard() Logger {
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelError + 1)
	return &logger{
		handler:    slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: lv}),
		levelVar:   lv,
		errorCount: new(atomic.Uint64),
	}
}

// ParseLevel 解析 debug/info/warn/warning/error（大小写不敏感），空字符串为 info
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("agentlog: unknown level %q", s)
	}
}

// Err 错误属性，nil 时输出空字符串
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Component 组件属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}
