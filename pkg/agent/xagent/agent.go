package xagent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xagent/internal/agentlog"
	"github.com/omeyang/xagent/pkg/calltarget/xcalltarget"
)

// Option 探针选项
type Option func(*agentOptions)

type agentOptions struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	registry       *xcalltarget.Registry
	logger         agentlog.Logger
	store          SegmentStore
	processors     []sdktrace.SpanProcessor
}

// WithTracerProvider 使用外部 TracerProvider，探针不负责关闭它。
// 设置后 WithSpanProcessor 无效。
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *agentOptions) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider 设置绑定指标的 MeterProvider，默认 otel 全局 provider。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *agentOptions) {
		o.meterProvider = mp
	}
}

// WithRegistry 设置探针接管的注册表，默认 xcalltarget.Default()。
func WithRegistry(r *xcalltarget.Registry) Option {
	return func(o *agentOptions) {
		o.registry = r
	}
}

// WithLogger 使用外部诊断日志，此时忽略配置中的 log 段（level 热更新除外）。
func WithLogger(l agentlog.Logger) Option {
	return func(o *agentOptions) {
		o.logger = l
	}
}

// WithSegmentStore 设置执行片段存储，默认 NewGLSStore()。
func WithSegmentStore(s SegmentStore) Option {
	return func(o *agentOptions) {
		o.store = s
	}
}

// WithSpanProcessor 为探针自有的 TracerProvider 添加 SpanProcessor（通常是导出器）。
func WithSpanProcessor(p sdktrace.SpanProcessor) Option {
	return func(o *agentOptions) {
		if p != nil {
			o.processors = append(o.processors, p)
		}
	}
}

// Agent 探针实例。
//
// Agent 实现 xcalltarget.Accessor，New 时安装到注册表，Shutdown 时卸载。
type Agent struct {
	id       string
	cfg      atomic.Pointer[Config]
	enabled  atomic.Bool
	closed   atomic.Bool
	logger   agentlog.Logger
	closeLog func() error

	ownedTP  *sdktrace.TracerProvider
	mp       metric.MeterProvider
	tracer   *Tracer
	registry *xcalltarget.Registry

	mu       sync.Mutex
	watchers []*ConfigWatcher
}

var _ xcalltarget.Accessor = (*Agent)(nil)

// New 创建探针。cfg 为 nil 时使用 DefaultConfig()。
func New(cfg *Config, opts ...Option) (*Agent, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()

	var o agentOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	a := &Agent{
		id:       uuid.NewString(),
		mp:       o.meterProvider,
		registry: o.registry,
		closeLog: func() error { return nil },
	}
	if a.registry == nil {
		a.registry = xcalltarget.Default()
	}

	if o.logger != nil {
		a.logger = o.logger
		if lvl, err := agentlog.ParseLevel(cfg.Log.Level); err == nil {
			a.logger.SetLevel(lvl)
		}
	} else {
		l, closer, err := cfg.Log.buildLogger()
		if err != nil {
			return nil, fmt.Errorf("xagent: build logger: %w", err)
		}
		a.logger, a.closeLog = l, closer
	}
	a.logger = a.logger.With(agentlog.Component("xagent"), slog.String("agent_id", a.id))

	tp := o.tracerProvider
	if tp == nil {
		a.ownedTP = newTracerProvider(cfg.ServiceName, a.id, o.processors)
		tp = a.ownedTP
	}
	store := o.store
	if store == nil {
		store = NewGLSStore()
	}
	a.tracer = newTracer(tp, store)

	a.cfg.Store(cfg)
	a.enabled.Store(cfg.Enabled)
	a.registry.Reconfigure(append(cfg.registryOptions(a.logger, a.mp), xcalltarget.WithAccessor(a))...)

	a.logger.Info(context.Background(), "xagent: started",
		slog.String("service", cfg.ServiceName),
		slog.Bool("enabled", cfg.Enabled),
		slog.Bool("gls", GLSInstalled()),
	)
	return a, nil
}

func newTracerProvider(service, instanceID string, processors []sdktrace.SpanProcessor) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", service),
		attribute.String("service.instance.id", instanceID),
	)
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	return sdktrace.NewTracerProvider(opts...)
}

// ID 返回探针实例 ID（uuid），同时作为 service.instance.id 资源属性。
func (a *Agent) ID() string { return a.id }

// Enabled 实现 xcalltarget.Accessor：探针未关闭且处于激活状态。
func (a *Agent) Enabled() bool {
	return !a.closed.Load() && a.enabled.Load()
}

// SetEnabled 切换激活状态，立即对之后的 Invoke 生效。
func (a *Agent) SetEnabled(enabled bool) {
	a.enabled.Store(enabled)
}

// CurrentSegment 实现 xcalltarget.Accessor
func (a *Agent) CurrentSegment() trace.Span {
	return a.tracer.CurrentExecutionSegment()
}

// Tracer 返回执行片段管理器
func (a *Agent) Tracer() *Tracer { return a.tracer }

// Registry 返回探针接管的注册表
func (a *Agent) Registry() *xcalltarget.Registry { return a.registry }

// Logger 返回探针诊断日志
func (a *Agent) Logger() agentlog.Logger { return a.logger }

// Config 返回当前配置的副本
func (a *Agent) Config() *Config { return a.cfg.Load().Clone() }

// ApplyConfig 应用新配置。
//
// enabled、log.level、integrations、guard 立即生效（后两者只影响之后的绑定）；
// service_name 与 log 输出设置需要重启，变更时记录警告。
func (a *Agent) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if a.closed.Load() {
		return ErrShutdown
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg = cfg.Clone()
	old := a.cfg.Swap(cfg)

	a.enabled.Store(cfg.Enabled)
	if lvl, err := agentlog.ParseLevel(cfg.Log.Level); err == nil {
		a.logger.SetLevel(lvl)
	}
	a.registry.Reconfigure(cfg.registryOptions(a.logger, a.mp)...)

	ctx := context.Background()
	if old.ServiceName != cfg.ServiceName {
		a.logger.Warn(ctx, "xagent: service_name change requires restart",
			slog.String("current", old.ServiceName),
			slog.String("configured", cfg.ServiceName),
		)
	}
	if old.Log.File != cfg.Log.File || old.Log.Format != cfg.Log.Format {
		a.logger.Warn(ctx, "xagent: log output change requires restart")
	}
	a.logger.Info(ctx, "xagent: config applied",
		slog.Bool("enabled", cfg.Enabled),
		slog.String("log_level", cfg.Log.Level),
	)
	return nil
}

// WatchConfig 监视配置文件，变更后自动 ApplyConfig。
// 监视器在 Shutdown 时停止，也可以提前调用其 Stop。
func (a *Agent) WatchConfig(path string, opts ...WatchOption) (*ConfigWatcher, error) {
	if a.closed.Load() {
		return nil, ErrShutdown
	}
	w, err := WatchConfig(path, func(cfg *Config, err error) {
		ctx := context.Background()
		if err == nil {
			err = a.ApplyConfig(cfg)
		}
		if err != nil {
			a.logger.Warn(ctx, "xagent: config reload failed, keeping current config",
				slog.String("path", path), agentlog.Err(err))
		}
	}, opts...)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.watchers = append(a.watchers, w)
	a.mu.Unlock()
	w.StartAsync()
	return w, nil
}

// Shutdown 卸载访问器，停止配置监视并刷新自有的 TracerProvider。
// 可重复调用，之后的调用返回 nil。
func (a *Agent) Shutdown(ctx context.Context) error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	if a.registry.Accessor() == xcalltarget.Accessor(a) {
		a.registry.SetAccessor(nil)
		// 日志即将关闭，注册表之后的绑定诊断不能再写入
		a.registry.Reconfigure(xcalltarget.WithLogger(agentlog.Discard()))
	}

	a.mu.Lock()
	watchers := a.watchers
	a.watchers = nil
	a.mu.Unlock()

	var errs []error
	for _, w := range watchers {
		errs = append(errs, w.Stop())
	}
	if a.ownedTP != nil {
		errs = append(errs, a.ownedTP.Shutdown(ctx))
	}
	a.logger.Info(context.Background(), "xagent: shut down")
	errs = append(errs, a.closeLog())
	return errors.Join(errs...)
}
