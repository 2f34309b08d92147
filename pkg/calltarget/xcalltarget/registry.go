package xcalltarget

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xagent/internal/agentlog"
	"github.com/omeyang/xagent/pkg/calltarget/xduck"
)

// shardCount 分片数量，必须为 2 的幂
const shardCount = 32

type shard struct {
	mu      sync.Mutex
	buckets map[string][]slot
}

// Registry 处理器绑定注册表。
//
// 每个签名至多绑定一次，结果（成功或回退）在进程内保持不变。
// 注册表按签名字符串的 xxhash 分片，不同签名的首次绑定互不阻塞。
type Registry struct {
	shards   [shardCount]shard
	accessor atomic.Pointer[accessorBox]
	settings atomic.Pointer[settings]
	count    atomic.Int64

	// reconfigMu 串行化 Reconfigure 的读-改-写
	reconfigMu sync.Mutex
}

// Option 注册表配置选项
type Option func(*options)

type options struct {
	binder        Binder
	adapter       xduck.Adapter
	logger        agentlog.Logger
	meterProvider metric.MeterProvider
	onBindError   func(sig Signature, err error)
	disabled      []string
	guard         *GuardConfig
	accessor      Accessor
}

// WithBinder 设置绑定器，默认 ReflectBinder
func WithBinder(b Binder) Option {
	return func(o *options) {
		o.binder = b
	}
}

// WithAdapter 设置默认绑定器使用的视图适配器，默认 xduck.Default()。
// 与 WithBinder 同时设置时无效。
func WithAdapter(a xduck.Adapter) Option {
	return func(o *options) {
		o.adapter = a
	}
}

// WithLogger 设置诊断日志，默认丢弃
func WithLogger(l agentlog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMeterProvider 设置绑定与保护指标的 MeterProvider，默认 otel 全局 provider
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithOnBindError 设置绑定失败回调。
// 每个失败签名只回调一次，回调中的 panic 会被吞掉。
func WithOnBindError(fn func(sig Signature, err error)) Option {
	return func(o *options) {
		o.onBindError = fn
	}
}

// WithDisabledIntegrations 设置禁用的集成，重复设置时以最后一次为准。
// 名称可以是完整名称（包路径.类型名，见 Signature.IntegrationName）或 reflect 短名称（xgin.Integration）。
func WithDisabledIntegrations(names ...string) Option {
	return func(o *options) {
		o.disabled = slices.Clone(names)
	}
}

// WithGuard 启用调用保护：已绑定回调 panic 时返回回退结果，
// 连续 panic 达到阈值后熔断，熔断期间直接走回退结果。
//
// 保护有代价：每次 Invoke 额外一次堆分配，且同一签名的并发调用
// 在熔断器的互斥锁上串行。未启用保护时 Invoke 不分配。
func WithGuard(cfg GuardConfig) Option {
	return func(o *options) {
		o.guard = &cfg
	}
}

// WithoutGuard 关闭调用保护
func WithoutGuard() Option {
	return func(o *options) {
		o.guard = nil
	}
}

// WithAccessor 设置执行上下文访问器，默认 NopAccessor
func WithAccessor(a Accessor) Option {
	return func(o *options) {
		o.accessor = a
	}
}

// settings 一次绑定使用的配置快照
type settings struct {
	src         options
	binder      Binder
	logger      agentlog.Logger
	onBindError func(sig Signature, err error)
	disabled    map[string]struct{}
	guardCfg    *GuardConfig
	metrics     *metrics
}

func newSettings(o options) *settings {
	s := &settings{
		src:         o,
		binder:      o.binder,
		logger:      o.logger,
		onBindError: o.onBindError,
	}
	if s.binder == nil {
		s.binder = NewReflectBinder(o.adapter)
	}
	if s.logger == nil {
		s.logger = agentlog.Discard()
	}
	s.logger = s.logger.With(agentlog.Component("calltarget"))

	if len(o.disabled) > 0 {
		s.disabled = make(map[string]struct{}, len(o.disabled))
		for _, name := range o.disabled {
			if name = strings.TrimSpace(name); name != "" {
				s.disabled[name] = struct{}{}
			}
		}
	}
	if o.guard != nil {
		cfg := o.guard.withDefaults()
		s.guardCfg = &cfg
	}

	m, err := newMetrics(o.meterProvider)
	if err != nil {
		s.logger.Warn(context.Background(), "calltarget: metrics disabled", agentlog.Err(err))
		m = noopMetrics()
	}
	s.metrics = m
	return s
}

// NewRegistry 创建注册表
func NewRegistry(opts ...Option) *Registry {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	r := &Registry{}
	for i := range r.shards {
		r.shards[i].buckets = make(map[string][]slot)
	}
	r.settings.Store(newSettings(o))
	r.SetAccessor(o.accessor)
	return r
}

// Reconfigure 在当前配置基础上应用 opts。
//
// 只影响之后发生的绑定，已完成的绑定（包括回退）保持不变。
// 选项中包含 WithAccessor 时同时替换访问器。并发调用按顺序依次生效。
func (r *Registry) Reconfigure(opts ...Option) {
	r.reconfigMu.Lock()
	defer r.reconfigMu.Unlock()

	o := r.settings.Load().src
	o.accessor = nil
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.accessor != nil {
		r.SetAccessor(o.accessor)
		o.accessor = nil
	}
	r.settings.Store(newSettings(o))
}

var defaultRegistry atomic.Pointer[Registry]

// Default 返回进程级默认注册表，首次调用时以默认选项创建。
func Default() *Registry {
	if r := defaultRegistry.Load(); r != nil {
		return r
	}
	defaultRegistry.CompareAndSwap(nil, NewRegistry())
	return defaultRegistry.Load()
}

// SetDefault 替换默认注册表，nil 被忽略。
// 只影响之后创建的处理器，已创建的处理器仍使用原注册表。
func SetDefault(r *Registry) {
	if r != nil {
		defaultRegistry.Store(r)
	}
}

// SetAccessor 替换执行上下文访问器，nil 恢复为 NopAccessor。
// 可在任意时刻调用，之后的 Invoke 立即生效。
func (r *Registry) SetAccessor(a Accessor) {
	if a == nil {
		a = NopAccessor{}
	}
	r.accessor.Store(&accessorBox{Accessor: a})
}

// Accessor 返回当前访问器
func (r *Registry) Accessor() Accessor {
	return r.accessor.Load().Accessor
}

// currentSegment 探针激活时返回当前执行片段，否则返回 nil
func (r *Registry) currentSegment() trace.Span {
	a := r.accessor.Load().Accessor
	if !a.Enabled() {
		return nil
	}
	return a.CurrentSegment()
}

// Len 返回已登记的签名数量
func (r *Registry) Len() int {
	return int(r.count.Load())
}

// Bindings 返回所有签名的绑定快照，按签名字符串排序
func (r *Registry) Bindings() []BindingInfo {
	out := make([]BindingInfo, 0, r.Len())
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.Lock()
		for _, bucket := range s.buckets {
			for _, e := range bucket {
				out = append(out, e.info())
			}
		}
		s.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b BindingInfo) int {
		return strings.Compare(a.Signature.String(), b.Signature.String())
	})
	return out
}

// lookup 返回签名对应的条目，不存在时登记 spec 并返回新条目。
// 同一签名的所有处理器共享同一个条目。
func lookup[F any](r *Registry, sig Signature, spec binding[F]) *entry[F] {
	key := sig.String()
	s := &r.shards[xxhash.Sum64String(key)&(shardCount-1)]

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.buckets[key] {
		if !e.signature().Equal(sig) {
			continue
		}
		if typed, ok := e.(*entry[F]); ok {
			return typed
		}
	}
	e := &entry[F]{sig: sig, reg: r, spec: spec}
	s.buckets[key] = append(s.buckets[key], e)
	r.count.Add(1)
	return e
}

func (s *settings) isDisabled(sig Signature) bool {
	if len(s.disabled) == 0 || sig.Integration == nil {
		return false
	}
	if _, ok := s.disabled[sig.IntegrationName()]; ok {
		return true
	}
	_, ok := s.disabled[sig.Integration.String()]
	return ok
}

func (s *settings) reportBound(sig Signature, d time.Duration) {
	s.metrics.recordBind(sig, OutcomeBound, d)
	s.logger.Debug(context.Background(), "calltarget: bound",
		slog.String("signature", sig.String()),
		slog.Duration("duration", d),
	)
}

func (s *settings) reportFailure(sig Signature, err *BindingError, d time.Duration) {
	s.metrics.recordBind(sig, OutcomeFallback, d)
	s.logger.Warn(context.Background(), "calltarget: binding failed, fallback installed",
		slog.String("signature", sig.String()),
		slog.Duration("duration", d),
		agentlog.Err(err.Err),
	)
	if s.onBindError != nil {
		s.safeOnBindError(sig, err)
	}
}

func (s *settings) safeOnBindError(sig Signature, err error) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error(context.Background(), "calltarget: OnBindError callback panicked",
				slog.Any("panic", p),
			)
		}
	}()
	s.onBindError(sig, err)
}
