package xduck

import (
	"fmt"
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize 默认缓存的 (类型, 视图) 解析条目数。
const DefaultCacheSize = 1024

// Adapter 视图适配能力。
//
// xcalltarget 的绑定器依赖此接口：绑定时用 CanAdapt 做静态检查，
// 调用时用 Adapt 取得代理值。
type Adapter interface {
	// Adapt 返回 instance 在视图 view 下的代理值。instance 为 nil 时返回 (nil, nil)。
	Adapt(instance any, view reflect.Type) (any, error)

	// CanAdapt 报告静态类型 from 的值是否可能适配为 view。
	// from 为接口类型时，最终结果取决于运行时的动态类型。
	CanAdapt(from, view reflect.Type) bool
}

// 编译时接口检查
var _ Adapter = (*Registry)(nil)

type strategy uint8

const (
	strategyNone strategy = iota
	strategyIdentity
	strategyAddress
	strategyFactory
)

type pair struct {
	from reflect.Type
	view reflect.Type
}

type resolution struct {
	strategy strategy
	factory  func(any) any
	err      *AdaptError
}

type ifaceFactory struct {
	from reflect.Type
	view reflect.Type
	fn   func(any) any
}

// Registry 适配函数注册表，并发安全。
// 必须通过 [New] 创建，或使用 [Default]。
type Registry struct {
	mu      sync.RWMutex
	exact   map[pair]func(any) any
	byIface []ifaceFactory
	cache   *lru.Cache[pair, resolution]
}

// Option 注册表配置选项
type Option func(*options)

type options struct {
	cacheSize int
}

// WithCacheSize 设置解析缓存条目数，默认 DefaultCacheSize
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// New 创建注册表
func New(opts ...Option) (*Registry, error) {
	o := &options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.cacheSize <= 0 {
		return nil, ErrInvalidCacheSize
	}
	cache, err := lru.New[pair, resolution](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("xduck: create cache: %w", err)
	}
	return &Registry{
		exact: make(map[pair]func(any) any),
		cache: cache,
	}, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := New()
	if err != nil {
		// 默认参数不会失败
		panic(err)
	}
	return r
})

// Default 返回进程级默认注册表
func Default() *Registry {
	return defaultRegistry()
}

// Register 注册从 C 到视图 V 的适配函数。
//
// C 为具体类型时精确匹配；C 为接口类型时，任何实现 C 的实例都可使用该函数，
// 多个接口适配函数同时命中时后注册者优先。
func Register[C, V any](r *Registry, fn func(C) V) error {
	if fn == nil {
		return ErrNilFactory
	}
	view := reflect.TypeFor[V]()
	if view.Kind() != reflect.Interface {
		return fmt.Errorf("%w: %s", ErrViewNotInterface, view)
	}
	if r == nil {
		r = Default()
	}
	from := reflect.TypeFor[C]()
	wrapped := func(x any) any { return fn(x.(C)) }

	r.mu.Lock()
	defer r.mu.Unlock()
	if from.Kind() == reflect.Interface {
		r.byIface = append(r.byIface, ifaceFactory{from: from, view: view, fn: wrapped})
	} else {
		r.exact[pair{from: from, view: view}] = wrapped
	}
	r.cache.Purge()
	return nil
}

// As 将 instance 适配为视图 V。r 为 nil 时使用 Default。
func As[V any](r *Registry, instance any) (V, error) {
	var zero V
	view := reflect.TypeFor[V]()
	if view.Kind() != reflect.Interface {
		return zero, fmt.Errorf("%w: %s", ErrViewNotInterface, view)
	}
	if v, ok := instance.(V); ok {
		return v, nil
	}
	if r == nil {
		r = Default()
	}
	proxy, err := r.Adapt(instance, view)
	if err != nil || proxy == nil {
		return zero, err
	}
	v, ok := proxy.(V)
	if !ok {
		return zero, &AdaptError{From: reflect.TypeOf(instance), View: view}
	}
	return v, nil
}

// Adapt 实现 Adapter
func (r *Registry) Adapt(instance any, view reflect.Type) (any, error) {
	if view == nil || view.Kind() != reflect.Interface {
		return nil, ErrViewNotInterface
	}
	if instance == nil {
		return nil, nil
	}
	from := reflect.TypeOf(instance)
	res := r.resolve(from, view)
	switch res.strategy {
	case strategyIdentity:
		return instance, nil
	case strategyAddress:
		p := reflect.New(from)
		p.Elem().Set(reflect.ValueOf(instance))
		return p.Interface(), nil
	case strategyFactory:
		return callFactory(res.factory, instance, from, view)
	default:
		return nil, res.err
	}
}

// CanAdapt 实现 Adapter
func (r *Registry) CanAdapt(from, view reflect.Type) bool {
	if from == nil || view == nil || view.Kind() != reflect.Interface {
		return false
	}
	if r.resolve(from, view).strategy != strategyNone {
		return true
	}
	return from.Kind() == reflect.Interface
}

// CacheLen 返回当前缓存的解析条目数
func (r *Registry) CacheLen() int {
	return r.cache.Len()
}

func (r *Registry) resolve(from, view reflect.Type) resolution {
	key := pair{from: from, view: view}
	if res, ok := r.cache.Get(key); ok {
		return res
	}
	// 持读锁计算并写缓存，Register 持写锁清空缓存，二者不会交错
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := r.compute(from, view)
	r.cache.Add(key, res)
	return res
}

func (r *Registry) compute(from, view reflect.Type) resolution {
	if from.Implements(view) {
		return resolution{strategy: strategyIdentity}
	}
	if from.Kind() != reflect.Pointer && from.Kind() != reflect.Interface &&
		reflect.PointerTo(from).Implements(view) {
		return resolution{strategy: strategyAddress}
	}
	if fn, ok := r.exact[pair{from: from, view: view}]; ok {
		return resolution{strategy: strategyFactory, factory: fn}
	}
	for i := len(r.byIface) - 1; i >= 0; i-- {
		f := r.byIface[i]
		if f.view == view && from.Implements(f.from) {
			return resolution{strategy: strategyFactory, factory: f.fn}
		}
	}
	return resolution{err: &AdaptError{From: from, View: view, Missing: missingMethods(from, view)}}
}

// callFactory 执行用户适配函数，panic 转为适配失败
func callFactory(fn func(any) any, instance any, from, view reflect.Type) (proxy any, err error) {
	defer func() {
		if p := recover(); p != nil {
			proxy = nil
			err = fmt.Errorf("%w: factory panic: %v", &AdaptError{From: from, View: view}, p)
		}
	}()
	return fn(instance), nil
}

// missingMethods 列出视图中 from 缺失或签名不符的方法
func missingMethods(from, view reflect.Type) []string {
	var missing []string
	for i := range view.NumMethod() {
		want := view.Method(i)
		got, ok := from.MethodByName(want.Name)
		if !ok || !sameMethodType(from, got.Type, want.Type) {
			missing = append(missing, want.Name)
		}
	}
	return missing
}

// sameMethodType 比较方法签名；具体类型的 Method.Type 首参为接收者
func sameMethodType(from reflect.Type, got, want reflect.Type) bool {
	offset := 1
	if from.Kind() == reflect.Interface {
		offset = 0
	}
	if got.NumIn()-offset != want.NumIn() || got.NumOut() != want.NumOut() ||
		got.IsVariadic() != want.IsVariadic() {
		return false
	}
	for i := range want.NumIn() {
		if got.In(i+offset) != want.In(i) {
			return false
		}
	}
	for i := range want.NumOut() {
		if got.Out(i) != want.Out(i) {
			return false
		}
	}
	return true
}
