package xcalltarget

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// Outcome 签名的绑定结果
type Outcome uint32

const (
	// OutcomePending 尚未绑定
	OutcomePending Outcome = iota
	// OutcomeBound 已绑定到集成钩子
	OutcomeBound
	// OutcomeFallback 绑定失败，已安装回退回调
	OutcomeFallback
)

// String 返回结果名称，同时用作指标属性值
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeBound:
		return "bound"
	case OutcomeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// BindingInfo 某个签名的绑定快照
type BindingInfo struct {
	Signature Signature
	Outcome   Outcome
	// Err 绑定失败原因（*BindingError），成功或未绑定时为 nil
	Err error
	// Duration 绑定耗时
	Duration time.Duration
	// Guard 保护熔断器状态，未启用保护时为空
	Guard string
}

// binding 生成代码提供的、与回调类型 F 相关的部分
type binding[F any] struct {
	direct   func(integration any) (F, bool)
	fallback F
	// guard 用保护器包装已绑定回调，nil 表示该处理器不支持保护
	guard func(g *guard, fn F) F
}

// slot 注册表中类型擦除后的条目
type slot interface {
	signature() Signature
	info() BindingInfo
}

// entry 一个签名的绑定单元。
//
// 首次 get 时经 sync.Once 执行且只执行一次绑定，此后 fn 不再变化。
type entry[F any] struct {
	sig  Signature
	reg  *Registry
	spec binding[F]

	once    sync.Once
	fn      F
	outcome atomic.Uint32
	err     error
	elapsed time.Duration
	guard   *guard
}

var _ slot = (*entry[func()])(nil)

func (e *entry[F]) get() F {
	e.once.Do(e.resolve)
	return e.fn
}

func (e *entry[F]) resolve() {
	s := e.reg.settings.Load()
	start := time.Now()
	fn, err := e.bind(s)
	e.elapsed = time.Since(start)

	if err != nil {
		var be *BindingError
		if !errors.As(err, &be) {
			be = &BindingError{Signature: e.sig, Err: err}
		}
		e.fn = e.spec.fallback
		e.err = be
		e.outcome.Store(uint32(OutcomeFallback))
		s.reportFailure(e.sig, be, e.elapsed)
		return
	}

	if e.spec.guard != nil {
		if g := s.newGuard(e.sig); g != nil {
			e.guard = g
			fn = e.spec.guard(g, fn)
		}
	}
	e.fn = fn
	e.outcome.Store(uint32(OutcomeBound))
	s.reportBound(e.sig, e.elapsed)
}

func (e *entry[F]) bind(s *settings) (fn F, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrBindPanic, p)
		}
	}()

	if s.isDisabled(e.sig) {
		return fn, ErrIntegrationDisabled
	}

	req := &BindRequest{
		Signature: e.sig,
		FuncType:  reflect.TypeFor[F](),
		fallback:  e.spec.fallback,
	}
	if e.spec.direct != nil {
		req.direct = func(integration any) (any, bool) {
			f, ok := e.spec.direct(integration)
			if !ok {
				return nil, false
			}
			return f, true
		}
	}

	res, err := s.binder.Bind(req)
	if err != nil {
		return fn, err
	}
	if res == nil {
		return fn, ErrNoCallable
	}
	typed, ok := res.(F)
	if !ok {
		return fn, fmt.Errorf("%w: binder returned %T, want %s", ErrHookSignature, res, req.FuncType)
	}
	if reflect.ValueOf(res).IsNil() {
		return fn, ErrNoCallable
	}
	return typed, nil
}

// Outcome 返回当前绑定结果，不触发绑定
func (e *entry[F]) Outcome() Outcome {
	return Outcome(e.outcome.Load())
}

// Err 返回绑定失败原因，不触发绑定
func (e *entry[F]) Err() error {
	if e.Outcome() != OutcomeFallback {
		return nil
	}
	return e.err
}

func (e *entry[F]) signature() Signature { return e.sig }

func (e *entry[F]) info() BindingInfo {
	info := BindingInfo{Signature: e.sig, Outcome: e.Outcome()}
	if info.Outcome == OutcomePending {
		return info
	}
	info.Err = e.Err()
	info.Duration = e.elapsed
	if e.guard != nil {
		info.Guard = e.guard.state()
	}
	return info
}

// handlerBase 各类处理器的公共部分
type handlerBase[F any] struct {
	reg   *Registry
	entry *entry[F]
}

func newHandlerBase[F any](reg *Registry, sig Signature, spec binding[F]) handlerBase[F] {
	if reg == nil {
		reg = Default()
	}
	return handlerBase[F]{reg: reg, entry: lookup(reg, sig, spec)}
}

// Resolve 立即完成绑定（预热）并返回结果。重复调用不会重新绑定。
func (h *handlerBase[F]) Resolve() Outcome {
	h.entry.get()
	return h.entry.Outcome()
}

// Outcome 返回当前绑定结果，不触发绑定。
func (h *handlerBase[F]) Outcome() Outcome { return h.entry.Outcome() }

// Err 返回绑定失败原因（*BindingError），不触发绑定。
func (h *handlerBase[F]) Err() error { return h.entry.Err() }

// Signature 返回处理器签名。
func (h *handlerBase[F]) Signature() Signature { return h.entry.sig }

// Registry 返回处理器所属注册表。
func (h *handlerBase[F]) Registry() *Registry { return h.reg }
