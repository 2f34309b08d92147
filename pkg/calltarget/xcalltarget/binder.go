package xcalltarget

import (
	"fmt"
	"reflect"

	"github.com/omeyang/xagent/pkg/calltarget/xduck"
)

// BindRequest 一次绑定请求。
//
// FuncType 是处理器需要的回调类型，例如 2 参数入口处理器为
// func(T, A1, A2) State。绑定器返回的值必须是该类型。
type BindRequest struct {
	Signature Signature
	FuncType  reflect.Type

	direct   func(integration any) (any, bool)
	fallback any
}

// Direct 尝试静态绑定：integration 的钩子方法签名与 FuncType 完全一致时，
// 直接返回方法值，调用路径上不涉及反射。
func (r *BindRequest) Direct(integration any) (any, bool) {
	if r.direct == nil || integration == nil {
		return nil, false
	}
	return r.direct(integration)
}

// Fallback 返回该签名的回退回调（类型为 FuncType）。
func (r *BindRequest) Fallback() any { return r.fallback }

// Binder 绑定器：为签名生成回调。
//
// 实现可以返回错误，也可以 panic，Registry 都会把它转换为绑定失败并安装回退回调。
type Binder interface {
	Bind(req *BindRequest) (any, error)
}

// BinderFunc 函数适配器
type BinderFunc func(req *BindRequest) (any, error)

// Bind 实现 Binder
func (f BinderFunc) Bind(req *BindRequest) (any, error) { return f(req) }

// 编译时接口检查
var _ Binder = (*ReflectBinder)(nil)

// ReflectBinder 默认绑定器。
//
// 按名称查找集成的钩子方法：
//   - 签名完全一致时直接使用方法值
//   - 参数可赋值时通过 reflect.MakeFunc 生成转换回调
//   - 钩子参数为接口且实参类型可经 xduck 适配时，调用时生成代理；
//     单次调用适配失败则该次调用走回退回调
type ReflectBinder struct {
	adapter xduck.Adapter
}

// NewReflectBinder 创建绑定器。adapter 为 nil 时使用 xduck.Default()。
func NewReflectBinder(adapter xduck.Adapter) *ReflectBinder {
	if adapter == nil {
		adapter = xduck.Default()
	}
	return &ReflectBinder{adapter: adapter}
}

// Bind 实现 Binder
func (b *ReflectBinder) Bind(req *BindRequest) (any, error) {
	recv, err := newReceiver(req.Signature.Integration)
	if err != nil {
		return nil, err
	}
	if fn, ok := req.Direct(recv.Interface()); ok {
		return fn, nil
	}
	name := req.Signature.Kind.HookName()
	m := recv.MethodByName(name)
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %s has no method %s", ErrHookNotFound, req.Signature.Integration, name)
	}
	return b.specialize(m, req)
}

// newReceiver 构造集成的零值接收者，指针接收者和值接收者的方法都可见。
func newReceiver(it reflect.Type) (reflect.Value, error) {
	if it == nil {
		return reflect.Value{}, ErrInvalidIntegration
	}
	switch it.Kind() {
	case reflect.Interface:
		return reflect.Value{}, fmt.Errorf("%w: %s is an interface", ErrInvalidIntegration, it)
	case reflect.Pointer:
		return reflect.New(it.Elem()), nil
	default:
		return reflect.New(it), nil
	}
}

type argConverter func(reflect.Value) (reflect.Value, bool)

func (b *ReflectBinder) specialize(m reflect.Value, req *BindRequest) (any, error) {
	mt, ft := m.Type(), req.FuncType
	if mt == ft {
		return m.Interface(), nil
	}
	if mt.IsVariadic() || mt.NumIn() != ft.NumIn() {
		return nil, fmt.Errorf("%w: %s has %d parameters, want %d",
			ErrHookSignature, mt, mt.NumIn(), ft.NumIn())
	}
	if mt.NumOut() != ft.NumOut() {
		return nil, fmt.Errorf("%w: %s has %d results, want %d",
			ErrHookSignature, mt, mt.NumOut(), ft.NumOut())
	}
	for i := range ft.NumOut() {
		if mt.Out(i) != ft.Out(i) {
			return nil, fmt.Errorf("%w: result %d is %s, want %s",
				ErrHookSignature, i, mt.Out(i), ft.Out(i))
		}
	}

	convs := make([]argConverter, ft.NumIn())
	adapted := false
	for i := range ft.NumIn() {
		in, p := ft.In(i), mt.In(i)
		switch {
		case in.AssignableTo(p):
		case p.Kind() == reflect.Interface && b.adapter.CanAdapt(in, p):
			convs[i] = b.adaptArg(p)
			adapted = true
		default:
			return nil, fmt.Errorf("%w: parameter %d: %s is not assignable to %s",
				ErrHookSignature, i, in, p)
		}
	}

	if !adapted {
		return reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
			return m.Call(args)
		}).Interface(), nil
	}

	fallback := reflect.ValueOf(req.fallback)
	return reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		in := make([]reflect.Value, len(args))
		copy(in, args)
		for i, conv := range convs {
			if conv == nil {
				continue
			}
			v, ok := conv(in[i])
			if !ok {
				return fallback.Call(args)
			}
			in[i] = v
		}
		return m.Call(in)
	}).Interface(), nil
}

func (b *ReflectBinder) adaptArg(view reflect.Type) argConverter {
	return func(v reflect.Value) (reflect.Value, bool) {
		proxy, err := b.adapter.Adapt(v.Interface(), view)
		if err != nil {
			return reflect.Value{}, false
		}
		if proxy == nil {
			return reflect.Zero(view), true
		}
		pv := reflect.ValueOf(proxy)
		if !pv.Type().AssignableTo(view) {
			return reflect.Value{}, false
		}
		return pv, true
	}
}
