package main

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// MaxSupportedArity 支持的最大参数个数
const MaxSupportedArity = 8

var (
	errInvalidArity   = errors.New("xhandlergen: arity out of range")
	errInvalidPackage = errors.New("xhandlergen: invalid package name")
	errIncomplete     = errors.New("xhandlergen: generated file is incomplete")
)

const fileHeader = `// Code generated by xhandlergen. DO NOT EDIT.

package {{PKG}}

import "reflect"
`

const beginTemplate = `
// beginHook{{N}} {{N}} 参数入口钩子的静态契约。
type beginHook{{N}}[{{TL}} any] interface {
	OnMethodBegin({{PARAMS}}) State
}

// BeginHandler{{N}} {{N}} 参数目标方法的入口处理器。
type BeginHandler{{N}}[I, {{TL}} any] struct {
	handlerBase[func({{TL}}) State]
}

// NewBeginHandler{{N}} 返回签名为 (I, {{TL}}) 的入口处理器，同签名的处理器共享一次绑定。
// reg 为 nil 时使用 Default()。
func NewBeginHandler{{N}}[I, {{TL}} any](reg *Registry) *BeginHandler{{N}}[I, {{TL}}] {
	sig := newSignature(KindBegin, reflect.TypeFor[I](), reflect.TypeFor[T](), nil{{TYPES}})
	spec := binding[func({{TL}}) State]{
		direct: func(integration any) (func({{TL}}) State, bool) {
			h, ok := integration.(beginHook{{N}}[{{TL}}])
			if !ok {
				return nil, false
			}
			return h.OnMethodBegin, true
		},
		fallback: func({{TL}}) State { return DefaultState() },
		guard: func(g *guard, fn func({{TL}}) State) func({{TL}}) State {
			return func({{PARAMS}}) State {
				return guardCall(g, DefaultState(), func() State { return fn({{ARGS}}) })
			}
		},
	}
	return &BeginHandler{{N}}[I, {{TL}}]{handlerBase: newHandlerBase(reg, sig, spec)}
}

// Invoke 在目标方法入口调用，返回交给出口处理器的状态。
func (h *BeginHandler{{N}}[I, {{TL}}]) Invoke({{PARAMS}}) State {
	prev := h.reg.currentSegment()
	return h.entry.get()({{ARGS}}).WithPrevious(prev)
}
`

const endTemplate = `
// endHook 无返回值出口钩子的静态契约。
type endHook[T any] interface {
	OnMethodEnd(instance T, err error, state State)
}

// EndHandler 无返回值目标方法的出口处理器。
type EndHandler[I, T any] struct {
	handlerBase[func(T, error, State)]
}

// NewEndHandler 返回签名为 (I, T) 的出口处理器。reg 为 nil 时使用 Default()。
func NewEndHandler[I, T any](reg *Registry) *EndHandler[I, T] {
	sig := newSignature(KindEnd, reflect.TypeFor[I](), reflect.TypeFor[T](), nil, errorType, stateType)
	spec := binding[func(T, error, State)]{
		direct: func(integration any) (func(T, error, State), bool) {
			h, ok := integration.(endHook[T])
			if !ok {
				return nil, false
			}
			return h.OnMethodEnd, true
		},
		fallback: func(T, error, State) {},
		guard: func(g *guard, fn func(T, error, State)) func(T, error, State) {
			return func(instance T, err error, state State) {
				guardVoid(g, func() { fn(instance, err, state) })
			}
		},
	}
	return &EndHandler[I, T]{handlerBase: newHandlerBase(reg, sig, spec)}
}

// Invoke 在目标方法返回后调用，err 为目标方法的错误结果。
func (h *EndHandler[I, T]) Invoke(instance T, err error, state State) {
	h.entry.get()(instance, err, state)
}

// endReturnHook 有返回值出口钩子的静态契约。
type endReturnHook[T, R any] interface {
	OnMethodEnd(instance T, ret R, err error, state State) Return[R]
}

// EndReturnHandler 有返回值目标方法的出口处理器。
// 回退路径原样返回目标方法的返回值。
type EndReturnHandler[I, T, R any] struct {
	handlerBase[func(T, R, error, State) Return[R]]
}

// NewEndReturnHandler 返回签名为 (I, T, R) 的出口处理器。reg 为 nil 时使用 Default()。
func NewEndReturnHandler[I, T, R any](reg *Registry) *EndReturnHandler[I, T, R] {
	sig := newSignature(KindEndReturn, reflect.TypeFor[I](), reflect.TypeFor[T](), reflect.TypeFor[R](),
		reflect.TypeFor[R](), errorType, stateType)
	spec := binding[func(T, R, error, State) Return[R]]{
		direct: func(integration any) (func(T, R, error, State) Return[R], bool) {
			h, ok := integration.(endReturnHook[T, R])
			if !ok {
				return nil, false
			}
			return h.OnMethodEnd, true
		},
		fallback: func(_ T, ret R, _ error, _ State) Return[R] { return NewReturn(ret) },
		guard: func(g *guard, fn func(T, R, error, State) Return[R]) func(T, R, error, State) Return[R] {
			return func(instance T, ret R, err error, state State) Return[R] {
				return guardCall(g, NewReturn(ret), func() Return[R] { return fn(instance, ret, err, state) })
			}
		},
	}
	return &EndReturnHandler[I, T, R]{handlerBase: newHandlerBase(reg, sig, spec)}
}

// Invoke 在目标方法返回后调用，返回值决定交给调用方的最终结果。
func (h *EndReturnHandler[I, T, R]) Invoke(instance T, ret R, err error, state State) Return[R] {
	return h.entry.get()(instance, ret, err, state)
}
`

// genConfig 生成参数
type genConfig struct {
	Package  string
	MaxArity int
}

func (c genConfig) validate() error {
	if c.MaxArity < 0 || c.MaxArity > MaxSupportedArity {
		return fmt.Errorf("%w: %d (want 0..%d)", errInvalidArity, c.MaxArity, MaxSupportedArity)
	}
	if !isIdent(c.Package) {
		return fmt.Errorf("%w: %q", errInvalidPackage, c.Package)
	}
	return nil
}

// generate 生成处理器源码。输出经 dst 解析并重新打印，保证语法正确且格式统一。
func generate(cfg genConfig) ([]byte, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(strings.ReplaceAll(fileHeader, "{{PKG}}", cfg.Package))
	for n := 0; n <= cfg.MaxArity; n++ {
		b.WriteString(expandBegin(n))
	}
	b.WriteString(endTemplate)

	f, err := decorator.Parse(b.String())
	if err != nil {
		return nil, fmt.Errorf("xhandlergen: parse generated source: %w", err)
	}
	if err := verify(f, cfg.MaxArity); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := decorator.Fprint(&out, f); err != nil {
		return nil, fmt.Errorf("xhandlergen: print generated source: %w", err)
	}
	return out.Bytes(), nil
}

// expandBegin 展开 n 参数入口处理器模板
func expandBegin(n int) string {
	tl := []string{"T"}
	params := []string{"instance T"}
	args := []string{"instance"}
	var types strings.Builder
	for i := 1; i <= n; i++ {
		a := "A" + strconv.Itoa(i)
		tl = append(tl, a)
		params = append(params, "arg"+strconv.Itoa(i)+" "+a)
		args = append(args, "arg"+strconv.Itoa(i))
		types.WriteString(", reflect.TypeFor[" + a + "]()")
	}
	r := strings.NewReplacer(
		"{{N}}", strconv.Itoa(n),
		"{{TL}}", strings.Join(tl, ", "),
		"{{PARAMS}}", strings.Join(params, ", "),
		"{{ARGS}}", strings.Join(args, ", "),
		"{{TYPES}}", types.String(),
	)
	return r.Replace(beginTemplate)
}

// verify 检查生成文件声明了全部处理器类型和构造函数
func verify(f *dst.File, maxArity int) error {
	types := make(map[string]bool)
	funcs := make(map[string]bool)
	dst.Inspect(f, func(n dst.Node) bool {
		switch d := n.(type) {
		case *dst.TypeSpec:
			types[d.Name.Name] = true
		case *dst.FuncDecl:
			if d.Recv == nil {
				funcs[d.Name.Name] = true
			}
		}
		return true
	})

	want := []string{"EndHandler", "EndReturnHandler"}
	for n := 0; n <= maxArity; n++ {
		want = append(want, "BeginHandler"+strconv.Itoa(n))
	}
	var missing []string
	for _, name := range want {
		if !types[name] || !funcs["New"+name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", errIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
