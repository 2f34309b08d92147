package xcalltarget

import "go.opentelemetry.io/otel/trace"

// State 一次目标方法调用的入口状态（Begin State）。
//
// 由入口处理器在每次调用时构造，随后原样交给同一次调用的出口处理器。
// 生命周期不超过一次方法执行。
//
//   - Previous: 调用发生时的环境执行片段（借用引用，处理器不负责其生命周期）
//   - Segment/Value: 集成钩子产生的结果，例如新开启的 span 和需要在出口使用的数据
type State struct {
	previous trace.Span
	segment  trace.Span
	value    any
}

// DefaultState 返回空状态，回退回调使用。
func DefaultState() State {
	return State{}
}

// NewState 由集成钩子构造状态。
func NewState(segment trace.Span, value any) State {
	return State{segment: segment, value: value}
}

// Previous 返回调用发生时捕获的环境执行片段，探针未激活时为 nil。
func (s State) Previous() trace.Span { return s.previous }

// Segment 返回集成开启的执行片段，可能为 nil。
func (s State) Segment() trace.Span { return s.segment }

// Value 返回集成附带的数据，可能为 nil。
func (s State) Value() any { return s.value }

// IsDefault 报告集成部分是否为空（不考虑 Previous）。
func (s State) IsDefault() bool {
	return s.segment == nil && s.value == nil
}

// WithPrevious 返回设置了 Previous 的副本。
func (s State) WithPrevious(previous trace.Span) State {
	s.previous = previous
	return s
}

// Return 出口处理器对有返回值方法的处理结果。
//
// 回退路径下 Value 就是目标方法原本的返回值，探针失败不会改变宿主的返回值。
type Return[R any] struct {
	value R
}

// NewReturn 构造出口结果。
func NewReturn[R any](value R) Return[R] {
	return Return[R]{value: value}
}

// Value 返回最终交给调用方的返回值。
func (r Return[R]) Value() R { return r.value }
