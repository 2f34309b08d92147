package xcalltarget

import "go.opentelemetry.io/otel/trace"

// Accessor 执行上下文访问能力。
//
// 每次 Invoke 都会重新查询，不做缓存：当前执行片段随调用、goroutine、请求变化，
// 而绑定回调只随签名变化。实现必须廉价且对调用方无副作用。
type Accessor interface {
	// Enabled 报告探针是否已配置并处于激活状态。
	Enabled() bool

	// CurrentSegment 返回调用方逻辑线程上活动的执行片段，没有时返回 nil。
	CurrentSegment() trace.Span
}

// NopAccessor 未激活的访问器，Registry 的默认值。
type NopAccessor struct{}

// Enabled 实现 Accessor
func (NopAccessor) Enabled() bool { return false }

// CurrentSegment 实现 Accessor
func (NopAccessor) CurrentSegment() trace.Span { return nil }

// accessorBox 让接口值可以放进 atomic.Pointer
type accessorBox struct {
	Accessor
}
