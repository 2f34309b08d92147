package xagent

import (
	"context"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracerName 探针 tracer 的 instrumentation scope 名称
const TracerName = "github.com/omeyang/xagent"

// Tracer 执行片段管理。
//
// 片段就是 otel span；当前片段保存在 SegmentStore 中，集成在方法入口
// 通过 Activate 设置、在方法出口通过 Restore 恢复。
type Tracer struct {
	tracer     trace.Tracer
	store      SegmentStore
	propagator propagation.TextMapPropagator
}

func newTracer(tp trace.TracerProvider, store SegmentStore) *Tracer {
	return &Tracer{
		tracer: tp.Tracer(TracerName),
		store:  store,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
}

// CurrentExecutionSegment 返回当前执行片段，没有时返回 nil。
func (t *Tracer) CurrentExecutionSegment() trace.Span {
	return t.store.Load()
}

// StartSegment 开始一个新片段并将其设为当前片段。
//
// 父片段优先取 ctx 中的 span，其次是当前执行片段。
// 返回的 ctx 携带新片段。调用方负责 span.End 并用 Restore 恢复之前的片段。
func (t *Tracer) StartSegment(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !trace.SpanContextFromContext(ctx).IsValid() {
		if cur := t.store.Load(); cur != nil {
			ctx = trace.ContextWithSpan(ctx, cur)
		}
	}
	ctx, span := t.tracer.Start(ctx, name, opts...)
	t.store.Store(span)
	return ctx, span
}

// Activate 将 span 设为当前片段，返回之前的片段。
func (t *Tracer) Activate(span trace.Span) trace.Span {
	prev := t.store.Load()
	t.store.Store(span)
	return prev
}

// Restore 恢复之前的片段，nil 表示清除。
func (t *Tracer) Restore(prev trace.Span) {
	t.store.Store(prev)
}

// Propagator 返回跨进程传播器（W3C tracecontext + baggage）。
func (t *Tracer) Propagator() propagation.TextMapPropagator {
	return t.propagator
}
