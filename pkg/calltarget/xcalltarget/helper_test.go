package xcalltarget

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/goleak"

	"github.com/omeyang/xagent/internal/agentlog"
	"github.com/omeyang/xagent/pkg/calltarget/xduck"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// 测试目标与集成
// =============================================================================

// conn 被插桩的目标类型
type conn struct {
	addr string
	hits atomic.Int32
}

// legacyConn 不满足 addrView，只能经 xduck 注册的适配函数获得视图
type legacyConn struct{ host string }

type addrView interface {
	Address() string
}

type legacyAddr struct{ c *legacyConn }

func (a legacyAddr) Address() string { return "legacy://" + a.c.host }

type plainAddr string

func (a plainAddr) Address() string { return string(a) }

// beginIntegration 钩子签名与处理器完全一致，走静态绑定
type beginIntegration struct{}

func (beginIntegration) OnMethodBegin(c *conn, method string, n int) State {
	c.hits.Add(1)
	return NewState(nil, c.addr+" "+method)
}

// quietIntegration 钩子本身不分配
type quietIntegration struct{}

func (quietIntegration) OnMethodBegin(c *conn, method string, n int) State {
	c.hits.Add(1)
	return DefaultState()
}

// missingIntegration 没有任何钩子
type missingIntegration struct{}

// assignIntegration 钩子参数是更宽的类型，需要反射转换
type assignIntegration struct{}

func (assignIntegration) OnMethodBegin(c any, method any) State {
	return NewState(nil, method)
}

type wrongResultIntegration struct{}

func (wrongResultIntegration) OnMethodBegin(c *conn) string { return "" }

type wrongArityIntegration struct{}

func (wrongArityIntegration) OnMethodBegin(c *conn, a, b string) State { return DefaultState() }

type wrongParamIntegration struct{}

func (wrongParamIntegration) OnMethodBegin(c *conn, n int) State { return DefaultState() }

// ptrIntegration 钩子定义在指针接收者上
type ptrIntegration struct{ prefix string }

func (p *ptrIntegration) OnMethodBegin(c *conn) State {
	return NewState(nil, p.prefix+c.addr)
}

// duckIntegration 钩子只依赖窄视图
type duckIntegration struct{}

func (duckIntegration) OnMethodBegin(c *conn, v addrView) State {
	if v == nil {
		return NewState(nil, "nil-view")
	}
	return NewState(nil, v.Address())
}

// endRecord 出口钩子通过 State.Value 回传观察到的数据
type endRecord struct {
	calls atomic.Int32
	err   error
}

type endIntegration struct{}

func (endIntegration) OnMethodEnd(c *conn, err error, state State) {
	if rec, ok := state.Value().(*endRecord); ok {
		rec.err = err
		rec.calls.Add(1)
	}
}

// doubleIntegration 修改返回值
type doubleIntegration struct{}

func (doubleIntegration) OnMethodEnd(c *conn, ret int, err error, state State) Return[int] {
	if err != nil {
		return NewReturn(-1)
	}
	return NewReturn(ret * 2)
}

// panicIntegration 所有钩子都 panic
type panicIntegration struct{}

func (panicIntegration) OnMethodBegin(c *conn) State {
	c.hits.Add(1)
	panic("begin boom")
}

func (panicIntegration) OnMethodEnd(c *conn, ret string, err error, state State) Return[string] {
	c.hits.Add(1)
	panic("end boom")
}

// panicEndIntegration 无返回值出口钩子 panic
type panicEndIntegration struct{}

func (panicEndIntegration) OnMethodEnd(c *conn, err error, state State) {
	c.hits.Add(1)
	panic("end boom")
}

// =============================================================================
// 测试辅助
// =============================================================================

type stubAccessor struct {
	enabled bool
	segment trace.Span
}

func (s stubAccessor) Enabled() bool              { return s.enabled }
func (s stubAccessor) CurrentSegment() trace.Span { return s.segment }

func newSpan(t *testing.T, name string) trace.Span {
	t.Helper()
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	_, span := tp.Tracer("xcalltarget-test").Start(context.Background(), name)
	return span
}

// countingBinder 统计绑定次数，委托给 ReflectBinder
func countingBinder(n *atomic.Int32, adapter xduck.Adapter) Binder {
	rb := NewReflectBinder(adapter)
	return BinderFunc(func(req *BindRequest) (any, error) {
		n.Add(1)
		return rb.Bind(req)
	})
}

// syncBuffer 并发安全的日志缓冲
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(t *testing.T) (agentlog.Logger, *syncBuffer) {
	t.Helper()
	buf := &syncBuffer{}
	l, cleanup, err := agentlog.New().SetOutput(buf).SetLevelString("debug").Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return l, buf
}

func newTestMeterProvider(t *testing.T) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

// sumCounter 汇总计数器数据点，outcome 非空时只统计该结果
func sumCounter(t *testing.T, reader *sdkmetric.ManualReader, name, outcome string) int64 {
	t.Helper()
	var total int64
	for _, sm := range collect(t, reader).ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is %T", name, m.Data)
			for _, dp := range sum.DataPoints {
				if outcome != "" {
					v, ok := dp.Attributes.Value(attrOutcome)
					if !ok || v.AsString() != outcome {
						continue
					}
				}
				total += dp.Value
			}
		}
	}
	return total
}

func hasMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) bool {
	t.Helper()
	for _, sm := range collect(t, reader).ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return true
			}
		}
	}
	return false
}
