package xagent

import (
	"sync"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/goleak"

	"github.com/omeyang/xagent/internal/agentlog"
	"github.com/omeyang/xagent/pkg/calltarget/xcalltarget"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memStore 测试用的单槽片段存储
type memStore struct {
	mu   sync.Mutex
	span trace.Span
}

func (s *memStore) Load() trace.Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.span
}

func (s *memStore) Store(span trace.Span) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.span = span
}

// newTestAgent 创建使用独立注册表、内存存储和 span 记录器的探针
func newTestAgent(t *testing.T, cfg *Config, opts ...Option) (*Agent, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	base := []Option{
		WithRegistry(xcalltarget.NewRegistry()),
		WithSegmentStore(&memStore{}),
		WithSpanProcessor(rec),
		WithLogger(agentlog.Discard()),
	}
	a, err := New(cfg, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Shutdown(t.Context()) })
	return a, rec
}
