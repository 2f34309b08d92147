package xagent

import (
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
)

// SegmentStore 当前逻辑线程（goroutine）上活动执行片段的存取。
type SegmentStore interface {
	// Load 返回当前执行片段，没有时返回 nil。
	Load() trace.Span
	// Store 设置当前执行片段，nil 表示清除。
	Store(span trace.Span)
}

// glsFuncs 由打过补丁的运行时提供的 goroutine 本地存储访问函数
type glsFuncs struct {
	get func() any
	set func(any)
}

var gls atomic.Pointer[glsFuncs]

// InstallGLS 安装 goroutine 本地存储访问函数。
//
// get/set 通常由编译期插桩注入到 runtime.g 上的字段提供。
// 两者都为 nil 时卸载；只提供其中一个返回 ErrInvalidGLS。
// 安装后对所有 NewGLSStore 返回的存储立即生效。
func InstallGLS(get func() any, set func(any)) error {
	switch {
	case get == nil && set == nil:
		gls.Store(nil)
		return nil
	case get == nil || set == nil:
		return ErrInvalidGLS
	}
	gls.Store(&glsFuncs{get: get, set: set})
	return nil
}

// GLSInstalled 报告是否已安装 goroutine 本地存储
func GLSInstalled() bool {
	return gls.Load() != nil
}

// NewGLSStore 返回基于 InstallGLS 的存储。
// 未安装 GLS 时 Load 总是返回 nil，Store 不做任何事。
func NewGLSStore() SegmentStore {
	return glsStore{}
}

type glsStore struct{}

func (glsStore) Load() trace.Span {
	f := gls.Load()
	if f == nil {
		return nil
	}
	span, _ := f.get().(trace.Span)
	return span
}

func (glsStore) Store(span trace.Span) {
	f := gls.Load()
	if f == nil {
		return
	}
	f.set(span)
}
