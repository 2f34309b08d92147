package xagent

import (
	"context"
	"sync"
	"sync/atomic"
)

// 全局探针，供插桩后的调用点和集成使用
var (
	globalAgent atomic.Pointer[Agent]
	globalMu    sync.Mutex
)

// Init 创建全局探针。已初始化时返回 ErrAlreadyInitialized。
func Init(cfg *Config, opts ...Option) (*Agent, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalAgent.Load() != nil {
		return nil, ErrAlreadyInitialized
	}
	a, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	globalAgent.Store(a)
	return a, nil
}

// Default 返回全局探针，未初始化时返回 nil。
func Default() *Agent {
	return globalAgent.Load()
}

// IsConfigured 报告全局探针是否已初始化且处于激活状态。
func IsConfigured() bool {
	a := globalAgent.Load()
	return a != nil && a.Enabled()
}

// Shutdown 关闭并清除全局探针，之后可以再次 Init。
func Shutdown(ctx context.Context) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	a := globalAgent.Swap(nil)
	if a == nil {
		return nil
	}
	return a.Shutdown(ctx)
}
