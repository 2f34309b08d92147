package xduck

import (
	"errors"
	"reflect"
	"strings"
)

var (
	// ErrNotAdaptable 实例无法适配为视图。
	ErrNotAdaptable = errors.New("xduck: instance not adaptable to view")

	// ErrViewNotInterface 视图类型不是接口。
	ErrViewNotInterface = errors.New("xduck: view type must be an interface")

	// ErrNilFactory 注册的适配函数为 nil。
	ErrNilFactory = errors.New("xduck: nil adapter factory")

	// ErrInvalidCacheSize 缓存大小无效。
	ErrInvalidCacheSize = errors.New("xduck: cache size must be greater than 0")
)

// AdaptError 描述一次失败的适配。
type AdaptError struct {
	From    reflect.Type
	View    reflect.Type
	Missing []string // 视图中实例缺失（或签名不符）的方法名
}

// Error 实现 error 接口
func (e *AdaptError) Error() string {
	var b strings.Builder
	b.WriteString("xduck: ")
	b.WriteString(typeName(e.From))
	b.WriteString(" cannot be adapted to ")
	b.WriteString(typeName(e.View))
	if len(e.Missing) > 0 {
		b.WriteString(" (missing: ")
		b.WriteString(strings.Join(e.Missing, ", "))
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap 返回 ErrNotAdaptable，支持 errors.Is
func (e *AdaptError) Unwrap() error { return ErrNotAdaptable }

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
