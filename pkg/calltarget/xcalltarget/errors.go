package xcalltarget

import (
	"errors"
)

// 绑定失败原因。绑定失败只会被记录，永远不会传播到 Invoke 的调用方。
var (
	// ErrHookNotFound 集成没有实现对应的钩子方法。
	ErrHookNotFound = errors.New("xcalltarget: hook method not found")

	// ErrHookSignature 钩子方法存在但签名与目标方法不兼容。
	ErrHookSignature = errors.New("xcalltarget: incompatible hook signature")

	// ErrInvalidIntegration 集成描述类型无效（nil 或接口类型）。
	ErrInvalidIntegration = errors.New("xcalltarget: invalid integration type")

	// ErrIntegrationDisabled 集成被配置禁用。
	ErrIntegrationDisabled = errors.New("xcalltarget: integration disabled")

	// ErrNoCallable 绑定器既没有返回错误也没有返回回调。
	ErrNoCallable = errors.New("xcalltarget: binder produced no callable")

	// ErrBindPanic 绑定过程中发生 panic。
	ErrBindPanic = errors.New("xcalltarget: panic during binding")
)

// BindingError 某个签名的绑定失败记录。
//
// 绑定失败是终态：该签名永久安装回退回调，不会重试。
type BindingError struct {
	Signature Signature
	Err       error
}

// Error 实现 error 接口
func (e *BindingError) Error() string {
	return "xcalltarget: bind " + e.Signature.String() + ": " + e.Err.Error()
}

// Unwrap 返回原始原因，支持 errors.Is/As
func (e *BindingError) Unwrap() error { return e.Err }
