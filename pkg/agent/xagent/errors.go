package xagent

import "errors"

// 配置相关错误。
var (
	// ErrEmptyPath 配置文件路径为空。
	ErrEmptyPath = errors.New("xagent: empty config path")

	// ErrUnsupportedFormat 不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xagent: unsupported config format")

	// ErrLoadFailed 配置文件读取失败。
	ErrLoadFailed = errors.New("xagent: failed to load config")

	// ErrParseFailed 配置解析失败。
	ErrParseFailed = errors.New("xagent: failed to parse config")

	// ErrInvalidConfig 配置校验失败。
	ErrInvalidConfig = errors.New("xagent: invalid config")
)

// 生命周期相关错误。
var (
	// ErrAlreadyInitialized 全局探针已初始化。
	ErrAlreadyInitialized = errors.New("xagent: already initialized")

	// ErrShutdown 探针已关闭。
	ErrShutdown = errors.New("xagent: agent is shut down")

	// ErrInvalidGLS GLS 访问函数必须同时提供或同时为 nil。
	ErrInvalidGLS = errors.New("xagent: gls get and set must both be set or both be nil")
)
