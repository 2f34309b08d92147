// Package agentlog 是 xagent 内部使用的结构化日志，基于 log/slog。
//
// # 定位
//
// 探针运行在宿主进程内，日志必须满足两点：
//   - 不向外返回错误、不 panic（写入失败只计数，可选回调通知）
//   - 热路径上级别未启用时零格式化开销
//
// 所有方法强制 context，属性只接受 slog.Attr。
//
// # 创建
//
//	logger, cleanup, err := agentlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xagent.log", agentlog.RotationConfig{MaxSizeMB: 100}).
//		Build()
//
// 未配置时使用 [Discard]，探针默认不产生任何输出。
package agentlog
