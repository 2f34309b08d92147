// Package xagent 提供探针生命周期：配置、诊断日志、执行片段与注册表接管。
//
// # 组成
//
//   - Agent：实现 xcalltarget.Accessor，New 时安装到注册表，Shutdown 时卸载
//   - Tracer：执行片段（otel span）的开始、激活与恢复，以及跨进程传播器
//   - SegmentStore：当前执行片段的存取；InstallGLS 允许打过补丁的运行时
//     提供 goroutine 本地存储，未安装时不报告任何片段
//   - Config：YAML/JSON 配置（koanf），ConfigWatcher 基于 fsnotify 热更新
//
// # 热更新
//
// enabled 与 log.level 立即生效；integrations 与 guard 只影响之后发生的绑定，
// 已完成的绑定（包括回退）保持不变；service_name 与日志输出需要重启。
//
// # 全局探针
//
//	agent, err := xagent.Init(cfg)
//	if err != nil {
//	    return err
//	}
//	defer xagent.Shutdown(context.Background())
//
// 未调用 Init 时，插桩后的调用点照常绑定和调用，但 State.Previous 总是 nil。
package xagent
