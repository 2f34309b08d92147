// Package e2e 端到端测试：配置加载、全局探针、插桩调用点与 gin 集成协同工作。
//
// 运行：go test -tags e2e ./internal/e2e/...
package e2e
