// Package xgin 为 gin 提供服务端执行片段。
//
// 插桩目标是 (*gin.Engine).handleHTTPRequest：方法入口从请求头提取上游上下文，
// 开始一个 server span 并设为当前执行片段；方法出口记录路由与状态码，
// 结束 span 并恢复之前的执行片段。
//
// 未插桩的程序可以用 Middleware 得到同样的行为：
//
//	engine := gin.New()
//	engine.Use(xgin.Middleware(engine))
//
// 全局探针（xagent.Init）未初始化或未激活时，钩子什么也不做。
// 禁用该集成：在配置的 integrations.disabled 中加入 "xgin.Integration"。
package xgin
