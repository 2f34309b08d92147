// Package xcalltarget 提供调用目标拦截的入口/出口处理器。
//
// 被插桩的方法在入口调用入口处理器，在返回后调用出口处理器：
//
//	var (
//		begin = xcalltarget.NewBeginHandler1[xgin.Integration, *gin.Engine, *gin.Context](nil)
//		end   = xcalltarget.NewEndHandler[xgin.Integration, *gin.Engine](nil)
//	)
//
//	func (engine *Engine) handleHTTPRequest(c *Context) {
//		state := begin.Invoke(engine, c)
//		defer func() { end.Invoke(engine, nil, state) }()
//		...
//	}
//
// # 绑定
//
// 处理器的签名由 (集成类型, 目标类型, 参数类型序列) 决定。同一签名的所有处理器
// 共享一次绑定，首次 Invoke（或 Resolve）时在 sync.Once 内完成：
//
//   - 集成的钩子方法签名完全一致时，通过静态接口断言取得方法值，调用路径不涉及反射
//   - 否则由 [Binder]（默认 [ReflectBinder]）按名称查找钩子并生成转换回调，
//     钩子参数是接口且实参可经 xduck 适配时，调用时生成代理
//
// # 失败开放
//
// 绑定失败（钩子缺失、签名不兼容、集成被禁用、绑定器 panic）不会传播给宿主：
// 该签名永久安装回退回调。入口回退返回 [DefaultState]，出口回退什么都不做，
// 有返回值的出口回退原样返回目标方法的返回值。失败会以 WARN 级别记录一次，
// 计入 xagent.calltarget.bind 指标，并可通过 [Registry.Bindings] 查询。
//
// 启用 [WithGuard] 后，已绑定回调的 panic 也会被恢复为回退结果，
// 连续 panic 达到阈值后熔断（sony/gobreaker/v2）。
//
// # 执行上下文
//
// 每次 Invoke 都会查询 [Accessor]：探针激活时，调用发生时的当前执行片段记录在
// [State.Previous] 中，供出口处理器恢复。
//
// handlers_gen.go 由 cmd/xhandlergen 生成。
package xcalltarget

//go:generate go run ../../../cmd/xhandlergen -o handlers_gen.go
