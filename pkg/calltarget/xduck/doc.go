// Package xduck 提供"鸭子类型"视图适配能力：给定一个具体实例和期望的视图接口，
// 返回实现该视图的代理值，或者失败。
//
// 集成（integration）的钩子经常只关心目标对象的一小部分行为，用一个窄接口
// （视图）声明它，而不依赖被观测库的具体类型。Go 的接口本身是结构化的，
// 绝大多数情况下实例直接满足视图；xduck 处理剩余的情况。
//
// # 适配策略（按顺序）
//
//  1. 实例类型实现视图 → 原值返回
//  2. 实例是值类型，但其指针类型实现视图（方法定义在指针接收者上）→ 拷贝到新地址后返回指针
//  3. 为 (具体类型, 视图) 精确注册的适配函数
//  4. 为某个接口类型注册的适配函数，且实例实现了该接口
//
// 以上都不满足时返回 [*AdaptError]（包装 [ErrNotAdaptable]），其中列出视图中
// 实例缺失的方法，便于诊断。
//
// # 缓存
//
// (实例类型, 视图) 的解析结果（包括失败）缓存在 LRU 中（hashicorp/golang-lru/v2），
// 注册新的适配函数会清空缓存。解析是纯函数，淘汰后重新解析结果一致。
//
// # 用法
//
//	r, _ := xduck.New()
//	_ = xduck.Register(r, func(c *legacy.Conn) Closer { return legacyCloser{c} })
//
//	closer, err := xduck.As[Closer](r, instance)
package xduck
