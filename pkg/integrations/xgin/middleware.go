package xgin

import (
	"github.com/gin-gonic/gin"

	"github.com/omeyang/xagent/pkg/agent/xagent"
	"github.com/omeyang/xagent/pkg/calltarget/xcalltarget"
)

// Handlers 插桩调用点使用的处理器对
type Handlers struct {
	Begin *xcalltarget.BeginHandler1[Integration, *gin.Engine, *gin.Context]
	End   *xcalltarget.EndHandler[Integration, *gin.Engine]
}

// NewHandlers 在 reg 上创建处理器，reg 为 nil 时使用 xcalltarget.Default()。
func NewHandlers(reg *xcalltarget.Registry) *Handlers {
	return &Handlers{
		Begin: xcalltarget.NewBeginHandler1[Integration, *gin.Engine, *gin.Context](reg),
		End:   xcalltarget.NewEndHandler[Integration, *gin.Engine](reg),
	}
}

// Middleware 以中间件形式调用处理器。处理器建在调用时全局探针所用的注册表上，
// 探针未初始化时使用 xcalltarget.Default()，因此应在 xagent.Init 之后注册中间件。
func Middleware(engine *gin.Engine) gin.HandlerFunc {
	return NewHandlers(agentRegistry()).Middleware(engine)
}

// agentRegistry 返回全局探针的注册表，未初始化时返回 nil
func agentRegistry() *xcalltarget.Registry {
	if a := xagent.Default(); a != nil {
		return a.Registry()
	}
	return nil
}

// Middleware 以中间件形式调用 h
func (h *Handlers) Middleware(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := h.Begin.Invoke(engine, c)
		defer h.End.Invoke(engine, nil, state)
		c.Next()
	}
}
