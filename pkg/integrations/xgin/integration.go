package xgin

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xagent/pkg/agent/xagent"
	"github.com/omeyang/xagent/pkg/calltarget/xcalltarget"
)

// span 属性键
const (
	AttrMethod     = attribute.Key("http.request.method")
	AttrPath       = attribute.Key("url.path")
	AttrRoute      = attribute.Key("http.route")
	AttrStatusCode = attribute.Key("http.response.status_code")
	AttrClientIP   = attribute.Key("client.address")
)

// Integration gin 服务端集成，零值可用。
type Integration struct{}

// OnMethodBegin (*gin.Engine).handleHTTPRequest 入口钩子
func (Integration) OnMethodBegin(_ *gin.Engine, c *gin.Context) xcalltarget.State {
	agent := xagent.Default()
	if agent == nil || !agent.Enabled() || c == nil || c.Request == nil {
		return xcalltarget.DefaultState()
	}

	tr := agent.Tracer()
	req := c.Request
	ctx := tr.Propagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
	ctx, span := tr.StartSegment(ctx, spanName(req.Method, ""),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			AttrMethod.String(req.Method),
			AttrPath.String(req.URL.Path),
			AttrClientIP.String(c.ClientIP()),
		),
	)
	c.Request = req.WithContext(ctx)
	return xcalltarget.NewState(span, c)
}

// OnMethodEnd (*gin.Engine).handleHTTPRequest 出口钩子
func (Integration) OnMethodEnd(_ *gin.Engine, err error, state xcalltarget.State) {
	span := state.Segment()
	if span == nil {
		return
	}
	if agent := xagent.Default(); agent != nil {
		agent.Tracer().Restore(state.Previous())
	}

	if c, ok := state.Value().(*gin.Context); ok {
		if route := c.FullPath(); route != "" {
			span.SetName(spanName(c.Request.Method, route))
			span.SetAttributes(AttrRoute.String(route))
		}
		status := c.Writer.Status()
		span.SetAttributes(AttrStatusCode.Int(status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		if last := c.Errors.Last(); last != nil && err == nil {
			err = last.Err
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func spanName(method, route string) string {
	if route == "" {
		return fmt.Sprintf("HTTP %s", method)
	}
	return method + " " + route
}
