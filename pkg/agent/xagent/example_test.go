package xagent_test

import (
	"context"
	"fmt"

	"github.com/omeyang/xagent/internal/agentlog"
	"github.com/omeyang/xagent/pkg/agent/xagent"
	"github.com/omeyang/xagent/pkg/calltarget/xcalltarget"
)

func ExampleParseConfig() {
	cfg, err := xagent.ParseConfig([]byte(`
service_name: orders
integrations:
  disabled: ["xgin.Integration"]
guard:
  open_timeout: 30s
`), xagent.FormatYAML)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(cfg.ServiceName, cfg.Integrations.Disabled, cfg.Guard.OpenTimeout)
	// Output:
	// orders [xgin.Integration] 30s
}

func ExampleNew() {
	agent, err := xagent.New(nil,
		xagent.WithRegistry(xcalltarget.NewRegistry()),
		xagent.WithLogger(agentlog.Discard()),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer func() { _ = agent.Shutdown(context.Background()) }()

	fmt.Println(agent.Enabled())
	// 未安装 GLS 时不报告执行片段
	fmt.Println(agent.CurrentSegment() == nil)
	// Output:
	// true
	// true
}
