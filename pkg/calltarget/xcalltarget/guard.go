package xcalltarget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// 保护配置默认值
const (
	DefaultMaxConsecutivePanics uint32 = 5
	DefaultOpenTimeout                 = 60 * time.Second
)

// GuardConfig 调用保护配置
type GuardConfig struct {
	// MaxConsecutivePanics 连续 panic 达到该次数后熔断，默认 5
	MaxConsecutivePanics uint32
	// OpenTimeout 熔断持续时间，之后放行一次试探调用，默认 60s
	OpenTimeout time.Duration
}

func (c GuardConfig) withDefaults() GuardConfig {
	if c.MaxConsecutivePanics == 0 {
		c.MaxConsecutivePanics = DefaultMaxConsecutivePanics
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = DefaultOpenTimeout
	}
	return c
}

// guard 单个签名的调用保护器
type guard struct {
	cb  *gobreaker.TwoStepCircuitBreaker[struct{}]
	sig Signature
	s   *settings
}

func (s *settings) newGuard(sig Signature) *guard {
	if s.guardCfg == nil {
		return nil
	}
	cfg := *s.guardCfg
	g := &guard{sig: sig, s: s}
	g.cb = gobreaker.NewTwoStepCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        sig.String(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxConsecutivePanics
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn(context.Background(), "calltarget: guard state changed",
				slog.String("signature", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
	return g
}

func (g *guard) state() string {
	return g.cb.State().String()
}

func (g *guard) recordPanic(p any) error {
	err := fmt.Errorf("calltarget: hook panic: %v", p)
	g.s.metrics.recordPanic(g.sig)
	g.s.logger.Error(context.Background(), "calltarget: hook panicked, fallback result used",
		slog.String("signature", g.sig.String()),
		slog.Any("panic", p),
	)
	return err
}

// guardCall 在保护下执行 call。熔断或 panic 时返回 fallback。
func guardCall[R any](g *guard, fallback R, call func() R) (ret R) {
	done, err := g.cb.Allow()
	if err != nil {
		return fallback
	}
	var failure error
	defer func() {
		if p := recover(); p != nil {
			failure = g.recordPanic(p)
			ret = fallback
		}
		done(failure)
	}()
	return call()
}

// guardVoid 无返回值版本的 guardCall
func guardVoid(g *guard, call func()) {
	guardCall(g, struct{}{}, func() struct{} {
		call()
		return struct{}{}
	})
}
