package xagent

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xagent/internal/agentlog"
	"github.com/omeyang/xagent/pkg/calltarget/xcalltarget"
)

// Format 配置格式
type Format string

const (
	// FormatYAML YAML 格式（.yaml/.yml）
	FormatYAML Format = "yaml"
	// FormatJSON JSON 格式（.json）
	FormatJSON Format = "json"
)

// 配置默认值
const (
	DefaultServiceName = "unknown_service"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Config 探针配置
type Config struct {
	// Enabled 探针是否激活；关闭时处理器仍然绑定，但不记录执行上下文。可热更新。
	Enabled bool `koanf:"enabled"`
	// ServiceName 服务名，写入 span 资源属性。
	ServiceName string `koanf:"service_name"`

	Log          LogConfig          `koanf:"log"`
	Integrations IntegrationsConfig `koanf:"integrations"`
	Guard        GuardConfig        `koanf:"guard"`
}

// LogConfig 诊断日志配置
type LogConfig struct {
	// Level debug/info/warn/error，可热更新
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// File 非空时输出到按大小轮转的文件，否则输出到 stderr
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// IntegrationsConfig 集成配置
type IntegrationsConfig struct {
	// Disabled 禁用的集成名称，见 xcalltarget.WithDisabledIntegrations
	Disabled []string `koanf:"disabled"`
}

// GuardConfig 钩子调用保护配置
type GuardConfig struct {
	Enabled              bool          `koanf:"enabled"`
	MaxConsecutivePanics uint32        `koanf:"max_consecutive_panics"`
	OpenTimeout          time.Duration `koanf:"open_timeout"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Enabled:     true,
		ServiceName: DefaultServiceName,
		Log: LogConfig{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Guard: GuardConfig{
			Enabled:              false,
			MaxConsecutivePanics: xcalltarget.DefaultMaxConsecutivePanics,
			OpenTimeout:          xcalltarget.DefaultOpenTimeout,
		},
	}
}

// LoadConfig 从文件加载配置，格式由扩展名决定。文件中缺失的键使用默认值。
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return ParseConfig(data, format)
}

// ParseConfig 解析配置数据并校验。空数据得到默认配置。
func ParseConfig(data []byte, format Format) (*Config, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	cfg := DefaultConfig()
	if len(data) > 0 {
		k := koanf.New(".")
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
		if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置，返回所有问题（errors.Join），每一项都包装 ErrInvalidConfig。
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if strings.TrimSpace(c.ServiceName) == "" {
		invalid("service_name is empty")
	}
	if _, err := agentlog.ParseLevel(c.Log.Level); err != nil {
		invalid("log.level: %v", err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "text", "json":
	default:
		invalid("log.format %q (want text or json)", c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		invalid("log rotation values must not be negative")
	}
	if c.Guard.Enabled {
		if c.Guard.MaxConsecutivePanics == 0 {
			invalid("guard.max_consecutive_panics must be positive")
		}
		if c.Guard.OpenTimeout <= 0 {
			invalid("guard.open_timeout must be positive")
		}
	}
	return errors.Join(errs...)
}

// Clone 深拷贝
func (c *Config) Clone() *Config {
	out := *c
	out.Integrations.Disabled = slices.Clone(c.Integrations.Disabled)
	return &out
}

// registryOptions 由配置生成注册表选项
func (c *Config) registryOptions(logger agentlog.Logger, mp metric.MeterProvider) []xcalltarget.Option {
	opts := []xcalltarget.Option{
		xcalltarget.WithLogger(logger),
		xcalltarget.WithDisabledIntegrations(c.Integrations.Disabled...),
	}
	if mp != nil {
		opts = append(opts, xcalltarget.WithMeterProvider(mp))
	}
	if c.Guard.Enabled {
		opts = append(opts, xcalltarget.WithGuard(xcalltarget.GuardConfig{
			MaxConsecutivePanics: c.Guard.MaxConsecutivePanics,
			OpenTimeout:          c.Guard.OpenTimeout,
		}))
	} else {
		opts = append(opts, xcalltarget.WithoutGuard())
	}
	return opts
}

// buildLogger 按配置构建诊断日志
func (c *LogConfig) buildLogger() (agentlog.Logger, func() error, error) {
	b := agentlog.New().SetLevelString(c.Level).SetFormat(c.Format)
	if c.File != "" {
		b.SetRotation(c.File, agentlog.RotationConfig{
			MaxSizeMB:  c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAgeDays: c.MaxAgeDays,
			Compress:   c.Compress,
		})
	}
	return b.Build()
}

func detectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}
