package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/betbot/algohost/pkg/debuggate"
)

// 调试器附加点
const (
	// AttachPointData 在每次 OnData 回调内等待调试器
	AttachPointData = "data"
	// AttachPointLoad 在加载算法之后、Initialize 之前等待一次
	AttachPointLoad = "load"
)

// DebugConfig 调试器等待配置
type DebugConfig struct {
	Mode         string        // disabled | pause
	AttachPoint  string        // data | load
	PollInterval time.Duration // 轮询间隔，默认 100ms
}

// AlgorithmConfig 算法配置
type AlgorithmConfig struct {
	Name   string // sample | lua | js | yaegi
	Script string // 脚本路径（脚本运行时必填）
}

// FeedConfig 行情 tick 配置
type FeedConfig struct {
	Ticks    int           // tick 数量，默认 3
	Interval time.Duration // tick 间隔，默认 0
}

// Config 应用配置
type Config struct {
	LogLevel  string // 日志级别
	LogFile   string // 日志文件路径（可选）
	Debug     DebugConfig
	Algorithm AlgorithmConfig
	Feed      FeedConfig
}

// ConfigFile 配置文件结构（用于 YAML/JSON 解析）
type ConfigFile struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file"`
	Debug    struct {
		Mode           string `yaml:"mode" json:"mode"`
		AttachPoint    string `yaml:"attach_point" json:"attach_point"`
		PollIntervalMs *int   `yaml:"poll_interval_ms" json:"poll_interval_ms"`
	} `yaml:"debug" json:"debug"`
	Algorithm struct {
		Name   string `yaml:"name" json:"name"`
		Script string `yaml:"script" json:"script"`
	} `yaml:"algorithm" json:"algorithm"`
	Feed struct {
		Ticks      *int `yaml:"ticks" json:"ticks"` // nil 表示未设置，0 是合法值
		IntervalMs int  `yaml:"interval_ms" json:"interval_ms"`
	} `yaml:"feed" json:"feed"`
}

// LoadEnvFile 加载 .env 文件到环境变量（文件不存在时忽略）
func LoadEnvFile(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("加载 .env 失败: %w", err)
	}
	return nil
}

// LoadFromFile 加载并验证配置，见 Load
func LoadFromFile(filePath string) (*Config, error) {
	config, err := Load(filePath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}
	return config, nil
}

// Load 从指定文件加载配置但不验证，filePath 为空时只使用环境变量和默认值。
// 优先级：环境变量 > 配置文件 > 默认值；调用方叠加命令行参数后再调用 Validate。
func Load(filePath string) (*Config, error) {
	var cf *ConfigFile
	if strings.TrimSpace(filePath) != "" {
		var err error
		cf, err = loadConfigFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败 %s: %w", filePath, err)
		}
	} else {
		cf = &ConfigFile{}
	}

	config := &Config{
		LogLevel: getEnv("LOG_LEVEL", valueOr(cf.LogLevel, "info")),
		LogFile:  getEnv("LOG_FILE", cf.LogFile),
		Debug: DebugConfig{
			Mode:         getEnv("ALGOHOST_DEBUG", valueOr(cf.Debug.Mode, "disabled")),
			AttachPoint:  getEnv("ALGOHOST_ATTACH_POINT", valueOr(cf.Debug.AttachPoint, AttachPointData)),
			PollInterval: time.Duration(parseIntEnv("ALGOHOST_POLL_INTERVAL_MS", intPtrOr(cf.Debug.PollIntervalMs, 100))) * time.Millisecond,
		},
		Algorithm: AlgorithmConfig{
			Name:   getEnv("ALGOHOST_ALGORITHM", valueOr(cf.Algorithm.Name, "sample")),
			Script: getEnv("ALGOHOST_SCRIPT", cf.Algorithm.Script),
		},
		Feed: FeedConfig{
			Ticks:    parseIntEnv("ALGOHOST_TICKS", intPtrOr(cf.Feed.Ticks, 3)),
			Interval: time.Duration(parseIntEnv("ALGOHOST_TICK_INTERVAL_MS", cf.Feed.IntervalMs)) * time.Millisecond,
		},
	}
	return config, nil
}

// loadConfigFile 加载配置文件（支持 YAML 和 JSON）
func loadConfigFile(filePath string) (*ConfigFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var configFile ConfigFile
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &configFile); err != nil {
			return nil, fmt.Errorf("解析 YAML 配置文件失败: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &configFile); err != nil {
			return nil, fmt.Errorf("解析 JSON 配置文件失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的配置文件格式: %s (支持 .yaml, .yml, .json)", ext)
	}

	return &configFile, nil
}

// DebugMode 解析调试模式
func (c *Config) DebugMode() (debuggate.Mode, error) {
	return debuggate.ParseMode(c.Debug.Mode)
}

// Validate 验证配置
func (c *Config) Validate() error {
	if _, err := c.DebugMode(); err != nil {
		return err
	}
	switch c.Debug.AttachPoint {
	case AttachPointData, AttachPointLoad:
	default:
		return fmt.Errorf("未知的调试器附加点: %q（支持 data, load）", c.Debug.AttachPoint)
	}
	if c.Debug.PollInterval <= 0 {
		return fmt.Errorf("poll_interval_ms 必须大于 0")
	}
	if strings.TrimSpace(c.Algorithm.Name) == "" {
		return fmt.Errorf("algorithm.name 不能为空")
	}
	if c.Algorithm.Name != "sample" && strings.TrimSpace(c.Algorithm.Script) == "" {
		return fmt.Errorf("算法 %s 需要 algorithm.script", c.Algorithm.Name)
	}
	if c.Feed.Ticks < 0 {
		return fmt.Errorf("feed.ticks 不能为负数")
	}
	if c.Feed.Interval < 0 {
		return fmt.Errorf("feed.interval_ms 不能为负数")
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv 解析整数环境变量
func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func valueOr(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func intPtrOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}
