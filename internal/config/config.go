// Package config 提供 ksubst 命令行的配置管理。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - --config 指定，或 DefaultPaths("ksubst") 中首个存在的文件
//  3. 环境变量 - KSUBST_ 前缀，如 KSUBST_LOG_LEVEL
//  4. CLI flags - 仅显式设置的 flag 生效
package config

import (
	"time"
)

// AppName 应用名称，用于默认配置文件路径与环境变量前缀。
const AppName = "ksubst"

// EnvPrefix 环境变量前缀。
const EnvPrefix = "KSUBST_"

// Config 应用配置。
//
// json tag 同时作为配置文件 key 与 CLI flag 名称。
type Config struct {
	EnvFile   string        `json:"env-file" desc:"dotenv 变量文件路径"`
	EnvVars   string        `json:"env-vars" desc:"内联变量, 格式 k=v,k2=v2"`
	Recursive bool          `json:"recursive" desc:"递归处理输入目录"`
	Exclude   []string      `json:"exclude" desc:"排除规则 (glob, 优先于 filter)"`
	Filter    []string      `json:"filter" desc:"包含规则 (glob)"`
	Workers   int           `json:"workers" desc:"并发处理的文件数, 0 表示 CPU 数"`
	Watch     bool          `json:"watch" desc:"监听输入目录并自动重新渲染"`
	Debounce  time.Duration `json:"debounce" desc:"监听模式的防抖间隔"`
	Strict    bool          `json:"strict" desc:"渲染结果仍含占位符时报错"`
	LogLevel  string        `json:"log-level" desc:"日志级别 (DEBUG/INFO/WARN/ERROR)"`
}

// DefaultConfig 返回默认配置。
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Workers:  0,
		Debounce: 200 * time.Millisecond,
		LogLevel: "INFO",
	}
}
