package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

// options 配置加载选项。
type options struct {
	cmd         *cli.Command
	configFile  string   // 显式指定的配置文件，必须可读
	configPaths []string // 搜索路径，缺失的文件跳过
	envPrefix   string
}

// Option 配置加载选项函数。
type Option func(*options)

// WithCommand 绑定 CLI 命令，读取显式设置的 flags 以覆盖配置（最高优先级）。
func WithCommand(cmd *cli.Command) Option {
	return func(o *options) {
		o.cmd = cmd
	}
}

// WithConfigFile 指定配置文件；文件不存在或无法读取时 [Load] 返回 error。
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithConfigPaths 设置配置文件搜索路径，按顺序查找，命中首个文件即停止。
func WithConfigPaths(paths ...string) Option {
	return func(o *options) {
		o.configPaths = paths
	}
}

// WithEnvPrefix 启用环境变量前缀解析。
//
// 命名规则：前缀 + 大写的配置 key，"-" 转为 "_"。
// 示例 (前缀为 "KSUBST_")：
//   - KSUBST_LOG_LEVEL → log-level
//   - KSUBST_ENV_FILE → env-file
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// DefaultPaths 返回默认配置文件的搜索顺序。
//
// 优先级 (从高到低)：
//  1. ./.appname.yaml - 当前目录
//  2. ~/.appname.yaml - 用户主目录
//  3. /etc/appname/config.yaml - 系统级配置
func DefaultPaths(appName string) []string {
	paths := []string{"." + appName + ".yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+appName+".yaml"))
	}

	return append(paths, "/etc/"+appName+"/config.yaml")
}

// Load 读取配置并按优先级合并。
//
// 优先级 (从低到高)：
//  1. 默认值 - defaults
//  2. 配置文件 - [WithConfigFile] / [WithConfigPaths]
//  3. 环境变量(前缀) - [WithEnvPrefix]
//  4. CLI flags - [WithCommand]
//
// 配置文件中出现未知 key 时返回 error。
func Load(defaults Config, opts ...Option) (*Config, error) {
	options := &options{}
	for _, opt := range opts {
		opt(options)
	}

	configMap, err := toMap(defaults)
	if err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}

	// 2️⃣ 配置文件
	fileMap, path, err := readConfigFile(options)
	if err != nil {
		return nil, err
	}
	if path != "" {
		maps.Copy(configMap, fileMap)
		slog.Debug("Loaded config from file", "path", path)
	}

	// 3️⃣ 环境变量
	if options.envPrefix != "" {
		for envKey, key := range envBindings(options.envPrefix) {
			if val := os.Getenv(envKey); val != "" {
				configMap[key] = val
				slog.Debug("Loaded env binding", "env", envKey, "key", key)
			}
		}
	}

	// 4️⃣ CLI flags (仅显式设置的)
	if options.cmd != nil {
		applyCLIFlags(options.cmd, configMap)
	}

	cfg, err := fromMap(configMap)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// readConfigFile 返回首个命中的配置文件内容及其路径；未命中时路径为空。
func readConfigFile(o *options) (map[string]any, string, error) {
	if o.configFile != "" {
		content, err := os.ReadFile(o.configFile)
		if err != nil {
			return nil, "", fmt.Errorf("read config file: %w", err)
		}
		m, err := parseConfigBytes(o.configFile, content)
		if err != nil {
			return nil, "", fmt.Errorf("parse config file %s: %w", o.configFile, err)
		}

		return m, o.configFile, nil
	}

	for _, path := range o.configPaths {
		content, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				slog.Debug("Skipped unreadable config file", "path", path, "error", err)
			}
			continue
		}
		m, err := parseConfigBytes(path, content)
		if err != nil {
			return nil, "", fmt.Errorf("parse config file %s: %w", path, err)
		}

		return m, path, nil
	}

	slog.Debug("No config file found, using defaults")

	return nil, "", nil
}

// envBindings 生成 环境变量名 → 配置 key 的映射（"-" 转为 "_" 后大写）。
//
// 示例 (前缀 "KSUBST_")：
//   - env-file → KSUBST_ENV_FILE
//   - log-level → KSUBST_LOG_LEVEL
func envBindings(prefix string) map[string]string {
	keys := configKeys()
	bindings := make(map[string]string, len(keys))
	for _, key := range keys {
		bindings[prefix+strings.ToUpper(strings.ReplaceAll(key, "-", "_"))] = key
	}

	return bindings
}

// applyCLIFlags 将用户显式设置的 CLI flags 写入配置 map，flag 名称与 key 相同。
func applyCLIFlags(cmd *cli.Command, config map[string]any) {
	typ := reflect.TypeFor[Config]()
	for i := range typ.NumField() {
		field := typ.Field(i)
		key := configTagName(field)
		if key == "" || !cmd.IsSet(key) {
			continue
		}

		switch {
		case field.Type == reflect.TypeFor[time.Duration]():
			config[key] = cmd.Duration(key)
		case field.Type.Kind() == reflect.String:
			config[key] = cmd.String(key)
		case field.Type.Kind() == reflect.Bool:
			config[key] = cmd.Bool(key)
		case field.Type.Kind() == reflect.Int:
			config[key] = cmd.Int(key)
		case field.Type.Kind() == reflect.Slice && field.Type.Elem().Kind() == reflect.String:
			config[key] = cmd.StringSlice(key)
		default:
			// 不支持的类型，忽略
		}
	}
}
