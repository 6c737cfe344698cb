// Package vars 负责构建替换所需的变量映射。
//
// 变量来源（三选一）：
//  1. dotenv 文件 - KEY=VALUE 格式
//  2. 内联字符串 - "k=v,k2=v2"
//  3. 进程环境变量 - 以上均未指定时使用
//
// 所有来源中重复的 key 以最后一次出现为准。
package vars

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ErrConflictingSources 表示同时指定了 dotenv 文件与内联变量。
var ErrConflictingSources = errors.New("env-file and env-vars are mutually exclusive")

// Source 描述变量来源。
type Source struct {
	EnvFile string // dotenv 文件路径
	EnvVars string // 内联 "k=v,k2=v2"
}

// Load 按 [Source] 选择唯一的变量来源并返回映射。
func Load(src Source) (map[string]string, error) {
	switch {
	case src.EnvFile != "" && src.EnvVars != "":
		return nil, ErrConflictingSources
	case src.EnvFile != "":
		return FromDotenvFile(src.EnvFile)
	case src.EnvVars != "":
		return ParsePairs(src.EnvVars)
	default:
		return FromEnviron(os.Environ()), nil
	}
}

// FromEnviron 将 os.Environ 形式的 "KEY=VALUE" 列表转换为映射。
//
// 不含 "=" 的条目会被忽略。
func FromEnviron(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, env := range environ {
		key, val, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		out[key] = val
	}

	return out
}

// FromDotenvFile 解析 dotenv 文件。
func FromDotenvFile(path string) (map[string]string, error) {
	out, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}

	return out, nil
}

// ParsePairs 解析 "k=v,k2=v2" 形式的内联变量。
//
// 每一项在第一个 "=" 处切分，key 与 value 去除首尾空白。
// 缺少 "=" 或 key 为空时返回 error；空字符串返回空映射。
func ParsePairs(s string) (map[string]string, error) {
	out := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}

	for pair := range strings.SplitSeq(s, ",") {
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("env-vars: missing value in %q", pair)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("env-vars: missing key in %q", pair)
		}
		out[key] = strings.TrimSpace(val)
	}

	return out, nil
}
