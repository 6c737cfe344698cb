package ksubst

import (
	"errors"
	"fmt"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// 错误类型
// ═══════════════════════════════════════════════════════════════════════════

// Role 取值，标识违规内容位于变量名还是变量值。
const (
	RoleKey   = "key"
	RoleValue = "value"
)

// ErrUnresolved 表示文本中仍有占位符，供调用方在要求完全解析时包装使用。
var ErrUnresolved = errors.New("unresolved placeholders")

// forbidden 为变量名与变量值中禁止出现的字符，检查顺序固定。
var forbidden = [...]string{"$", "{", "}"}

// ValidationError 表示变量映射中存在禁用字符。
type ValidationError struct {
	Role string // RoleKey 或 RoleValue
	Text string // 违规的变量名或变量值
	Char string // 命中的禁用字符
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ksubst: variable %s '%s' contains forbidden character '%s'", e.Role, e.Text, e.Char)
}

// ═══════════════════════════════════════════════════════════════════════════
// 占位符扫描
// ═══════════════════════════════════════════════════════════════════════════

// Placeholder 描述一次扫描命中的占位符。
//
// text[Start:End] 即完整的 "${...}" 文本。
type Placeholder struct {
	Name   string
	Suffix string // 包含起始的 "." 或 "-"，无后缀时为空
	Start  int
	End    int
}

func isVarNameStart(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || ch == '_'
}

func isVarNameChar(ch byte) bool {
	return isVarNameStart(ch) || (ch >= '0' && ch <= '9')
}

func isSuffixMarker(ch byte) bool {
	return ch == '.' || ch == '-'
}

// parseAt 尝试把 text[i:] 解析为占位符，调用方保证 text[i:i+2] == "${"。
func parseAt(text string, i int) (Placeholder, bool) {
	nameStart := i + 2
	if nameStart >= len(text) || !isVarNameStart(text[nameStart]) {
		return Placeholder{}, false
	}

	j := nameStart + 1
	for j < len(text) && isVarNameChar(text[j]) {
		j++
	}
	if j >= len(text) {
		return Placeholder{}, false
	}

	name := text[nameStart:j]
	if text[j] == '}' {
		return Placeholder{Name: name, Start: i, End: j + 1}, true
	}
	if !isSuffixMarker(text[j]) {
		return Placeholder{}, false
	}

	// 后缀贪婪匹配到第一个 "}"；没有闭合括号则整体不匹配
	end := strings.IndexByte(text[j:], '}')
	if end == -1 {
		return Placeholder{}, false
	}
	end += j

	return Placeholder{Name: name, Suffix: text[j:end], Start: i, End: end + 1}, true
}

// next 返回 from 之后最左侧的占位符。
func next(text string, from int) (Placeholder, bool) {
	for from < len(text) {
		idx := strings.Index(text[from:], "${")
		if idx == -1 {
			return Placeholder{}, false
		}
		at := from + idx
		if ph, ok := parseAt(text, at); ok {
			return ph, true
		}
		from = at + 1
	}

	return Placeholder{}, false
}

// Placeholders 按出现顺序返回 text 中的全部占位符，互不重叠。
//
// 没有占位符时返回 nil。
func Placeholders(text string) []Placeholder {
	var out []Placeholder
	for pos := 0; ; {
		ph, ok := next(text, pos)
		if !ok {
			return out
		}
		out = append(out, ph)
		pos = ph.End
	}
}

// IsTemplated 判断 text 中是否存在至少一个占位符，与变量映射无关。
func IsTemplated(text string) bool {
	_, ok := next(text, 0)
	return ok
}

// Unresolved 按首次出现顺序返回 text 中占位符的变量名（去重）。
func Unresolved(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, ph := range Placeholders(text) {
		if seen[ph.Name] {
			continue
		}
		seen[ph.Name] = true
		names = append(names, ph.Name)
	}

	return names
}

// ═══════════════════════════════════════════════════════════════════════════
// 校验
// ═══════════════════════════════════════════════════════════════════════════

func validate(text, role string) error {
	for _, c := range forbidden {
		if strings.Contains(text, c) {
			return &ValidationError{Role: role, Text: text, Char: c}
		}
	}

	return nil
}

// ValidateVars 检查变量名与变量值中是否含有 "$"、"{"、"}"。
//
// 遇到第一个违规项即返回 [*ValidationError]。map 遍历顺序不确定，
// 因此存在多个违规项时，具体报告哪一项也不确定；只有"是否失败"是确定的。
func ValidateVars(vars map[string]string) error {
	for k, v := range vars {
		if err := validate(k, RoleKey); err != nil {
			return err
		}
		if err := validate(v, RoleValue); err != nil {
			return err
		}
	}

	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 替换
// ═══════════════════════════════════════════════════════════════════════════

func resolve(text string, ph Placeholder, vars map[string]string) string {
	val, ok := vars[ph.Name]
	switch {
	case !ok:
		return text[ph.Start:ph.End]
	case val == "":
		return ""
	default:
		return val + ph.Suffix
	}
}

// Substitute 用 vars 替换 template 中的占位符。
//
// 规则：
//   - vars 为空时直接返回 template，不做校验也不扫描
//   - ${VAR} / ${VAR.ext} / ${VAR-ext}，值非空时输出 值 + 后缀
//   - 值为空时占位符连同后缀整体删除
//   - 变量不存在或语法不完整时原样保留
//
// 仅在 vars 校验失败时返回 error（见 [ValidateVars]），此时不产生部分输出。
func Substitute(template string, vars map[string]string) (string, error) {
	if len(vars) == 0 {
		return template, nil
	}
	if err := ValidateVars(vars); err != nil {
		return "", err
	}

	ph, ok := next(template, 0)
	if !ok {
		return template, nil
	}

	var buf strings.Builder
	buf.Grow(len(template))

	last := 0
	for ok {
		buf.WriteString(template[last:ph.Start])
		buf.WriteString(resolve(template, ph, vars))
		last = ph.End
		ph, ok = next(template, last)
	}
	buf.WriteString(template[last:])

	return buf.String(), nil
}
