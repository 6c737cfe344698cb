// Package logging 构建命令行使用的 slog.Logger。
//
// 标准输出用于承载渲染结果，日志统一写入标准错误：
// 终端下使用 tint 彩色输出，否则输出 JSON。
package logging

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// ParseLevel 解析 DEBUG / INFO / WARN / ERROR（大小写不敏感）。
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}

	return level, nil
}

// New 根据输出目标是否为终端选择 handler。
func New(w *os.File, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
		handler = tint.NewHandler(colorable.NewColorable(w), &tint.Options{Level: lvl})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}

	return slog.New(handler), nil
}

// Discard 返回丢弃全部日志的 Logger。
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
