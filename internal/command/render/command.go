// Package render 提供占位符替换命令（ksubst 根命令）。
package render

import (
	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251215-go-pkg-ksubst/internal/command"
	"github.com/lwmacct/251215-go-pkg-ksubst/internal/command/check"
	"github.com/lwmacct/251215-go-pkg-ksubst/internal/config"
)

const description = `INPUT_DIR 与子命令同名时 (如 check) 会被解析为子命令, 请写作 ./check。
glob 规则中 * 可跨越 "/", 例如 --exclude '*.bak' 匹配任意层级的 .bak 文件。
--watch 要求 OUTPUT_DIR 与 INPUT_DIR 不同。`

// Command 根命令
var Command = NewCommand()

// NewCommand 创建根命令。
//
// 默认从标准输入读取模板并写到标准输出；-r 时递归处理 INPUT_DIR 到 OUTPUT_DIR。
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:        config.AppName,
		Usage:       "用变量替换文本中的 ${NAME} 占位符",
		ArgsUsage:   "[INPUT_DIR OUTPUT_DIR]",
		Description: description,
		Action:      action,
		Commands:    []*cli.Command{check.NewCommand()},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径 (默认搜索 .ksubst.yaml 等)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: command.Defaults.EnvFile,
				Usage: "dotenv 变量文件路径",
			},
			&cli.StringFlag{
				Name:  "env-vars",
				Value: command.Defaults.EnvVars,
				Usage: "内联变量, 格式 KEY=VALUE,KEY2=VALUE2",
			},
			&cli.BoolFlag{
				Name:    "recursive",
				Aliases: []string{"r"},
				Value:   command.Defaults.Recursive,
				Usage:   "递归处理输入目录 (需要 INPUT_DIR 与 OUTPUT_DIR)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "排除规则 (glob, 可多次指定, 优先于 --filter)",
			},
			&cli.StringSliceFlag{
				Name:  "filter",
				Usage: "包含规则 (glob, 可多次指定)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Value: command.Defaults.Workers,
				Usage: "并发处理的文件数, 0 表示 CPU 数",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Value: command.Defaults.Watch,
				Usage: "渲染后继续监听输入目录并自动重新渲染",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Value: command.Defaults.Debounce,
				Usage: "监听模式的防抖间隔",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Value: command.Defaults.Strict,
				Usage: "渲染结果仍含占位符时报错",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: command.Defaults.LogLevel,
				Usage: "日志级别 (DEBUG/INFO/WARN/ERROR)",
			},
		},
	}
}
