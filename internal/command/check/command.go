// Package check 提供占位符检测命令。
package check

import (
	"github.com/urfave/cli/v3"
)

// NewCommand 创建 check 子命令
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "列出文本中残留的 ${NAME} 占位符, 存在时以非零状态退出",
		ArgsUsage: "[FILE...]",
		Action:    action,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "不输出占位符列表, 仅通过退出状态表示结果",
			},
		},
	}
}
