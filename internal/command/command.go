// Package command 提供 ksubst 的命令行功能。
package command

import "github.com/lwmacct/251215-go-pkg-ksubst/internal/config"

// Defaults 为默认配置的单一来源。
var Defaults = config.DefaultConfig()
