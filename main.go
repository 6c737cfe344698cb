package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lwmacct/251215-go-pkg-ksubst/internal/command/render"
)

// version 由构建时 -ldflags "-X main.version=..." 注入
var version = "dev"

func main() {
	app := render.Command
	app.Version = version

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
