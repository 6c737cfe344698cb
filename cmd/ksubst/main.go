package main

import (
	"context"
	"log/slog"
	"os"

	app "github.com/lwmacct/251215-go-pkg-ksubst/internal/command/render"
)

func main() {
	if err := app.Command.Run(context.Background(), os.Args); err != nil {
		slog.Error("ksubst failed", "error", err)
		os.Exit(1)
	}
}
