package check

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251215-go-pkg-ksubst/pkg/ksubst"
)

// stdinName 为标准输入在报告中的名称。
const stdinName = "-"

func action(_ context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer
	if cmd.Bool("quiet") {
		out = io.Discard
	}

	found := 0
	if !cmd.Args().Present() {
		input, err := io.ReadAll(cmd.Root().Reader)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		found += report(out, stdinName, string(input))
	}
	for _, path := range cmd.Args().Slice() {
		content, err := os.ReadFile(path) //nolint:gosec // path is given by the user
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		found += report(out, path, string(content))
	}

	if found > 0 {
		return fmt.Errorf("%w: %d found", ksubst.ErrUnresolved, found)
	}

	return nil
}

// report 以 name:line:col: ${...} 格式输出每个占位符，返回数量。
func report(w io.Writer, name, text string) int {
	phs := ksubst.Placeholders(text)
	for _, ph := range phs {
		line, col := position(text, ph.Start)
		_, _ = fmt.Fprintf(w, "%s:%d:%d: %s\n", name, line, col, text[ph.Start:ph.End])
	}

	return len(phs)
}

// position 将字节偏移转换为 1 起始的行号与列号（列按字节计）。
func position(text string, offset int) (int, int) {
	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndexByte(before, '\n')

	return line, col
}
