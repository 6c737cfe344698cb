package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251215-go-pkg-ksubst/internal/batch"
	"github.com/lwmacct/251215-go-pkg-ksubst/internal/config"
	"github.com/lwmacct/251215-go-pkg-ksubst/internal/logging"
	"github.com/lwmacct/251215-go-pkg-ksubst/internal/vars"
	"github.com/lwmacct/251215-go-pkg-ksubst/pkg/ksubst"
)

var (
	errDirsRequired  = errors.New("--recursive requires INPUT_DIR and OUTPUT_DIR")
	errDirsWithoutR  = errors.New("INPUT_DIR and OUTPUT_DIR are only accepted with --recursive")
	errWatchWithoutR = errors.New("--watch requires --recursive")
)

// loadConfig 加载配置：默认值 → 配置文件 → 环境变量 → CLI flags
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	opts := []config.Option{
		config.WithEnvPrefix(config.EnvPrefix),
		config.WithCommand(cmd),
	}
	if path := cmd.String("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	} else {
		opts = append(opts, config.WithConfigPaths(config.DefaultPaths(config.AppName)...))
	}

	return config.Load(config.DefaultConfig(), opts...)
}

func action(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	variables, err := vars.Load(vars.Source{EnvFile: cfg.EnvFile, EnvVars: cfg.EnvVars})
	if err != nil {
		return err
	}
	logger.Debug("Loaded variables", "count", len(variables))

	if cfg.Recursive {
		if cmd.Args().Len() != 2 {
			return errDirsRequired
		}
		return renderTree(ctx, cfg, variables, cmd.Args().Get(0), cmd.Args().Get(1), logger)
	}
	if cmd.Args().Present() {
		return errDirsWithoutR
	}
	if cfg.Watch {
		return errWatchWithoutR
	}

	return renderStream(cmd.Root().Reader, cmd.Root().Writer, variables, cfg.Strict)
}

// renderStream 单文档模式：读取全部输入，替换后原样写出（不追加换行）。
func renderStream(r io.Reader, w io.Writer, variables map[string]string, strict bool) error {
	input, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if !utf8.Valid(input) {
		return fmt.Errorf("read input: %w", batch.ErrNotText)
	}

	output, err := ksubst.Substitute(string(input), variables)
	if err != nil {
		return err
	}
	if strict {
		if names := ksubst.Unresolved(output); len(names) > 0 {
			return fmt.Errorf("%w: %s", ksubst.ErrUnresolved, strings.Join(names, ", "))
		}
	}

	if _, err := io.WriteString(w, output); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

// renderTree 批量模式：渲染一次，--watch 时继续监听直到收到中断信号。
func renderTree(ctx context.Context, cfg *config.Config, variables map[string]string, inDir, outDir string, logger *slog.Logger) error {
	if cfg.Watch && batch.SameDir(inDir, outDir) {
		return batch.ErrInPlaceWatch
	}

	renderer, err := batch.New(variables,
		batch.WithExclude(cfg.Exclude...),
		batch.WithFilter(cfg.Filter...),
		batch.WithWorkers(cfg.Workers),
		batch.WithStrict(cfg.Strict),
		batch.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	res, err := renderer.Render(ctx, inDir, outDir)
	if err != nil {
		return err
	}
	logger.Info("Rendered", "input", inDir, "output", outDir, "files", res.Rendered, "skipped", res.Skipped)

	if !cfg.Watch {
		return nil
	}

	// 等待中断信号
	watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = renderer.Watch(watchCtx, inDir, outDir, cfg.Debounce)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	logger.Info("Watch stopped")

	return nil
}
