// Package batch 递归渲染目录树。
//
// 每个文件按相对路径做 include/exclude 过滤，替换后写入输出目录的镜像路径。
// 过滤规则为 glob 语法，路径统一为 "/" 分隔；"*" 可跨越 "/"，
// 因此 "*.bak" 匹配任意层级的 .bak 文件。"**/" 可匹配零层目录。
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"github.com/lwmacct/251215-go-pkg-ksubst/pkg/ksubst"
)

var (
	// ErrNotText 表示输入文件不是合法的 UTF-8 文本。
	ErrNotText = errors.New("not valid UTF-8 text")
	// ErrBadPattern 表示 glob 规则无法编译。
	ErrBadPattern = errors.New("invalid glob pattern")
	// ErrInPlaceWatch 表示输入与输出为同一目录时无法进入监听模式。
	ErrInPlaceWatch = errors.New("watch requires OUTPUT_DIR to differ from INPUT_DIR")
)

// Renderer 批量渲染器，创建后只读，可并发使用。
type Renderer struct {
	vars    map[string]string
	exclude []string
	filter  []string
	workers int

	excludes []pattern
	filters  []pattern

	strict  bool
	logger  *slog.Logger
}

// Option 渲染器选项函数。
type Option func(*Renderer)

// WithExclude 追加排除规则，命中任一规则的文件不处理（优先于 [WithFilter]）。
func WithExclude(patterns ...string) Option {
	return func(r *Renderer) {
		r.exclude = append(r.exclude, patterns...)
	}
}

// WithFilter 追加包含规则；设置后文件必须命中至少一条规则才会处理。
func WithFilter(patterns ...string) Option {
	return func(r *Renderer) {
		r.filter = append(r.filter, patterns...)
	}
}

// WithWorkers 设置并发处理的文件数，<= 0 表示 GOMAXPROCS。
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		r.workers = n
	}
}

// WithStrict 要求渲染结果不再包含占位符，否则视为失败并中止本次渲染。
func WithStrict(strict bool) Option {
	return func(r *Renderer) {
		r.strict = strict
	}
}

// WithLogger 设置日志输出，默认 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Result 单次渲染的统计。
type Result struct {
	Rendered int
	Skipped  int
}

type job struct {
	path string
	rel  string
	perm fs.FileMode
}

// New 创建渲染器。
//
// glob 规则与变量映射都会在这里校验，保证渲染开始后不会因为参数问题中途失败。
func New(vars map[string]string, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		vars:   vars,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	var err error
	if r.excludes, err = compilePatterns(r.exclude); err != nil {
		return nil, err
	}
	if r.filters, err = compilePatterns(r.filter); err != nil {
		return nil, err
	}

	if len(vars) > 0 {
		if err := ksubst.ValidateVars(vars); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// pattern 为一条用户规则编译出的全部 glob。
type pattern []glob.Glob

func (p pattern) match(rel string) bool {
	for _, g := range p {
		if g.Match(rel) {
			return true
		}
	}

	return false
}

func compilePatterns(srcs []string) ([]pattern, error) {
	out := make([]pattern, 0, len(srcs))
	for _, src := range srcs {
		var p pattern
		for _, v := range recursiveVariants(src) {
			g, err := glob.Compile(v)
			if err != nil {
				return nil, fmt.Errorf("%w %q: %w", ErrBadPattern, src, err)
			}
			p = append(p, g)
		}
		out = append(out, p)
	}

	return out, nil
}

// recursiveVariants 展开 "**/" 与 "/**/"，使其同时匹配零层目录：
// "**/*.bak" 也匹配 "a.bak"，"a/**/b" 也匹配 "a/b"。
func recursiveVariants(src string) []string {
	if rest, ok := strings.CutPrefix(src, "**/"); ok {
		var out []string
		for _, v := range recursiveVariants(rest) {
			out = append(out, "**/"+v, v)
		}
		return out
	}

	before, after, ok := strings.Cut(src, "/**/")
	if !ok {
		return []string{src}
	}
	var out []string
	for _, v := range recursiveVariants(after) {
		out = append(out, before+"/**/"+v, before+"/"+v)
	}

	return out
}

func matchAny(patterns []pattern, rel string) bool {
	for _, p := range patterns {
		if p.match(rel) {
			return true
		}
	}

	return false
}

// Match 判断相对路径 rel（"/" 分隔）是否需要处理。
//
// 排除规则先检查，命中即跳过；存在包含规则时必须命中至少一条。
func (r *Renderer) Match(rel string) bool {
	if matchAny(r.excludes, rel) {
		return false
	}
	if len(r.filters) > 0 && !matchAny(r.filters, rel) {
		return false
	}

	return true
}

func (r *Renderer) workerCount() int {
	if r.workers > 0 {
		return r.workers
	}

	return runtime.GOMAXPROCS(0)
}

// SameDir 判断 inDir 与 outDir 是否指向同一目录（原地渲染）。
func SameDir(inDir, outDir string) bool {
	absIn, err := filepath.Abs(inDir)
	if err != nil {
		return false
	}
	absOut, err := filepath.Abs(outDir)

	return err == nil && absIn == absOut
}

// nestedOutput 返回位于 inDir 内部的输出目录绝对路径；不是嵌套关系时返回空字符串。
func nestedOutput(inDir, outDir string) string {
	absIn, err := filepath.Abs(inDir)
	if err != nil {
		return ""
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil || absOut == absIn {
		return ""
	}
	rel, err := filepath.Rel(absIn, absOut)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}

	return absOut
}

// collect 先完整遍历输入目录再开始写入，避免读到本次生成的输出文件。
func (r *Renderer) collect(inDir, outDir string) ([]job, int, error) {
	var (
		jobs    []job
		skipped int
	)
	skipDir := nestedOutput(inDir, outDir)

	err := filepath.WalkDir(inDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir != "" {
				if abs, absErr := filepath.Abs(path); absErr == nil && abs == skipDir {
					return filepath.SkipDir
				}
			}
			return nil
		}

		// 跟随符号链接判断是否为普通文件
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(inDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !r.Match(rel) {
			r.logger.Debug("Skipped file", "path", rel)
			skipped++

			return nil
		}

		jobs = append(jobs, job{path: path, rel: rel, perm: info.Mode().Perm()})

		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walk %s: %w", inDir, err)
	}

	return jobs, skipped, nil
}

// Render 渲染 inDir 下的全部文件到 outDir。
//
// 任一文件失败即中止本次渲染并返回该错误；单个输出文件总是原子写入，不会留下截断内容。
func (r *Renderer) Render(ctx context.Context, inDir, outDir string) (Result, error) {
	jobs, skipped, err := r.collect(inDir, outDir)
	if err != nil {
		return Result{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workerCount())
	for _, j := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return r.renderFile(j, outDir)
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	return Result{Rendered: len(jobs), Skipped: skipped}, nil
}

func (r *Renderer) renderFile(j job, outDir string) error {
	content, err := os.ReadFile(j.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", j.path, err)
	}
	if !utf8.Valid(content) {
		return fmt.Errorf("read %s: %w", j.path, ErrNotText)
	}

	out, err := ksubst.Substitute(string(content), r.vars)
	if err != nil {
		return fmt.Errorf("render %s: %w", j.path, err)
	}
	if r.strict {
		if names := ksubst.Unresolved(out); len(names) > 0 {
			return fmt.Errorf("render %s: %w: %s", j.path, ksubst.ErrUnresolved, strings.Join(names, ", "))
		}
	}

	dst := filepath.Join(outDir, filepath.FromSlash(j.rel))
	if err := writeFileAtomic(dst, []byte(out), j.perm); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	r.logger.Debug("Rendered file", "src", j.path, "dst", dst)

	return nil
}

// writeFileAtomic 先写入同目录临时文件再 rename，失败时清理临时文件。
func writeFileAtomic(path string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // output tree mirrors a readable input tree
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
