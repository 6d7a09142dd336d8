package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/LukeThoma5/mortar/internal/buildcache"
	"github.com/LukeThoma5/mortar/internal/config"
	"github.com/LukeThoma5/mortar/internal/diagnostic"
	"github.com/LukeThoma5/mortar/internal/emit"
	"github.com/LukeThoma5/mortar/internal/openapi"
	"github.com/LukeThoma5/mortar/internal/sdkgen"
)

// session is the resolved configuration of one command invocation.
type session struct {
	cfg        *config.Config
	configPath string
	logger     zerolog.Logger
	fetcher    *openapi.Fetcher
	force      bool
}

// setup resolves the configuration, applies flag overrides and builds the
// logger. validate rejects an unusable configuration.
func setup(cctx *cli.Context, validate bool) (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	res, err := config.Resolve(cctx.String("config"), cwd)
	if err != nil {
		return nil, err
	}
	cfg := res.Config
	if cctx.IsSet("input") {
		cfg.SwaggerEndpoint = cctx.String("input")
	}
	if cctx.IsSet("output") {
		cfg.OutputDir = cctx.String("output")
	}
	if cctx.Bool("debug") {
		cfg.Debug = true
	}
	if cctx.Bool("no-format") {
		cfg.NoFormat = true
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}

	logger := newLogger(cctx.App.ErrWriter, cfg.Debug)
	if res.Path != "" {
		logger.Debug().Str("path", res.Path).Msg("loaded config")
	}
	if validate {
		diags := diagnostic.NewCollector(false, false)
		cfg.ValidateDetailed().Report(diags, configSubject(res.Path))
		reportDiagnostics(logger, diags)
	}
	return &session{
		cfg:        cfg,
		configPath: res.Path,
		logger:     logger,
		fetcher:    openapi.NewFetcher(logger),
		force:      cctx.Bool("force"),
	}, nil
}

// configSubject names the configuration source in diagnostics.
func configSubject(path string) string {
	if path == "" {
		return "config"
	}
	return path
}

func (s *session) pipeline(clean bool) *pipeline {
	return &pipeline{
		cfg:     s.cfg,
		fetcher: s.fetcher,
		logger:  s.logger,
		clean:   clean,
		force:   s.force,
	}
}

// pipeline runs fetch, cache check, generation and emission.
type pipeline struct {
	cfg     *config.Config
	fetcher *openapi.Fetcher
	logger  zerolog.Logger
	clean   bool
	force   bool
}

type buildResult struct {
	Skipped bool
	Files   []string
	Written int
}

// cacheSettings is everything besides the document that shapes the output.
type cacheSettings struct {
	Version   string
	Options   sdkgen.Options
	Formatter string
}

func (p *pipeline) run(ctx context.Context) (*buildResult, error) {
	start := time.Now()
	raw, err := p.fetcher.ReadSource(ctx, p.cfg.SwaggerEndpoint)
	if err != nil {
		return nil, err
	}

	fp, err := buildcache.Fingerprint(raw, cacheSettings{
		Version:   version,
		Options:   p.cfg.Options(),
		Formatter: p.cfg.FormatterName(),
	})
	if err != nil {
		return nil, err
	}
	cachePath := buildcache.CachePath(p.cfg.OutputDir)
	if !p.force && buildcache.Load(cachePath).IsValid(fp) {
		p.logger.Info().Str("output", p.cfg.OutputDir).Msg("document unchanged, skipping generation")
		return &buildResult{Skipped: true}, nil
	}

	doc, err := openapi.Decode(raw)
	if err != nil {
		return nil, err
	}
	diags := diagnostic.NewCollector(false, false)
	_, out, err := sdkgen.GenerateDocument(ctx, doc, p.cfg.Options(), diags)
	reportDiagnostics(p.logger, diags)
	if err != nil {
		return nil, err
	}

	formatter, err := emit.NewFormatter(p.cfg.FormatterName(), p.cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	w := &emit.Writer{
		Root:      p.cfg.OutputDir,
		Formatter: formatter,
		Logger:    p.logger,
		Clean:     p.clean,
	}
	res, err := w.Write(ctx, out)
	if err != nil {
		return nil, err
	}

	if err := buildcache.Save(cachePath, buildcache.New(fp, res.Paths(p.cfg.OutputDir))); err != nil {
		p.logger.Warn().Err(err).Msg("could not save build cache")
	}

	p.logger.Info().
		Int("modules", len(out.Modules)).
		Int("typeFiles", len(out.TypeFiles)).
		Int("written", res.Written).
		Int("removed", res.Removed).
		Dur("took", time.Since(start).Round(time.Millisecond)).
		Msg("generated " + p.cfg.OutputDir)
	return &buildResult{Files: res.Files, Written: res.Written}, nil
}
