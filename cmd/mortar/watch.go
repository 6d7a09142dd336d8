package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/LukeThoma5/mortar/internal/openapi"
	"github.com/LukeThoma5/mortar/internal/watcher"
)

func runWatch(cctx *cli.Context) error {
	s, err := setup(cctx, true)
	if err != nil {
		return err
	}
	ctx := cctx.Context
	p := s.pipeline(false)

	rebuild := func(ctx context.Context) error {
		_, err := p.run(ctx)
		return err
	}
	if err := rebuild(ctx); err != nil {
		s.logger.Error().Err(err).Msg("build failed")
	}

	source := s.cfg.SwaggerEndpoint
	if openapi.IsRemote(source) {
		interval := time.Duration(s.cfg.PollInterval)
		s.logger.Info().Str("url", source).Dur("interval", interval).Msg("polling document for changes")
		watcher.Poll(ctx, interval, rebuild, s.logger)
		return nil
	}

	changed := make(chan struct{}, 1)
	w, err := watcher.New([]string{source}, watcher.DefaultDebounce, func([]watcher.Event) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}, s.logger)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				if err := rebuild(ctx); err != nil && ctx.Err() == nil {
					s.logger.Error().Err(err).Msg("rebuild failed")
				}
			}
		}
	}()

	s.logger.Info().Str("file", source).Msg("watching document for changes")
	return w.Watch(ctx)
}
