package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intel-cli/internal/pipeline"
	"github.com/sells-group/intel-cli/internal/search"
	"github.com/sells-group/intel-cli/internal/store"
	"github.com/sells-group/intel-cli/pkg/anthropic"
	"github.com/sells-group/intel-cli/pkg/perplexity"
	"github.com/sells-group/intel-cli/pkg/tavily"
)

// env bundles the wired pipeline and its store for one command invocation.
type env struct {
	st   store.Store
	pipe *pipeline.Pipeline
}

func (e *env) Close() {
	if err := e.st.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

// initPipeline opens the store and wires every configured search provider
// into a ready-to-run pipeline. At least one provider key is required.
func initPipeline(ctx context.Context) (*env, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	var providers []search.Provider
	if cfg.Tavily.Key != "" {
		var opts []tavily.Option
		if cfg.Tavily.BaseURL != "" {
			opts = append(opts, tavily.WithBaseURL(cfg.Tavily.BaseURL))
		}
		providers = append(providers, search.NewTavilyProvider(tavily.NewClient(cfg.Tavily.Key, opts...)))
	}
	if cfg.Perplexity.Key != "" {
		opts := []perplexity.Option{perplexity.WithModel(cfg.Perplexity.Model)}
		if cfg.Perplexity.BaseURL != "" {
			opts = append(opts, perplexity.WithBaseURL(cfg.Perplexity.BaseURL))
		}
		providers = append(providers, search.NewPerplexityProvider(perplexity.NewClient(cfg.Perplexity.Key, opts...)))
	}
	if len(providers) == 0 {
		_ = st.Close()
		return nil, eris.New("no search provider configured: set INTEL_TAVILY_KEY or INTEL_PERPLEXITY_KEY")
	}

	var ai anthropic.Client
	if cfg.Anthropic.Key != "" {
		ai = anthropic.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Info("no anthropic key configured, regulatory extraction runs on heuristics only")
	}

	agg := search.NewAggregator(cfg.Search, providers...)
	return &env{
		st:   st,
		pipe: pipeline.New(cfg, wl, st, agg, ai),
	}, nil
}
