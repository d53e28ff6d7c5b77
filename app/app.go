// Package app wires configuration into the agents and state store shared by
// the Lambda function and the CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"

	"github.com/aishitdharwal/ai-agent/config"
	"github.com/aishitdharwal/ai-agent/log"
	"github.com/aishitdharwal/ai-agent/research"
	"github.com/aishitdharwal/ai-agent/store"
	"github.com/aishitdharwal/ai-agent/tool"

	// State backends register themselves with store.Open.
	_ "github.com/aishitdharwal/ai-agent/store/file"
	_ "github.com/aishitdharwal/ai-agent/store/memory"
	_ "github.com/aishitdharwal/ai-agent/store/postgres"
	_ "github.com/aishitdharwal/ai-agent/store/redis"
	_ "github.com/aishitdharwal/ai-agent/store/s3"
	_ "github.com/aishitdharwal/ai-agent/store/sqlite"
)

// SearchTool is a searcher that can also be handed to a tool-calling model.
type SearchTool interface {
	tool.Searcher
	tools.Tool
}

// NewLogger builds the golog-backed logger at cfg.LogLevel, writing to stderr.
func NewLogger(cfg *config.Config) (log.Logger, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return log.New(os.Stderr, level), nil
}

// NewSearcher builds the search tool named by cfg.SearchProvider.
func NewSearcher(cfg *config.Config) (SearchTool, error) {
	switch strings.ToLower(cfg.SearchProvider) {
	case "", "tavily":
		s, err := tool.NewTavilySearch(cfg.TavilyAPIKey, tool.WithTavilyMaxResults(cfg.SearchMaxResults))
		if err != nil {
			return nil, err
		}
		return s, nil
	case "brave":
		s, err := tool.NewBraveSearch(cfg.BraveAPIKey, tool.WithBraveCount(cfg.SearchMaxResults))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.SearchProvider)
	}
}

// NewModel builds the chat model from cfg.
func NewModel(cfg *config.Config) (llms.Model, error) {
	return research.NewModel(research.ModelConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
}

// Agents holds both research agents over one model and search tool.
type Agents struct {
	Stateful *research.Agent
	Naive    *research.NaiveAgent
}

// NewAgents builds both agents over the given model and search tool.
// extra options apply to the stateful agent after the defaults.
func NewAgents(cfg *config.Config, model llms.Model, search SearchTool, logger log.Logger, extra ...research.Option) (*Agents, error) {
	opts := []research.Option{research.WithLogger(logger)}
	if cfg.FetchPages {
		opts = append(opts, research.WithPageFetcher(tool.NewPageFetcher()))
	}
	opts = append(opts, extra...)

	stateful, err := research.New(model, search, opts...)
	if err != nil {
		return nil, err
	}
	naive, err := research.NewNaiveAgent(model, []tools.Tool{search}, research.WithNaiveLogger(logger))
	if err != nil {
		return nil, err
	}
	return &Agents{Stateful: stateful, Naive: naive}, nil
}

// BuildAgents validates keys and builds both agents from cfg.
func BuildAgents(cfg *config.Config, logger log.Logger, extra ...research.Option) (*Agents, error) {
	if err := cfg.ValidateAgent(); err != nil {
		return nil, err
	}
	model, err := NewModel(cfg)
	if err != nil {
		return nil, err
	}
	search, err := NewSearcher(cfg)
	if err != nil {
		return nil, err
	}
	return NewAgents(cfg, model, search, logger, extra...)
}

// OpenStore opens the state backend named by cfg.StateBackend.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	return store.Open(ctx, cfg)
}
