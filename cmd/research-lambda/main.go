// Command research-lambda serves the research agent on AWS Lambda behind
// API Gateway.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/aishitdharwal/ai-agent/app"
	"github.com/aishitdharwal/ai-agent/config"
	"github.com/aishitdharwal/ai-agent/handler"
	"github.com/aishitdharwal/ai-agent/log"
)

func main() {
	h, err := setup(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "research-lambda: %v\n", err)
		os.Exit(1)
	}
	lambda.Start(h.Handle)
}

// setup runs once per cold start.
func setup(ctx context.Context) (*handler.Handler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	log.SetDefaultLogger(logger)

	agents, err := app.BuildAgents(cfg, logger)
	if err != nil {
		return nil, err
	}

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("state backend: %s", cfg.StateBackend)

	return handler.New(agents.Stateful, st, handler.WithLogger(logger)), nil
}
