// Package aiagent is a web research agent served from AWS Lambda.
//
// A research run takes a topic and walks a fixed four-step workflow: plan a
// few search queries, run them through a web search API, pull key findings
// out of the results and write a summary. Each step reads and returns a
// single research.State, so the state after every step can be observed,
// persisted and inspected.
//
// # Packages
//
//   - graph: a small typed state graph engine (nodes, edges, retries,
//     listeners, tracing, Mermaid and ASCII rendering).
//   - research: the stateful agent built on graph, and a naive single-prompt
//     agent that calls the search tool through model tool calling.
//   - tool: Tavily and Brave web search, and a page fetcher for results that
//     come back without content.
//   - store: request state persistence with S3, file, memory, Redis, SQLite
//     and Postgres backends.
//   - handler: the API Gateway handler (POST /research, GET
//     /research/{request_id}).
//   - config, log, app: environment settings, logging and wiring.
//
// # Binaries
//
// cmd/research-lambda is the Lambda entry point. cmd/research is a CLI that
// runs either agent locally, invokes the handler in-process or against a
// deployed API, and reads saved state:
//
//	go run ./cmd/research run --agent both --topic "Solid-state batteries"
//	go run ./cmd/research invoke-local
//	go run ./cmd/research state get local-test-20240305-140709
//	go run ./cmd/research graph --format mermaid
//
// deploy/ holds the SAM template and deploy script.
package aiagent
