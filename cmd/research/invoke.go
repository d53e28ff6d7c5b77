package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/spf13/cobra"

	"github.com/aishitdharwal/ai-agent/app"
	"github.com/aishitdharwal/ai-agent/handler"
	"github.com/aishitdharwal/ai-agent/research"
	"github.com/aishitdharwal/ai-agent/store"
)

var (
	invokeTopic   string
	remoteURL     string
	remoteTimeout time.Duration
)

var invokeLocalCmd = &cobra.Command{
	Use:   "invoke-local",
	Short: "Call the Lambda handler in-process with a mock API Gateway event",
	Long: `Build the same handler the Lambda function uses, send it a POST /research
event and print the response. Use it to check a build before deploying.

State is written to the configured STATE_BACKEND; set STATE_BACKEND=file to
keep it off S3.`,
	RunE: runInvokeLocal,
}

var invokeRemoteCmd = &cobra.Command{
	Use:   "invoke-remote",
	Short: "POST a research request to a deployed API",
	Example: `  research invoke-remote --url https://abc123.execute-api.us-east-1.amazonaws.com/prod
  research invoke-remote --url https://.../prod/research --topic "CRISPR therapies"`,
	RunE: runInvokeRemote,
}

func init() {
	invokeLocalCmd.Flags().StringVar(&invokeTopic, "topic", defaultTopic, "research topic")
	invokeRemoteCmd.Flags().StringVar(&invokeTopic, "topic", defaultTopic, "research topic")
	invokeRemoteCmd.Flags().StringVar(&remoteURL, "url", "", "API Gateway URL (from the deploy output)")
	invokeRemoteCmd.Flags().DurationVar(&remoteTimeout, "timeout", 5*time.Minute, "request timeout")
	_ = invokeRemoteCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(invokeLocalCmd, invokeRemoteCmd)
}

// localEvent mirrors the event API Gateway sends for POST /research.
func localEvent(topic string, now time.Time) (events.APIGatewayProxyRequest, error) {
	body, err := json.Marshal(map[string]string{"topic": topic})
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}
	return events.APIGatewayProxyRequest{
		Resource:   "/research",
		Path:       "/research",
		HTTPMethod: http.MethodPost,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			AccountID:        "123456789012",
			APIID:            "local-test",
			Protocol:         "HTTP/1.1",
			HTTPMethod:       http.MethodPost,
			Path:             "/research",
			Stage:            "test",
			RequestID:        "local-test-request",
			RequestTime:      now.Format(time.RFC3339),
			RequestTimeEpoch: now.UnixMilli(),
		},
	}, nil
}

func localRequestID(now time.Time) string {
	return "local-test-" + now.Format("20060102-150405")
}

func runInvokeLocal(cmd *cobra.Command, args []string) error {
	agents, err := app.BuildAgents(cfg, logger)
	if err != nil {
		return err
	}
	return withStore(cmd.Context(), func(st store.Store) error {
		return invokeLocal(cmd, handler.New(agents.Stateful, st, handler.WithLogger(logger)))
	})
}

func invokeLocal(cmd *cobra.Command, h *handler.Handler) error {
	now := time.Now()
	event, err := localEvent(invokeTopic, now)
	if err != nil {
		return err
	}
	ctx := lambdacontext.NewContext(cmd.Context(), &lambdacontext.LambdaContext{
		AwsRequestID:       localRequestID(now),
		InvokedFunctionArn: "arn:aws:lambda:local:123456789012:function:research-agent-local-test",
	})

	fmt.Fprintf(cmd.ErrOrStderr(), "Invoking handler for topic %q (request %s)\n", invokeTopic, localRequestID(now))
	resp, err := h.Handle(ctx, event)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Status Code: %d\n\n%s\n", resp.StatusCode, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("handler returned status %d", resp.StatusCode)
	}
	return nil
}

// researchURL appends /research to base unless it is already there.
func researchURL(base string) string {
	if strings.HasSuffix(base, "/research") {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/research"
}

type remoteResponse struct {
	RequestID string           `json:"request_id"`
	Topic     string           `json:"topic"`
	Result    *research.Result `json:"result"`
	Error     string           `json:"error"`
	Message   string           `json:"message"`
}

func postResearch(ctx context.Context, client *http.Client, url, topic string) (int, []byte, error) {
	payload, err := json.Marshal(map[string]string{"topic": topic})
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func runInvokeRemote(cmd *cobra.Command, args []string) error {
	out, status := cmd.OutOrStdout(), cmd.ErrOrStderr()
	url := researchURL(remoteURL)

	fmt.Fprintf(status, "POST %s (topic %q)\n", url, invokeTopic)

	start := time.Now()
	code, body, err := postResearch(cmd.Context(), &http.Client{Timeout: remoteTimeout}, url, invokeTopic)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	fmt.Fprintln(status, mutedStyle.Render(fmt.Sprintf("Response time: %.2f seconds, status %d", time.Since(start).Seconds(), code)))

	var resp remoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		fmt.Fprintln(out, string(body))
		return fmt.Errorf("unexpected response (status %d)", code)
	}

	if code != http.StatusOK || resp.Result == nil {
		fmt.Fprintln(out, string(body))
		return fmt.Errorf("api returned status %d: %s", code, strings.TrimSpace(resp.Error+" "+resp.Message))
	}

	fmt.Fprintf(out, "Request ID: %s\n\n", resp.RequestID)
	return renderResult(out, "text", resp.Result)
}
