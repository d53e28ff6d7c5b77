package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

var corsHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type",
	"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type researchBody struct {
	RequestID string `json:"request_id"`
	Topic     string `json:"topic"`
	Result    any    `json:"result"`
}

func headers() map[string]string {
	h := make(map[string]string, len(corsHeaders))
	for k, v := range corsHeaders {
		h[k] = v
	}
	return h
}

// respond renders body as 2-space indented JSON. A nil body yields an empty
// response body.
func respond(status int, body any) events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{StatusCode: status, Headers: headers()}
	if body == nil {
		return resp
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(body); err != nil {
		resp.StatusCode = http.StatusInternalServerError
		resp.Body = `{"error": "Internal server error"}`
		return resp
	}
	resp.Body = string(bytes.TrimRight(buf.Bytes(), "\n"))
	return resp
}

func respondError(status int, msg string) events.APIGatewayProxyResponse {
	return respond(status, errorBody{Error: msg})
}
