package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxRequestSize = 8 * 1024 * 1024 // 8MB total JSON payload (base64 image included)

// createResponse sends one Responses API call and returns the generated
// text. All transport and upstream failures come back as *GenerationError.
func (c *Client) createResponse(parentCtx context.Context, pReq providerRequest) (string, error) {
	start := time.Now()

	// Per-request timeout (0 = only use parentCtx)
	var ctx context.Context
	var cancel context.CancelFunc
	if c.cfg.UpstreamTimeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, c.cfg.UpstreamTimeout)
	} else {
		ctx, cancel = context.WithCancel(parentCtx)
	}
	defer cancel()

	bodyBytes, err := json.Marshal(pReq)
	if err != nil {
		return "", badOutputError("marshal request", err)
	}

	if len(bodyBytes) > maxRequestSize {
		return "", badOutputError(
			fmt.Sprintf("request too large (%d bytes, max %d)", len(bodyBytes), maxRequestSize), nil)
	}

	url := c.cfg.BaseURL + "/v1/responses"

	// doOnce builds a fresh *http.Request for each attempt
	doOnce := func(ctx context.Context, body []byte) (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("openai: build HTTP request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")
		return c.httpClient.Do(httpReq)
	}

	resp, err := c.doWithRetry(ctx, bodyBytes, doOnce)
	if err != nil {
		c.logger.Error("model request failed",
			zap.String("model", pReq.Model),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	// Handle non-2xx responses
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)

		// Try to parse structured error
		var perr providerErrorResponse
		if err := json.Unmarshal(body, &perr); err == nil && perr.Error.Message != "" {
			c.logger.Error("model provider error",
				zap.Int("status", resp.StatusCode),
				zap.String("error_type", perr.Error.Type),
				zap.String("error_message", perr.Error.Message),
			)
			return "", classifyStatusError(resp.StatusCode,
				fmt.Sprintf("upstream %d: %s (%s)", resp.StatusCode, perr.Error.Message, perr.Error.Type))
		}

		// Fallback to raw body
		c.logger.Error("model upstream error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(body), 200)),
		)
		return "", classifyStatusError(resp.StatusCode,
			fmt.Sprintf("upstream %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	var pResp providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pResp); err != nil {
		return "", badOutputError("decode upstream response", err)
	}

	text := pResp.outputText()
	if text == "" {
		c.logger.Error("model returned no output text",
			zap.String("model", pReq.Model),
			zap.String("status", pResp.Status),
		)
		return "", badOutputError("provider returned no output text", nil)
	}

	usage := providerUsage{}
	if pResp.Usage != nil {
		usage = *pResp.Usage
	}

	c.logger.Info("model request completed",
		zap.String("model", pReq.Model),
		zap.Int("input_tokens", usage.InputTokens),
		zap.Int("output_tokens", usage.OutputTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return text, nil
}

// sanitizeJSONOutput strips markdown code fences some models wrap around
// JSON answers.
func sanitizeJSONOutput(output string) string {
	output = strings.ReplaceAll(output, "```json", "")
	output = strings.ReplaceAll(output, "```", "")
	return strings.TrimSpace(output)
}

// truncate limits string length for logging
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
