package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"visionreporter/internal/logger"
	"visionreporter/internal/model"
)

// Placeholders returned in place of a report. Draft never fails.
const (
	ConfigMissingPlaceholder = "OPENAI_API_KEY is not set in the server configuration."
	ServiceErrorPlaceholder  = "AI error. Check billing / model / key / network."
	EndpointErrorPlaceholder = "Error talking to AI backend"
	ReplyNotFound            = "AI reply not found"

	UnknownObject = "unknown object"
)

// maxResponseSize bounds how much of an upstream body is read.
const maxResponseSize = 1 << 20

// Drafter turns a detected object label into formal report prose.
type Drafter interface {
	Draft(ctx context.Context, objectLabel string) string
}

// Prompt builds the instruction sent to the language model.
func Prompt(objectLabel string) string {
	if strings.TrimSpace(objectLabel) == "" {
		objectLabel = UnknownObject
	}
	return fmt.Sprintf(`You are an intelligent municipal field assistant for Polokwane Local Municipality.
Write a short incident report (3-5 sentences) that can be logged in a service
delivery ticketing system.

Object detected: %q.

Include:
1. What was observed.
2. Possible public safety / health / service risk.
3. Urgency level.
Use formal municipal language, not casual tone.`, objectLabel)
}

// OpenAIDrafter calls the OpenAI Responses API directly.
type OpenAIDrafter struct {
	apiKey string
	url    string
	model  string
	client *http.Client
	logger *logger.Logger
}

// NewOpenAIDrafter creates a drafter. An empty apiKey is allowed; Draft then
// returns ConfigMissingPlaceholder.
func NewOpenAIDrafter(apiKey, url, model string, timeout time.Duration, logger *logger.Logger) *OpenAIDrafter {
	return &OpenAIDrafter{
		apiKey: apiKey,
		url:    url,
		model:  model,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type responsesRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// Draft implements Drafter.
func (d *OpenAIDrafter) Draft(ctx context.Context, objectLabel string) string {
	if d.apiKey == "" {
		d.logger.Warning("Report drafting skipped: %v", model.ErrConfigurationMissing)
		return ConfigMissingPlaceholder
	}

	payload, err := json.Marshal(responsesRequest{Model: d.model, Input: Prompt(objectLabel)})
	if err != nil {
		d.logger.Error("Failed to encode drafting request: %v", err)
		return ServiceErrorPlaceholder
	}

	body, err := post(ctx, d.client, d.url, payload, d.apiKey)
	if err != nil {
		d.logger.Error("Report drafting failed: %v", err)
		return ServiceErrorPlaceholder
	}

	return Extract(body, ResponsesText, ChatMessage)
}

// EndpointDrafter asks a remote drafting endpoint with {"objectName": label}.
type EndpointDrafter struct {
	url    string
	client *http.Client
	logger *logger.Logger
}

// NewEndpointDrafter creates a drafter for the given endpoint URL.
func NewEndpointDrafter(url string, timeout time.Duration, logger *logger.Logger) *EndpointDrafter {
	return &EndpointDrafter{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Draft implements Drafter.
func (d *EndpointDrafter) Draft(ctx context.Context, objectLabel string) string {
	if strings.TrimSpace(objectLabel) == "" {
		objectLabel = UnknownObject
	}

	payload, err := json.Marshal(map[string]string{"objectName": objectLabel})
	if err != nil {
		d.logger.Error("Failed to encode drafting request: %v", err)
		return EndpointErrorPlaceholder
	}

	body, err := post(ctx, d.client, d.url, payload, "")
	if err != nil {
		d.logger.Error("Report endpoint failed: %v", err)
		return EndpointErrorPlaceholder
	}

	return Extract(body, ReportField, ResponsesText, ChatMessage)
}

// post sends a JSON body and decodes the JSON reply. Any non-2xx status is an error.
func post(ctx context.Context, client *http.Client, url string, payload []byte, bearer string) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrTransientService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, fmt.Errorf("%w: upstream status %d", model.ErrTransientService, resp.StatusCode)
	}

	var body interface{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", model.ErrTransientService, err)
	}
	return body, nil
}
