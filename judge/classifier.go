package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/exvulsec/safeguard/client"
	"github.com/exvulsec/safeguard/config"
)

const (
	maxReasonLength = 500
	defaultTimeout  = 60 * time.Second
)

// Judgment is the structured verdict the risk model must return.
type Judgment struct {
	Reason string `json:"reason"`
	OK     bool   `json:"ok"`
}

// ModelOutputError marks a model response that failed schema validation.
// It is fatal for the guard invocation, never treated as a pass or a fail.
type ModelOutputError struct {
	Raw string
	Err error
}

func (e *ModelOutputError) Error() string {
	return fmt.Sprintf("model output %q failed schema validation: %v", e.Raw, e.Err)
}

// Classifier is the narrow boundary to the risk model: prompt in, structured
// judgment out. The provider behind it is swappable without touching guard
// logic.
type Classifier interface {
	Classify(ctx context.Context, systemPrompt, userPrompt string) (*Judgment, error)
}

type chatClassifier struct {
	endpoint string
	apiKey   string
	model    string
	timeout  time.Duration
}

// NewClassifier builds the default classifier over an OpenAI-compatible chat
// completions endpoint configured in config.Conf.Model.
func NewClassifier() Classifier {
	timeout := defaultTimeout
	if config.Conf.Model.TimeoutSeconds > 0 {
		timeout = time.Duration(config.Conf.Model.TimeoutSeconds) * time.Second
	}
	return &chatClassifier{
		endpoint: config.Conf.Model.Endpoint,
		apiKey:   config.Conf.Model.APIKey,
		model:    config.Conf.Model.Name,
		timeout:  timeout,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (cc *chatClassifier) Classify(ctx context.Context, systemPrompt, userPrompt string) (*Judgment, error) {
	payload := chatRequest{
		Model: cc.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0,
		ResponseFormat: &chatFormat{Type: "json_object"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal model request is err %v", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, cc.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, cc.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("compose model request is err %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cc.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+cc.apiKey)
	}

	resp, err := client.HTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request model endpoint is err %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read model response body is err %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model endpoint got status code %d, body %s", resp.StatusCode, string(raw))
	}

	completion := chatResponse{}
	if err = json.Unmarshal(raw, &completion); err != nil {
		return nil, &ModelOutputError{Raw: string(raw), Err: err}
	}
	if completion.Error != nil {
		return nil, fmt.Errorf("model endpoint is err: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return nil, &ModelOutputError{Raw: string(raw), Err: fmt.Errorf("no choices in response")}
	}

	return ParseJudgment(completion.Choices[0].Message.Content)
}

// ParseJudgment validates the model's raw content against the
// {reason, ok} contract.
func ParseJudgment(content string) (*Judgment, error) {
	var parsed struct {
		Reason *string `json:"reason"`
		OK     *bool   `json:"ok"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, &ModelOutputError{Raw: content, Err: err}
	}
	if parsed.OK == nil {
		return nil, &ModelOutputError{Raw: content, Err: fmt.Errorf("missing ok field")}
	}
	if parsed.Reason == nil {
		return nil, &ModelOutputError{Raw: content, Err: fmt.Errorf("missing reason field")}
	}
	reason := *parsed.Reason
	if len(reason) > maxReasonLength {
		reason = reason[:maxReasonLength]
	}
	return &Judgment{Reason: reason, OK: *parsed.OK}, nil
}
