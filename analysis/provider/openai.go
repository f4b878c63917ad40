// Package provider wraps the external model service behind one logical
// operation: a structured completion that takes a prompt plus a target JSON
// schema and returns schema-conformant output or a typed failure.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// CallErrorKind classifies structured-completion failures.
type CallErrorKind string

const (
	KindTimeout    CallErrorKind = "timeout"
	KindRateLimit  CallErrorKind = "rate_limit"
	KindValidation CallErrorKind = "validation"
	KindOther      CallErrorKind = "other"
)

// CallError is a typed failure from one structured completion. Callers treat
// every kind as recoverable: the affected field degrades, the run continues.
type CallError struct {
	Kind CallErrorKind
	Err  error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("model call (%s): %v", e.Kind, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Request is one structured completion: a prompt plus a target schema.
type Request struct {
	// Name labels the schema for the API.
	Name string
	// Instructions is the system-level prompt for the call.
	Instructions string
	// Input is the user-turn content (stats, transcript excerpts).
	Input string
	// Schema is a strict JSON schema produced by GenerateSchema.
	Schema map[string]any
	// MaxOutputTokens caps the response size (default 2500).
	MaxOutputTokens int64
}

// Client performs structured completions against an external model.
// Implementations return the raw JSON text of the response body; decoding and
// validation stay with the caller, which knows the expected shape.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

const defaultCallTimeout = 90 * time.Second

// OpenAI is the production Client backed by the OpenAI Responses API.
type OpenAI struct {
	client      *openai.Client
	model       string
	callTimeout time.Duration
}

// NewOpenAI builds a client for the given model. callTimeout bounds each
// individual attempt; zero selects the default.
func NewOpenAI(apiKey, model string, callTimeout time.Duration) *OpenAI {
	c := openai.NewClient(option.WithAPIKey(apiKey))
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &OpenAI{client: &c, model: model, callTimeout: callTimeout}
}

func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	if o.client == nil {
		return "", &CallError{Kind: KindOther, Err: errors.New("OpenAI: client is nil")}
	}
	if o.model == "" {
		return "", &CallError{Kind: KindOther, Err: errors.New("OpenAI: model is empty")}
	}
	if req.Schema == nil {
		return "", &CallError{Kind: KindValidation, Err: errors.New("OpenAI: request schema is nil")}
	}

	maxTokens := req.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = 2500
	}

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(maxTokens),
		Instructions:    openai.String(req.Instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(req.Input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   req.Name,
					Schema: req.Schema,
					Strict: openai.Bool(true),
					Type:   "json_schema",
				},
			},
		},
	}

	resp, err := o.callWithRetry(ctx, params)
	if err != nil {
		return "", err
	}
	return resp.OutputText(), nil
}

func (o *OpenAI) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxRetries = 3
	rateLimitWaitTimes := []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second}
	serverErrorWaitTimes := []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
		resp, err := o.client.Responses.New(callCtx, params)
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var wait time.Duration
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			wait = serverErrorWaitTimes[attempt]
		case isRateLimitError(err):
			wait = rateLimitWaitTimes[attempt]
		case isServerError(err):
			wait = serverErrorWaitTimes[attempt]
		default:
			return nil, &CallError{Kind: KindOther, Err: err}
		}
		if attempt == maxRetries-1 {
			break
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, &CallError{Kind: KindTimeout, Err: ctx.Err()}
		}
	}
	return nil, &CallError{
		Kind: classify(lastErr),
		Err:  fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr),
	}
}

func classify(err error) CallErrorKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case isRateLimitError(err):
		return KindRateLimit
	default:
		return KindOther
	}
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}
