package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/ports"
	"github.com/bnema/memochat/internal/tools"
)

const (
	DefaultModel     = anthropic.ModelClaude3_7SonnetLatest
	defaultMaxTokens = 1024
)

type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	HTTPClient        *http.Client
	SystemInstruction string
	Tools             []tools.ToolDefinition
}

var _ ports.ModelBackend = (*Backend)(nil)

// Backend talks to the Anthropic Messages API. Retries are left to the
// caller so a turn never silently doubles its latency.
type Backend struct {
	client *anthropic.Client
	model  anthropic.Model
	system string
	tools  []anthropic.ToolUnionParam
}

func New(cfg Config) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	model := anthropic.Model(cfg.Model)
	if cfg.Model == "" {
		model = DefaultModel
	}

	return &Backend{
		client: &client,
		model:  model,
		system: cfg.SystemInstruction,
		tools:  toolParams(cfg.Tools),
	}, nil
}

func (b *Backend) Generate(ctx context.Context, req ports.ModelRequest) (ports.ModelResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: int64(defaultMaxTokens),
		Messages:  toMessages(req.Contents()),
		Tools:     b.tools,
	}
	if b.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: b.system}}
	}

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return ports.ModelResponse{}, classify(err)
	}

	var out ports.ModelResponse
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Text += v.Text
		case anthropic.ToolUseBlock:
			args := map[string]any{}
			if raw := v.JSON.Input.Raw(); raw != "" {
				if err := json.Unmarshal([]byte(raw), &args); err != nil {
					return ports.ModelResponse{}, domain.NewBackendError(domain.BackendBadResponse, "decode tool input", err)
				}
			}
			out.FunctionCalls = append(out.FunctionCalls, domain.FunctionCall{Name: v.Name, Args: args})
		}
	}
	return out, nil
}

// toMessages maps the transcript onto Messages API params. Function calls
// become tool_use blocks with ids derived from their position, and the
// following function turn answers them with tool_result blocks.
func toMessages(transcript domain.Transcript) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(transcript))
	pending := map[string]string{}

	for i, turn := range transcript {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(turn.Parts))
		calls := map[string]string{}

		for j, part := range turn.Parts {
			switch {
			case part.FunctionCall != nil:
				id := toolUseID(i, j)
				calls[part.FunctionCall.Name] = id
				input := part.FunctionCall.Args
				if input == nil {
					input = map[string]any{}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(id, input, part.FunctionCall.Name))
			case part.FunctionResponse != nil:
				id, ok := pending[part.FunctionResponse.Name]
				if !ok {
					id = toolUseID(i, j)
				}
				blocks = append(blocks, anthropic.NewToolResultBlock(id, part.FunctionResponse.Result(), false))
			case part.Text != "":
				blocks = append(blocks, anthropic.NewTextBlock(part.Text))
			}
		}
		pending = calls

		if len(blocks) == 0 {
			continue
		}
		if turn.Role == domain.RoleModel {
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		} else {
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		}
	}
	return messages
}

func toolUseID(turn, part int) string {
	return fmt.Sprintf("toolu_%02d_%02d", turn, part)
}

func toolParams(defs []tools.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		properties := map[string]any{}
		for _, prop := range def.Properties() {
			properties[prop.Name] = map[string]any{
				"type":        prop.Type,
				"description": prop.Description,
			}
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        def.Name,
			Description: anthropic.String(def.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: properties,
				Required:   def.Required(),
			},
		}})
	}
	return out
}

func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return domain.NewBackendError(domain.BackendServerError, fmt.Sprintf("status %d", apiErr.StatusCode), err)
	}
	return domain.NewBackendError(domain.BackendNetworkFailure, "anthropic request", err)
}
