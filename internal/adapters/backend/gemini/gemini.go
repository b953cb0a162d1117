package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/ports"
	"github.com/bnema/memochat/internal/tools"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	HTTPClient        *http.Client
	SystemInstruction string
	Tools             []tools.ToolDefinition
}

var _ ports.ModelBackend = (*Backend)(nil)

// Backend talks to the Gemini API through the genai SDK.
type Backend struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	generateConfig := &genai.GenerateContentConfig{}
	if cfg.SystemInstruction != "" {
		generateConfig.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: cfg.SystemInstruction}}}
	}
	if len(cfg.Tools) > 0 {
		generateConfig.Tools = []*genai.Tool{{FunctionDeclarations: declarations(cfg.Tools)}}
	}

	return &Backend{client: client, model: model, config: generateConfig}, nil
}

func (b *Backend) Generate(ctx context.Context, req ports.ModelRequest) (ports.ModelResponse, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model, toContents(req.Contents()), b.config)
	if err != nil {
		return ports.ModelResponse{}, classify(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ports.ModelResponse{}, domain.NewBackendError(domain.BackendBadResponse, "gemini returned no candidates", nil)
	}

	out := ports.ModelResponse{Text: resp.Text()}
	for _, call := range resp.FunctionCalls() {
		if call == nil || call.Name == "" {
			continue
		}
		out.FunctionCalls = append(out.FunctionCalls, domain.FunctionCall{Name: call.Name, Args: call.Args})
	}
	return out, nil
}

// toContents maps the transcript onto Gemini contents. Function turns are
// sent with the user role.
func toContents(transcript domain.Transcript) []*genai.Content {
	contents := make([]*genai.Content, 0, len(transcript))
	for _, turn := range transcript {
		role := string(genai.RoleUser)
		if turn.Role == domain.RoleModel {
			role = string(genai.RoleModel)
		}

		parts := make([]*genai.Part, 0, len(turn.Parts))
		for _, part := range turn.Parts {
			switch {
			case part.FunctionCall != nil:
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				}})
			case part.FunctionResponse != nil:
				parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					Name:     part.FunctionResponse.Name,
					Response: part.FunctionResponse.Response,
				}})
			default:
				parts = append(parts, &genai.Part{Text: part.Text})
			}
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}

func declarations(defs []tools.ToolDefinition) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		properties := map[string]*genai.Schema{}
		for _, prop := range def.Properties() {
			properties[prop.Name] = &genai.Schema{Type: schemaType(prop.Type), Description: prop.Description}
		}
		out = append(out, &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   def.Required(),
			},
		})
	}
	return out
}

func schemaType(jsonType string) genai.Type {
	switch jsonType {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeString
	}
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewBackendError(domain.BackendServerError, fmt.Sprintf("status %d: %s", apiErr.Code, apiErr.Message), err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return domain.NewBackendError(domain.BackendServerError, fmt.Sprintf("status %d: %s", apiErrPtr.Code, apiErrPtr.Message), err)
	}
	return domain.NewBackendError(domain.BackendNetworkFailure, "gemini request", err)
}
