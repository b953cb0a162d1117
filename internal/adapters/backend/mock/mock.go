package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/locale"
	"github.com/bnema/memochat/internal/ports"
)

var (
	rememberPattern = regexp.MustCompile(`(?i)^\s*remember\s+(?:that\s+)?(?:my\s+)?(.+?)\s+is\s+(.+?)\s*[.!]?\s*$`)
	recallPattern   = regexp.MustCompile(`(?i)^\s*what\s+is\s+my\s+(.+?)\s*\??\s*$`)
)

var _ ports.ModelBackend = (*Backend)(nil)

// Backend is a deterministic offline model. It understands
// "remember <key> is <value>" and "what is my <key>", greets with the stored
// facts and echoes everything else.
type Backend struct {
	catalog locale.Catalog
}

func New(catalog locale.Catalog) *Backend {
	return &Backend{catalog: catalog}
}

func (b *Backend) Generate(ctx context.Context, req ports.ModelRequest) (ports.ModelResponse, error) {
	if err := ctx.Err(); err != nil {
		return ports.ModelResponse{}, domain.NewBackendError(domain.BackendNetworkFailure, "mock request", err)
	}

	if len(req.FunctionResponses) > 0 {
		return ports.ModelResponse{Text: b.followUp(req.FunctionResponses[0])}, nil
	}

	prompt := strings.TrimSpace(req.NewMessage)
	switch {
	case prompt == "":
		return ports.ModelResponse{}, domain.NewBackendError(domain.BackendBadResponse, "empty prompt", nil)
	case prompt == b.catalog.GreetingPrompt:
		return callResponse(domain.ToolNameGetAllUserData, map[string]any{}), nil
	}

	if m := rememberPattern.FindStringSubmatch(prompt); m != nil {
		return callResponse(domain.ToolNameSaveUserData, map[string]any{
			domain.ToolArgKey:   normalizeKey(m[1]),
			domain.ToolArgValue: m[2],
		}), nil
	}
	if m := recallPattern.FindStringSubmatch(prompt); m != nil {
		return callResponse(domain.ToolNameGetUserData, map[string]any{
			domain.ToolArgKey: normalizeKey(m[1]),
		}), nil
	}

	return ports.ModelResponse{Text: "You said: " + prompt}, nil
}

func (b *Backend) followUp(part domain.Part) string {
	if part.FunctionResponse == nil {
		return b.catalog.GenericError
	}
	result := part.FunctionResponse.Result()

	switch part.FunctionResponse.Name {
	case domain.ToolNameGetAllUserData:
		return b.greeting(result)
	case domain.ToolNameSaveUserData, domain.ToolNameGetUserData:
		if result == "" {
			return b.catalog.GenericError
		}
		return result
	default:
		return b.catalog.GenericError
	}
}

func (b *Backend) greeting(result string) string {
	var facts map[string]string
	if err := json.Unmarshal([]byte(result), &facts); err != nil || len(facts) == 0 {
		return b.catalog.Welcome
	}

	keys := make([]string, 0, len(facts))
	for key := range facts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s (%s)", b.catalog.Welcome, strings.Join(keys, ", "))
}

func callResponse(name string, args map[string]any) ports.ModelResponse {
	return ports.ModelResponse{FunctionCalls: []domain.FunctionCall{{Name: name, Args: args}}}
}

// normalizeKey turns "favorite color" into "favoriteColor".
func normalizeKey(raw string) string {
	words := strings.Fields(strings.ToLower(raw))
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(words[0])
	for _, word := range words[1:] {
		b.WriteString(strings.ToUpper(word[:1]))
		b.WriteString(word[1:])
	}
	return b.String()
}
