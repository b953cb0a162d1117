package ports

import (
	"context"

	"github.com/bnema/memochat/internal/domain"
)

// ModelRequest mirrors the proxy wire contract. History is the context the
// model has already seen; NewMessage and FunctionResponses, when present,
// are appended as a user turn and a function turn respectively.
type ModelRequest struct {
	History           domain.Transcript `json:"history"`
	NewMessage        string            `json:"newMessage,omitempty"`
	FunctionResponses []domain.Part     `json:"functionResponses,omitempty"`
}

// Contents returns the full ordered transcript the backend should send.
func (r ModelRequest) Contents() domain.Transcript {
	contents := r.History.Clone()
	if r.NewMessage != "" {
		contents = contents.Append(domain.UserText(r.NewMessage))
	}
	if len(r.FunctionResponses) > 0 {
		contents = contents.Append(domain.FunctionResult(r.FunctionResponses...))
	}
	return contents
}

type ModelResponse struct {
	Text          string                `json:"text"`
	FunctionCalls []domain.FunctionCall `json:"functionCalls,omitempty"`
}

// ModelBackend is the hosted model port. Failures are returned as
// *domain.BackendError.
type ModelBackend interface {
	Generate(ctx context.Context, req ModelRequest) (ModelResponse, error)
}
