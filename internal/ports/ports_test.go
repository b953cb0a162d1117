package ports

import (
	"testing"

	"github.com/bnema/memochat/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestModelRequestContents(t *testing.T) {
	history := domain.Transcript{domain.UserText("hi"), domain.ModelText("hello")}

	tests := []struct {
		name      string
		req       ModelRequest
		wantRoles []domain.Role
	}{
		{
			name:      "new message appended as user turn",
			req:       ModelRequest{History: history, NewMessage: "remember my name"},
			wantRoles: []domain.Role{domain.RoleUser, domain.RoleModel, domain.RoleUser},
		},
		{
			name: "function responses appended as function turn",
			req: ModelRequest{
				History:           history.Append(domain.ModelCall(domain.FunctionCall{Name: "getUserData"})),
				FunctionResponses: []domain.Part{domain.ResponsePart("getUserData", "")},
			},
			wantRoles: []domain.Role{domain.RoleUser, domain.RoleModel, domain.RoleModel, domain.RoleFunction},
		},
		{
			name:      "empty message adds nothing",
			req:       ModelRequest{History: history},
			wantRoles: []domain.Role{domain.RoleUser, domain.RoleModel},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contents := tt.req.Contents()
			roles := make([]domain.Role, 0, len(contents))
			for _, turn := range contents {
				roles = append(roles, turn.Role)
			}
			assert.Equal(t, tt.wantRoles, roles)
			assert.Len(t, history, 2, "history is never mutated")
		})
	}
}
