package tools

import (
	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/locale"
)

type SaveUserDataInput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type GetUserDataInput struct {
	Key string `json:"key"`
}

type GetAllUserDataInput struct{}

// Registry returns all tool definitions with descriptions from catalog.
func Registry(catalog locale.Catalog) []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        domain.ToolNameSaveUserData,
			Description: catalog.ToolSaveDescription,
			InputSchema: describe(GenerateSchema[SaveUserDataInput](), map[string]string{
				domain.ToolArgKey:   catalog.ToolSaveKeyDescription,
				domain.ToolArgValue: catalog.ToolSaveValueDescription,
			}),
		},
		{
			Name:        domain.ToolNameGetUserData,
			Description: catalog.ToolGetDescription,
			InputSchema: describe(GenerateSchema[GetUserDataInput](), map[string]string{
				domain.ToolArgKey: catalog.ToolGetKeyDescription,
			}),
		},
		{
			Name:        domain.ToolNameGetAllUserData,
			Description: catalog.ToolGetAllDescription,
			InputSchema: GenerateSchema[GetAllUserDataInput](),
		},
	}
}
