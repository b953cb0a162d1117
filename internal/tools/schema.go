package tools

import (
	"github.com/invopop/jsonschema"
)

type ToolDefinition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

type Property struct {
	Name        string
	Type        string
	Description string
}

func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// Properties returns the input properties in declaration order.
func (d ToolDefinition) Properties() []Property {
	if d.InputSchema == nil || d.InputSchema.Properties == nil {
		return nil
	}

	out := make([]Property, 0, d.InputSchema.Properties.Len())
	for pair := d.InputSchema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Property{
			Name:        pair.Key,
			Type:        pair.Value.Type,
			Description: pair.Value.Description,
		})
	}
	return out
}

func (d ToolDefinition) Required() []string {
	if d.InputSchema == nil {
		return nil
	}
	return d.InputSchema.Required
}

func describe(schema *jsonschema.Schema, descriptions map[string]string) *jsonschema.Schema {
	if schema.Properties == nil {
		return schema
	}
	for name, description := range descriptions {
		if prop, ok := schema.Properties.Get(name); ok {
			prop.Description = description
		}
	}
	return schema
}
