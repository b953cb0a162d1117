// Package tools declares the function-calling surface offered to the model:
//   - ToolDefinition: name, localized description and input JSON Schema.
//   - GenerateSchema[T](): derive the input schema from a Go struct.
//   - Registry(catalog): every declaration, in a stable order.
package tools
