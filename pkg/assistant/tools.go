package assistant

import (
	"context"
	"encoding/json"
)

// Schema is the JSON-schema fragment describing a tool's arguments. Only the
// subset chat-completion APIs actually consume is modeled.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Tool is one callable exposed to the model. Execute receives the raw
// JSON arguments the model produced; whatever it returns is serialized back
// into the conversation as the tool result.
type Tool struct {
	Name        string
	Description string
	Parameters  Schema
	Execute     func(ctx context.Context, args json.RawMessage) (any, error)
}

// toolDefinition is the wire form of a Tool in a chat-completion request.
type toolDefinition struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  Schema `json:"parameters"`
}

func wireTools(tools []Tool) []toolDefinition {
	if len(tools) == 0 {
		return nil
	}
	defs := make([]toolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = toolDefinition{
			Type: "function",
			Function: toolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return defs
}

func findTool(tools []Tool, name string) *Tool {
	for i := range tools {
		if tools[i].Name == name {
			return &tools[i]
		}
	}
	return nil
}
