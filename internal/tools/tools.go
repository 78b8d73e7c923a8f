// Package tools exposes lookup operations through a tool-calling registry:
// named operations with JSON-schema parameter definitions, executable with
// raw JSON arguments.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// JSONSchema describes a tool's parameters in JSON Schema form.
type JSONSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Items       *JSONSchema            `json:"items,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
}

// ObjectSchema builds an object schema from properties and required keys.
func ObjectSchema(properties map[string]*JSONSchema, required ...string) *JSONSchema {
	return &JSONSchema{Type: "object", Properties: properties, Required: required}
}

// StringProp builds a string property schema.
func StringProp(description string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: description}
}

// EnumProp builds a string property restricted to the given values.
func EnumProp(description string, values ...string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: description, Enum: values}
}

// IntProp builds an integer property schema.
func IntProp(description string) *JSONSchema {
	return &JSONSchema{Type: "integer", Description: description}
}

// ObjectProp builds a free-form object property schema.
func ObjectProp(description string) *JSONSchema {
	return &JSONSchema{Type: "object", Description: description}
}

// ToolHandler executes a tool with raw JSON arguments and returns the
// serialized result.
type ToolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// Tool is one named, schema-described operation.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  *JSONSchema `json:"parameters"`
	Handler     ToolHandler `json:"-"`
}

// ToolCall is one requested invocation.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult pairs a call with its outcome.
type ToolResult struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// ToolRegistry holds the available tools.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]*Tool)}
}

// Register adds a tool. A tool with the same name is replaced.
func (r *ToolRegistry) Register(t *Tool) {
	r.mu.Lock()
	r.tools[t.Name] = t
	r.mu.Unlock()
}

// Get returns a tool by name.
func (r *ToolRegistry) Get(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all tools sorted by name.
func (r *ToolRegistry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Execute runs one tool by name with raw JSON arguments.
func (r *ToolRegistry) Execute(ctx context.Context, name string, args json.RawMessage) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return t.Handler(ctx, args)
}

// ExecuteAll runs a batch of calls sequentially, never aborting the batch:
// each failure becomes an error result for that call.
func (r *ToolRegistry) ExecuteAll(ctx context.Context, calls []ToolCall) []ToolResult {
	results := make([]ToolResult, 0, len(calls))
	for _, call := range calls {
		content, err := r.Execute(ctx, call.Name, call.Arguments)
		res := ToolResult{ID: call.ID, Name: call.Name, Content: content}
		if err != nil {
			res.Content = err.Error()
			res.IsError = true
		}
		results = append(results, res)
	}
	return results
}
