package common_tools

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"

	"github.com/Desarso/intentagent/models"
)

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

//go:embed schemas/*.json
var cachedSchemas embed.FS

// Handler runs one tool with already-decoded JSON arguments.
type Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

type Tool struct {
	Declaration models.FunctionDeclaration
	Handler     Handler
}

// Engine dispatches tool calls by name. It is safe for concurrent use once
// built; registration is expected at startup.
type Engine struct {
	tools map[string]Tool
}

func NewEngine(tools ...Tool) *Engine {
	e := &Engine{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		e.Register(t)
	}
	return e
}

// DefaultEngine has every built-in tool registered.
func DefaultEngine() *Engine {
	return NewEngine(StudentStatusTool())
}

func (e *Engine) Register(t Tool) {
	e.tools[t.Declaration.Name] = t
}

func (e *Engine) Execute(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	tool, ok := e.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return tool.Handler(ctx, args)
}

// Declarations lists the registered tools sorted by name.
func (e *Engine) Declarations() []models.FunctionDeclaration {
	decls := make([]models.FunctionDeclaration, 0, len(e.tools))
	for _, t := range e.tools {
		decls = append(decls, t.Declaration)
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	return decls
}

func LoadDeclaration(name string) (models.FunctionDeclaration, error) {
	var decl models.FunctionDeclaration
	raw, err := cachedSchemas.ReadFile(path.Join("schemas", name+".json"))
	if err != nil {
		return decl, fmt.Errorf("schema for %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, &decl); err != nil {
		return decl, fmt.Errorf("decode schema for %s: %w", name, err)
	}
	return decl, nil
}

func mustDeclaration(name string) models.FunctionDeclaration {
	decl, err := LoadDeclaration(name)
	if err != nil {
		panic(err)
	}
	return decl
}

// stringArg reads a required argument. Numbers are accepted and formatted
// since models often emit ids unquoted.
func stringArg(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrInvalidArguments, key)
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case json.Number:
		return val.String(), nil
	default:
		return "", fmt.Errorf("%w: %q must be a string, got %T", ErrInvalidArguments, key, v)
	}
}
