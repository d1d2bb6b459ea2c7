// Command gen_schema writes the JSON tool declaration for a Go function.
//
// The function's doc comment becomes the description and each parameter
// becomes a property. Non-pointer parameters are required.
//
//	go run ./schemas -func=Get_Student_Status -name=get_student_status -file=common_tools/student_status.go -out=common_tools/schemas
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

type JSONSchema struct {
	Type                 string                `json:"type,omitempty"`
	Description          string                `json:"description,omitempty"`
	Title                string                `json:"title,omitempty"`
	Properties           map[string]JSONSchema `json:"properties,omitempty"`
	Items                *JSONSchema           `json:"items,omitempty"`
	Required             []string              `json:"required,omitempty"`
	AdditionalProperties *JSONSchema           `json:"additionalProperties,omitempty"`
}

// ToolFunctionSchema matches models.FunctionDeclaration on the wire.
type ToolFunctionSchema struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"`
}

func main() {
	funcName := flag.String("func", "", "Go function to describe")
	toolName := flag.String("name", "", "tool name exposed to the model (defaults to -func)")
	fileName := flag.String("file", "main.go", "source file containing the function")
	outDir := flag.String("out", "schemas", "output directory")
	flag.Parse()

	if *funcName == "" {
		log.Fatal("Function name must be provided using -func flag")
	}
	if *toolName == "" {
		*toolName = *funcName
	}

	fn, doc, err := loadFunc(*fileName, *funcName)
	if err != nil {
		log.Fatal(err)
	}

	schema, err := buildToolSchema(*toolName, doc, fn.Type().(*types.Signature))
	if err != nil {
		log.Fatal(err)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Failed to create directory '%s': %v", *outDir, err)
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal schema to JSON: %v", err)
	}
	out := filepath.Join(*outDir, *toolName+".json")
	if err := os.WriteFile(out, append(data, '\n'), 0644); err != nil {
		log.Fatalf("Failed to write schema to file '%s': %v", out, err)
	}
	log.Printf("Wrote schema for %s to %s", *funcName, out)
}

// loadFunc type-checks the package holding fileName and returns the named
// function together with its doc comment.
func loadFunc(fileName, funcName string) (*types.Func, string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedTypes |
			packages.NeedSyntax | packages.NeedTypesInfo,
		Fset: token.NewFileSet(),
	}
	pkgs, err := packages.Load(cfg, filepath.Dir(fileName))
	if err != nil {
		return nil, "", fmt.Errorf("load package for %s: %w", fileName, err)
	}
	if len(pkgs) == 0 {
		return nil, "", fmt.Errorf("no package found for %s", fileName)
	}
	var loadErrors []string
	for _, p := range pkgs {
		for _, e := range p.Errors {
			loadErrors = append(loadErrors, e.Error())
		}
	}
	if len(loadErrors) > 0 {
		return nil, "", fmt.Errorf("package errors:\n%s", strings.Join(loadErrors, "\n"))
	}

	pkg := pkgs[0]
	fn, ok := pkg.Types.Scope().Lookup(funcName).(*types.Func)
	if !ok {
		return nil, "", fmt.Errorf("function %q not found in %s", funcName, pkg.PkgPath)
	}

	var doc string
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if ok && pkg.TypesInfo.Defs[fd.Name] == fn && fd.Doc != nil {
				doc = strings.TrimSpace(fd.Doc.Text())
			}
		}
	}
	if doc == "" {
		log.Printf("Warning: No documentation comment found for function '%s'", funcName)
	}
	return fn, doc, nil
}

func buildToolSchema(name, description string, sig *types.Signature) (ToolFunctionSchema, error) {
	params := JSONSchema{
		Type:       "object",
		Properties: make(map[string]JSONSchema),
	}
	for i := 0; i < sig.Params().Len(); i++ {
		p := sig.Params().At(i)
		if isContext(p.Type()) {
			continue
		}
		s, err := schemaForType(p.Type())
		if err != nil {
			return ToolFunctionSchema{}, fmt.Errorf("parameter %s: %w", p.Name(), err)
		}
		params.Properties[p.Name()] = s
		if _, isPointer := p.Type().(*types.Pointer); !isPointer {
			params.Required = append(params.Required, p.Name())
		}
	}
	sort.Strings(params.Required)

	return ToolFunctionSchema{Name: name, Description: description, Parameters: params}, nil
}

func isContext(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return false
	}
	return named.Obj().Pkg().Path() == "context" && named.Obj().Name() == "Context"
}

func schemaForType(t types.Type) (JSONSchema, error) {
	var title string
	if named, ok := t.(*types.Named); ok {
		title = named.Obj().Name()
	}

	switch typ := t.Underlying().(type) {
	case *types.Basic:
		info := typ.Info()
		switch {
		case info&types.IsBoolean != 0:
			return JSONSchema{Type: "boolean", Title: title}, nil
		case info&types.IsInteger != 0:
			return JSONSchema{Type: "integer", Title: title}, nil
		case info&types.IsFloat != 0:
			return JSONSchema{Type: "number", Title: title}, nil
		case info&types.IsString != 0:
			return JSONSchema{Type: "string", Title: title}, nil
		}
		return JSONSchema{}, fmt.Errorf("unsupported basic type %s", typ)

	case *types.Slice:
		return arraySchema(typ.Elem(), title)
	case *types.Array:
		return arraySchema(typ.Elem(), title)

	case *types.Pointer:
		return schemaForType(typ.Elem())

	case *types.Map:
		if b, ok := typ.Key().Underlying().(*types.Basic); !ok || b.Info()&types.IsString == 0 {
			return JSONSchema{}, fmt.Errorf("map key %s is not a string", typ.Key())
		}
		value, err := schemaForType(typ.Elem())
		if err != nil {
			return JSONSchema{}, err
		}
		return JSONSchema{Type: "object", Title: title, AdditionalProperties: &value}, nil

	case *types.Struct:
		s := JSONSchema{Type: "object", Title: title, Properties: make(map[string]JSONSchema)}
		for i := 0; i < typ.NumFields(); i++ {
			field := typ.Field(i)
			if !field.Exported() {
				continue
			}
			name, omitEmpty := jsonFieldName(field.Name(), typ.Tag(i))
			if name == "-" {
				continue
			}
			fs, err := schemaForType(field.Type())
			if err != nil {
				return JSONSchema{}, fmt.Errorf("field %s: %w", field.Name(), err)
			}
			s.Properties[name] = fs
			if !omitEmpty {
				s.Required = append(s.Required, name)
			}
		}
		sort.Strings(s.Required)
		return s, nil

	case *types.Interface:
		// Any JSON value.
		return JSONSchema{Title: title}, nil
	}
	return JSONSchema{}, fmt.Errorf("unsupported type %s", t)
}

func arraySchema(elem types.Type, title string) (JSONSchema, error) {
	items, err := schemaForType(elem)
	if err != nil {
		return JSONSchema{}, err
	}
	return JSONSchema{Type: "array", Title: title, Items: &items}, nil
}

func jsonFieldName(goName, tag string) (string, bool) {
	value, ok := reflect.StructTag(tag).Lookup("json")
	if !ok {
		return goName, false
	}
	parts := strings.Split(value, ",")
	name := parts[0]
	if name == "" {
		name = goName
	}
	omitEmpty := false
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty
}
