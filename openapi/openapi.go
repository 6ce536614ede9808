package openapi

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// methods are the operation keys of a path item, in canonical order.
var methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Document is the operation index of one schema snapshot.
type Document struct {
	Version    string
	Operations []Operation
}

// Operation is one path x method entry.
type Operation struct {
	Path        string
	Method      string
	Summary     string
	OperationID string
	Deprecated  bool
	Parameters  []string // "in:name", sorted
	Responses   []string // status codes, sorted

	// canonical is the operation body re-marshaled with sorted keys.
	canonical string
}

// Key returns "METHOD path".
func (o Operation) Key() string {
	return strings.ToUpper(o.Method) + " " + o.Path
}

// Lookup returns the operation for method and path.
func (d *Document) Lookup(method, path string) (Operation, bool) {
	method = strings.ToLower(method)
	for _, op := range d.Operations {
		if op.Method == method && op.Path == path {
			return op, true
		}
	}
	return Operation{}, false
}

// Load reads and parses a schema file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

type rawDocument struct {
	OpenAPI string                          `yaml:"openapi"`
	Swagger string                          `yaml:"swagger"`
	Paths   map[string]map[string]yaml.Node `yaml:"paths"`
}

type rawOperation struct {
	Summary     string `yaml:"summary"`
	OperationID string `yaml:"operationId"`
	Deprecated  bool   `yaml:"deprecated"`
	Parameters  []struct {
		Name string `yaml:"name"`
		In   string `yaml:"in"`
		Ref  string `yaml:"$ref"`
	} `yaml:"parameters"`
	Responses map[string]yaml.Node `yaml:"responses"`
}

// Parse parses a YAML or JSON schema.
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if raw.OpenAPI == "" && raw.Swagger == "" {
		return nil, ErrNotOpenAPI
	}

	doc := &Document{Version: raw.OpenAPI}
	if doc.Version == "" {
		doc.Version = raw.Swagger
	}

	for path, item := range raw.Paths {
		for key, node := range item {
			method := strings.ToLower(key)
			if !slices.Contains(methods, method) {
				continue
			}
			op, err := parseOperation(path, method, &node)
			if err != nil {
				return nil, err
			}
			doc.Operations = append(doc.Operations, op)
		}
	}

	slices.SortFunc(doc.Operations, func(a, b Operation) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return slices.Index(methods, a.Method) - slices.Index(methods, b.Method)
	})
	return doc, nil
}

func parseOperation(path, method string, node *yaml.Node) (Operation, error) {
	var raw rawOperation
	if err := node.Decode(&raw); err != nil {
		return Operation{}, fmt.Errorf("%w: %s %s: %v", ErrInvalidDocument, method, path, err)
	}

	op := Operation{
		Path:        path,
		Method:      method,
		Summary:     strings.TrimSpace(raw.Summary),
		OperationID: raw.OperationID,
		Deprecated:  raw.Deprecated,
	}
	for _, p := range raw.Parameters {
		if p.Ref != "" {
			op.Parameters = append(op.Parameters, "ref:"+p.Ref)
			continue
		}
		op.Parameters = append(op.Parameters, p.In+":"+p.Name)
	}
	slices.Sort(op.Parameters)
	for code := range raw.Responses {
		op.Responses = append(op.Responses, code)
	}
	slices.Sort(op.Responses)

	// Decoding into a generic value and re-marshaling sorts map keys, so two
	// snapshots that differ only in key order compare equal.
	var generic any
	if err := node.Decode(&generic); err != nil {
		return Operation{}, fmt.Errorf("%w: %s %s: %v", ErrInvalidDocument, method, path, err)
	}
	canonical, err := yaml.Marshal(generic)
	if err != nil {
		return Operation{}, fmt.Errorf("%w: %s %s: %v", ErrInvalidDocument, method, path, err)
	}
	op.canonical = string(canonical)
	return op, nil
}
