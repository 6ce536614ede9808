package openapi

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/randalmurphal/announce/release"
)

const baseSpec = `
openapi: 3.0.3
info:
  title: Users
  version: 1.1.0
paths:
  /users:
    parameters:
      - name: tenant
        in: header
    get:
      summary: List users
      parameters:
        - name: limit
          in: query
      responses:
        "200":
          description: ok
  /users/{id}:
    get:
      summary: Get user
      responses:
        "200":
          description: ok
    delete:
      summary: Delete user
      responses:
        "204":
          description: gone
`

const nextSpec = `
openapi: 3.0.3
info:
  title: Users
  version: 1.2.0
paths:
  /users:
    get:
      summary: List users
      parameters:
        - name: limit
          in: query
        - name: cursor
          in: query
      responses:
        "200":
          description: ok
        "400":
          description: bad cursor
  /users/{id}:
    get:
      responses:
        "200":
          description: ok
      summary: Get user
  /users/{id}/activity:
    get:
      summary: List recent activity for a user
      responses:
        "200":
          description: ok
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(baseSpec))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Version != "3.0.3" {
		t.Errorf("Version = %q", doc.Version)
	}

	var keys []string
	for _, op := range doc.Operations {
		keys = append(keys, op.Key())
	}
	want := []string{"GET /users", "GET /users/{id}", "DELETE /users/{id}"}
	if len(keys) != len(want) {
		t.Fatalf("operations = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("operations[%d] = %s, want %s", i, keys[i], want[i])
		}
	}

	op, ok := doc.Lookup("GET", "/users")
	if !ok {
		t.Fatal("GET /users not found")
	}
	if len(op.Parameters) != 1 || op.Parameters[0] != "query:limit" {
		t.Errorf("Parameters = %v", op.Parameters)
	}
}

func TestParse_JSON(t *testing.T) {
	doc, err := Parse([]byte(`{"swagger":"2.0","paths":{"/ping":{"get":{"summary":"Ping","responses":{"200":{"description":"pong"}}}}}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Version != "2.0" || len(doc.Operations) != 1 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse([]byte("paths: [unclosed")); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("malformed yaml: got %v", err)
	}
	if _, err := Parse([]byte("name: not a schema\n")); !errors.Is(err, ErrNotOpenAPI) {
		t.Errorf("non-openapi: got %v", err)
	}
}

func TestDiff(t *testing.T) {
	prev, err := Parse([]byte(baseSpec))
	if err != nil {
		t.Fatal(err)
	}
	cur, err := Parse([]byte(nextSpec))
	if err != nil {
		t.Fatal(err)
	}

	entries := Diff(prev, cur)

	want := []struct {
		id   string
		kind release.ChangeKind
	}{
		{"GET /users", release.ChangeModified},
		{"DELETE /users/{id}", release.ChangeRemoved},
		{"GET /users/{id}/activity", release.ChangeAdded},
	}
	if len(entries) != len(want) {
		t.Fatalf("Diff returned %d entries: %+v", len(entries), entries)
	}
	for i, w := range want {
		if entries[i].ID() != w.id || entries[i].Kind != w.kind {
			t.Errorf("entries[%d] = %s %s, want %s %s", i, entries[i].Kind, entries[i].ID(), w.kind, w.id)
		}
	}

	mod := entries[0].Description
	for _, fragment := range []string{"List users", "parameters added: query:cursor", "responses added: 400"} {
		if !strings.Contains(mod, fragment) {
			t.Errorf("modified description %q missing %q", mod, fragment)
		}
	}
	if entries[2].Description != "List recent activity for a user" {
		t.Errorf("added description = %q", entries[2].Description)
	}
}

func TestDiff_KeyOrderIsNotAChange(t *testing.T) {
	a, _ := Parse([]byte("openapi: 3.0.0\npaths:\n  /x:\n    get:\n      summary: X\n      operationId: getX\n"))
	b, _ := Parse([]byte("openapi: 3.0.0\npaths:\n  /x:\n    get:\n      operationId: getX\n      summary: X\n"))
	if entries := Diff(a, b); len(entries) != 0 {
		t.Errorf("expected no changes, got %+v", entries)
	}
}

func TestDiff_BodyOnlyChange(t *testing.T) {
	a, _ := Parse([]byte("openapi: 3.0.0\npaths:\n  /x:\n    get:\n      description: old text\n"))
	b, _ := Parse([]byte("openapi: 3.0.0\npaths:\n  /x:\n    get:\n      description: new text\n"))
	entries := Diff(a, b)
	if len(entries) != 1 || entries[0].Kind != release.ChangeModified {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Description != "2 schema lines changed" {
		t.Errorf("Description = %q", entries[0].Description)
	}
}

func TestDiff_NoPreviousSnapshot(t *testing.T) {
	cur, _ := Parse([]byte(nextSpec))
	if entries := Diff(nil, cur); len(entries) != 0 {
		t.Errorf("expected empty diff without baseline, got %d entries", len(entries))
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	if err := os.WriteFile(path, []byte(baseSpec), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Operations) != 3 {
		t.Errorf("operations = %d", len(doc.Operations))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v", err)
	}
}
