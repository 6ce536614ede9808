// Package openapi loads OpenAPI 3 and Swagger 2 schemas and diffs two
// snapshots at the operation level (path x method).
package openapi
