// Package openapi embeds the HTTP API description served at /api/v1/openapi.*.
package openapi

import _ "embed"

// Spec is the OpenAPI document in YAML.
//
//go:embed openapi.yaml
var Spec []byte
