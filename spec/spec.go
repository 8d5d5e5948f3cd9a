// Package spec embeds the OpenAPI document of the trip browser view API.
// It is imported by the HTTP server to serve it at /openapi.yaml.
package spec

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
