package swagger

import _ "embed"

// OpenAPI contains the embedded OpenAPI YAML description of the similarity
// service the UI talks to.
//
//go:embed openapi.yaml
var OpenAPI []byte
