package mapdef

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of the map interchange document, for
// validating uploads from external tooling.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{}
	schema := r.Reflect(&Map{})
	return json.MarshalIndent(schema, "", "  ")
}
