package control

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed profile.schema.json
var profileSchemaJSON []byte

const profileSchemaURL = "file:///micropad/profile.schema.json"

var profileSchema = mustCompileSchema(profileSchemaURL, profileSchemaJSON)

func mustCompileSchema(url string, data []byte) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("control: add schema resource: %v", err))
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("control: compile schema: %v", err))
	}
	return schema
}

// ValidateProfile checks a profile document against the embedded schema.
func ValidateProfile(doc []byte) error {
	var instance any
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("control: decode profile: %w", err)
	}
	if err := profileSchema.Validate(instance); err != nil {
		return fmt.Errorf("control: invalid profile: %w", err)
	}
	return nil
}
