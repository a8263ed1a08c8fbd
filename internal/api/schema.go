package api

import (
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// validator is satisfied by *jsonschema.Schema.
type validator interface {
	Validate(v interface{}) error
}

type schemaSet struct {
	todos validator
	user  validator
}

// Fields beyond these are allowed; upstream payloads carry extras we ignore.
const todosSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "completed"],
    "properties": {
      "id":        {"type": "integer", "minimum": 1},
      "userId":    {"type": "integer"},
      "title":     {"type": "string"},
      "completed": {"type": "boolean"}
    }
  }
}`

const userSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name"],
  "properties": {
    "id":       {"type": "integer", "minimum": 1},
    "name":     {"type": "string"},
    "username": {"type": "string"},
    "email":    {"type": "string"},
    "phone":    {"type": "string"}
  }
}`

func compileSchemas() (*schemaSet, error) {
	todos, err := jsonschema.CompileString("todos.schema.json", todosSchema)
	if err != nil {
		return nil, fmt.Errorf("compile todos schema: %w", err)
	}
	user, err := jsonschema.CompileString("user.schema.json", userSchema)
	if err != nil {
		return nil, fmt.Errorf("compile user schema: %w", err)
	}
	return &schemaSet{todos: todos, user: user}, nil
}
