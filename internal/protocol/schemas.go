package protocol

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/handler_hello.schema.json
var handlerHelloSchemaSrc string

//go:embed schemas/update_response.schema.json
var updateResponseSchemaSrc string

//go:embed schemas/event.schema.json
var eventSchemaSrc string

var (
	handlerHelloSchema   = mustCompile("handler_hello.schema.json", handlerHelloSchemaSrc)
	updateResponseSchema = mustCompile("update_response.schema.json", updateResponseSchemaSrc)
	eventSchema          = mustCompile("event.schema.json", eventSchemaSrc)
)

func mustCompile(name, src string) *jsonschema.Schema {
	s, err := jsonschema.CompileString(name, src)
	if err != nil {
		panic(fmt.Sprintf("protocol: compile %s: %v", name, err))
	}
	return s
}

func ValidateHandlerHello(raw []byte) error { return validateRaw(handlerHelloSchema, raw) }

func ValidateUpdateResponse(raw []byte) error { return validateRaw(updateResponseSchema, raw) }

func ValidateEvent(raw []byte) error { return validateRaw(eventSchema, raw) }

func validateRaw(s *jsonschema.Schema, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%s: %w", ErrProtoBadRequest, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%s: %w", ErrProtoBadRequest, err)
	}
	return nil
}
