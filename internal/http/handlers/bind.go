package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/geocoder89/storefront/internal/domain/freeform"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON decodes and validates the body into out. It writes the error response
// and returns false on failure.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	return bindJSONWithMessage(ctx, out, "Invalid request body")
}

func bindJSONWithMessage(ctx *gin.Context, out interface{}, message string) bool {
	err := ctx.ShouldBindJSON(out)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body is too large", nil)
		return false
	}

	RespondBadRequest(ctx, message, parseBindError(err, out))
	return false
}

func parseBindError(err error, out interface{}) interface{} {
	rootType := baseStructType(out)

	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			rule := fieldError.Tag()
			param := fieldError.Param()

			fields = append(fields, FieldError{
				Field:   jsonPathFromValidatorError(rootType, fieldError),
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}
		return gin.H{"fields": fields}
	}

	switch {
	case errors.Is(err, io.EOF):
		return gin.H{"json": "empty_body"}
	case errors.Is(err, freeform.ErrNotObject):
		return gin.H{"json": "expected_object"}
	case errors.Is(err, cart.ErrInvalidQuantity):
		return gin.H{"fields": []FieldError{{Field: "quantity", Rule: "min", Param: "1", Message: err.Error()}}}
	}

	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	var typeError *json.UnmarshalTypeError

	if errors.As(err, &typeError) {
		field := jsonPathFromDotPath(rootType, typeError.Field)
		if field == "" {
			field = strings.TrimSpace(typeError.Field)
		}

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", typeError.Type.String()),
			}},
		}
	}

	return gin.H{"reason": err.Error()}
}

func baseStructType(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

func jsonPathFromValidatorError(rootType reflect.Type, fieldError validator.FieldError) string {
	// "<StructName>.<Field>[.<NestedField>...]"
	namespace := fieldError.StructNamespace()
	if namespace == "" {
		return fieldError.Field()
	}

	parts := strings.Split(namespace, ".")
	if rootType != nil && len(parts) > 0 && parts[0] == rootType.Name() {
		parts = parts[1:]
	}

	if path := mapStructPathToJSONPath(rootType, parts); path != "" {
		return path
	}
	return fieldError.Field()
}

func jsonPathFromDotPath(rootType reflect.Type, dotPath string) string {
	dotPath = strings.TrimSpace(dotPath)
	if dotPath == "" {
		return ""
	}
	return mapStructPathToJSONPath(rootType, strings.Split(dotPath, "."))
}

// mapStructPathToJSONPath translates Go field names to their json tag names,
// keeping any [i] index suffix.
func mapStructPathToJSONPath(rootType reflect.Type, parts []string) string {
	current := rootType
	out := make([]string, 0, len(parts))

	for _, rawPart := range parts {
		if rawPart == "" {
			continue
		}

		name, index, _ := strings.Cut(rawPart, "[")
		if index != "" {
			index = "[" + index
		}

		jsonName := name
		var next reflect.Type

		for current != nil && current.Kind() == reflect.Pointer {
			current = current.Elem()
		}
		if current != nil && current.Kind() == reflect.Struct {
			if sf, ok := current.FieldByName(name); ok {
				jsonName = jsonNameFromStructField(sf)
				next = sf.Type
			}
		}

		out = append(out, jsonName+index)
		current = elemType(next)
	}

	return strings.Join(out, ".")
}

func jsonNameFromStructField(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return sf.Name
	}
	return name
}

func elemType(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		default:
			return t
		}
	}
	return nil
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "gt":
		return "must be greater than " + param
	case "gte":
		return "must be greater than or equal to " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
