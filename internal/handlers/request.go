package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"catalog/internal/services"
	"catalog/pkg/logger"
	"catalog/pkg/response"
)

// Messages for bodies that cannot be decoded at all.
const (
	msgInvalidJSON = "Invalid JSON body"
	msgInvalidBody = "Invalid request body"
)

const unknownFieldPrefix = "json: unknown field "

// parseBody decodes the JSON request body into out. An empty body decodes as
// {}; fields out does not declare are rejected. The returned error is ready to
// be sent to the client.
func parseBody(c *fiber.Ctx, out interface{}) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errors.New(bodyErrorMessage(body, err))
	}
	if dec.More() {
		return errors.New(msgInvalidJSON)
	}
	return nil
}

func bodyErrorMessage(body []byte, err error) string {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return msgInvalidBody
		}
		return fmt.Sprintf("%q must be %s", indexedPath(body, typeErr.Field, typeErr.Type), describeType(typeErr.Type))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return msgInvalidJSON
	case strings.HasPrefix(err.Error(), unknownFieldPrefix):
		// encoding/json has no typed error for DisallowUnknownFields.
		name, uerr := strconv.Unquote(strings.TrimPrefix(err.Error(), unknownFieldPrefix))
		if uerr != nil {
			return msgInvalidBody
		}
		return fmt.Sprintf("%q is not allowed", name)
	default:
		return msgInvalidBody
	}
}

// indexedPath turns the dotted field of a type error ("variants.stock") into
// the path of the offending value ("variants[1].stock") by walking body.
// It falls back to dotted when the value cannot be located.
func indexedPath(body []byte, dotted string, want reflect.Type) string {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return dotted
	}
	path, ok := locate(doc, strings.Split(dotted, "."), want)
	if !ok {
		return dotted
	}
	return strings.TrimPrefix(path, ".")
}

func locate(v interface{}, keys []string, want reflect.Type) (string, bool) {
	if len(keys) == 0 {
		return "", !fits(v, want)
	}
	switch node := v.(type) {
	case []interface{}:
		for i, el := range node {
			if rest, ok := locate(el, keys, want); ok {
				return fmt.Sprintf("[%d]%s", i, rest), true
			}
		}
	case map[string]interface{}:
		child, found := node[keys[0]]
		if !found {
			return "", false
		}
		if rest, ok := locate(child, keys[1:], want); ok {
			return "." + keys[0] + rest, true
		}
	}
	return "", false
}

// fits reports whether a generically decoded JSON value can decode into t.
func fits(v interface{}, t reflect.Type) bool {
	if v == nil || t == nil {
		return true
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.(float64)
		return ok && n == math.Trunc(n)
	case reflect.Float32, reflect.Float64:
		_, ok := v.(float64)
		return ok
	case reflect.String:
		_, ok := v.(string)
		return ok
	case reflect.Bool:
		_, ok := v.(bool)
		return ok
	case reflect.Slice, reflect.Array:
		_, ok := v.([]interface{})
		return ok
	case reflect.Struct, reflect.Map:
		_, ok := v.(map[string]interface{})
		return ok
	default:
		return true
	}
}

func describeType(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "of type object"
	}
}

// respondError answers with the status and message of an expected service
// error. Anything else is logged with op and hidden behind "Server error".
func respondError(c *fiber.Ctx, log *logger.Logger, op string, err error) error {
	if serr, ok := services.AsError(err); ok {
		return response.Error(c, statusFor(serr.Kind), serr.Message)
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg(op)
	return response.Error(c, fiber.StatusInternalServerError, services.MsgServerError)
}

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindValidation, services.KindConflict:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// message is the body of delete confirmations.
type message struct {
	Message string `json:"message"`
}
