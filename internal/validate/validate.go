// Package validate gates HTTP handlers on a request-body schema.
//
// A schema is a Go struct whose `json` tags name the fields and whose
// `validate` tags (github.com/go-playground/validator) declare constraints.
// Bodies that fail are answered with 400 and a map of field path to reasons;
// bodies that pass are handed to the next stage as a typed value.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/HafizSyedAhmedAli/Flacron-Gamezone-Local-sub001/internal/metrics"
)

const (
	ErrInvalidBody  = "Invalid body"
	ErrBodyTooLarge = "Body too large"

	// bodyField is the details key for problems with the body as a whole.
	bodyField = "body"

	contentTypeJSON = "application/json"
)

// Details maps a field path such as "filters.league" or "teams[0].name" to its violations.
type Details map[string][]string

func (d Details) add(path, reason string) {
	d[path] = append(d[path], reason)
}

// ErrorResponse is the JSON body written for rejected requests.
type ErrorResponse struct {
	Error   string  `json:"error"`
	Details Details `json:"details,omitempty"`
}

// validator.Validate caches struct metadata and is safe for concurrent use.
var engine = newEngine()

func newEngine() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Schema validates bodies into values of struct type T.
type Schema[T any] struct {
	name string
}

// NewSchema names a schema for logs and metrics.
func NewSchema[T any](name string) *Schema[T] {
	return &Schema[T]{name: name}
}

func (s *Schema[T]) Name() string { return s.name }

// Parse decodes and validates body. An empty body is decoded as the zero T and
// validated like any other input. The returned Details is nil on success.
//
// Every field whose JSON kind does not fit its Go type is reported; constraint
// checks are skipped for those fields and anything nested under them.
func (s *Schema[T]) Parse(body []byte) (T, Details) {
	var value T
	details := Details{}
	failed := map[string]struct{}{}

	if len(bytes.TrimSpace(body)) > 0 {
		err := json.Unmarshal(body, &value)
		var typeErr *json.UnmarshalTypeError
		if err != nil && !errors.As(err, &typeErr) {
			// nothing usable was decoded, constraint checks would only add noise
			details.add(bodyField, decodeReason(err))
			return value, details
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		var doc any
		if err := dec.Decode(&doc); err != nil {
			details.add(bodyField, decodeReason(err))
			return value, details
		}
		failed = typeErrors(doc, reflect.TypeFor[T](), details)
		if _, whole := failed[bodyField]; whole {
			return value, details
		}
		if typeErr != nil && len(failed) == 0 {
			path := typeErrorPath(typeErr)
			details.add(path, typeReason(typeErr))
			failed[path] = struct{}{}
		}
	}

	if err := engine.Struct(&value); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			details.add(bodyField, err.Error())
			return value, details
		}
		for _, fe := range fieldErrs {
			path := fieldPath(fe)
			if underFailed(path, failed) {
				continue
			}
			details.add(path, reason(fe))
		}
	}

	if len(details) == 0 {
		return value, nil
	}
	return value, details
}

type ctxKey[T any] struct{}

// FromContext returns the value stored by Body for schema type T.
func FromContext[T any](r *http.Request) (T, bool) {
	v, ok := r.Context().Value(ctxKey[T]{}).(T)
	return v, ok
}

// Body is a middleware form of the gate: the parsed value is attached to the
// request context and read back with FromContext.
func Body[T any](s *Schema[T]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return Handler(s, func(w http.ResponseWriter, r *http.Request, value T) {
			ctx := context.WithValue(r.Context(), ctxKey[T]{}, value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Handler runs fn with the parsed body, or rejects the request without calling fn.
func Handler[T any](s *Schema[T], fn func(w http.ResponseWriter, r *http.Request, value T)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				reject(w, s.name, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ErrBodyTooLarge})
				return
			}
			reject(w, s.name, http.StatusBadRequest, ErrorResponse{
				Error:   ErrInvalidBody,
				Details: Details{bodyField: {"Unreadable body"}},
			})
			return
		}

		value, details := s.Parse(body)
		if details != nil {
			zap.S().Debugw("request body rejected", "schema", s.name, "path", r.URL.Path, "details", details)
			reject(w, s.name, http.StatusBadRequest, ErrorResponse{Error: ErrInvalidBody, Details: details})
			return
		}
		fn(w, r, value)
	}
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func reject(w http.ResponseWriter, schema string, status int, resp ErrorResponse) {
	metrics.ValidationFailures.WithLabelValues(schema).Inc()
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zap.S().Errorw("encode error", "error", err)
	}
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	// drop the root struct name
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func typeErrorPath(e *json.UnmarshalTypeError) string {
	if e.Field == "" {
		return bodyField
	}
	return e.Field
}

func typeReason(e *json.UnmarshalTypeError) string {
	received := e.Value
	if received == "bool" {
		received = "boolean"
	}
	return fmt.Sprintf("Expected %s, received %s", jsonKind(e.Type), received)
}

func decodeReason(err error) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("Malformed JSON at offset %d", syntaxErr.Offset)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return "Malformed JSON: unexpected end of input"
	}
	return "Malformed JSON"
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}
