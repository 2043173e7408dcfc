package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"
)

// maxBodySize limits the size of request bodies read by UnmarshalBody
const maxBodySize = 1 << 20

var (
	errRequestBodyInvalidJSON = func(err string) *Error {
		return &Error{
			Type:    "validation.requestBody.invalidJSON",
			Message: "Request body is not a valid JSON input.",
			Details: map[string]any{
				"error": err,
			},
		}
	}
	errRequestBodyParameterInvalidType = func(name, expectedType string) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.invalidType",
			Message: fmt.Sprintf("The request body parameter '%s' could not be assigned to the required type (%s).", name, expectedType),
			Details: map[string]any{
				"parameter":     name,
				"expected_type": expectedType,
			},
		}
	}
	errRequestBodyParameterMissing = func(name string) *Error {
		return &Error{
			Type:    "validation.requestBody.parameter.missing",
			Message: fmt.Sprintf("The request body parameter '%s' is required but was not present in the request.", name),
			Details: map[string]any{
				"parameter": name,
			},
		}
	}
)

// UnmarshalBody parses and decodes a JSON or URL-encoded form request body and performs validations on it.
// Fields tagged with `required:"true"` have to be pointers and are reported as missing if they stay nil.
func UnmarshalBody[T any](request *http.Request) (*T, []*Error, error) {
	var body []byte
	if isFormRequest(request) {
		encoded, err := formToJSON(request)
		if err != nil {
			return nil, nil, err
		}
		body = encoded
	} else {
		raw, err := io.ReadAll(io.LimitReader(request.Body, maxBodySize))
		if err != nil {
			return nil, nil, err
		}
		body = raw
	}

	target := new(T)
	if err := json.Unmarshal(body, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, []*Error{errRequestBodyParameterInvalidType(typeErr.Field, typeErr.Type.String())}, nil
		}
		return nil, []*Error{errRequestBodyInvalidJSON(err.Error())}, nil
	}

	errs, err := validateStruct("", target)
	if err != nil {
		return nil, nil, err
	}
	return target, errs, nil
}

func isFormRequest(request *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

func formToJSON(request *http.Request) ([]byte, error) {
	request.Body = http.MaxBytesReader(nil, request.Body, maxBodySize)
	if err := request.ParseForm(); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(request.PostForm))
	for key := range request.PostForm {
		values[key] = request.PostForm.Get(key)
	}
	return json.Marshal(values)
}

func validateStruct(fieldPrefix string, val any) ([]*Error, error) {
	typ := reflect.TypeOf(val)
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, errors.New("illegal call to validateStruct with non-struct parameter")
	}
	ref := reflect.ValueOf(val)
	if ref.Kind() == reflect.Pointer {
		ref = ref.Elem()
	}

	var errs []*Error

	for i := 0; i < typ.NumField(); i++ {
		fieldDef := typ.Field(i)
		required := strings.EqualFold(fieldDef.Tag.Get("required"), "true")
		fieldName := getFieldName(fieldDef)

		field := ref.Field(i)
		if field.Kind() == reflect.Pointer {
			if field.IsNil() {
				if required {
					errs = append(errs, errRequestBodyParameterMissing(fieldPrefix+fieldName))
				}
				continue
			}
			field = field.Elem()
		}
		if field.Kind() == reflect.Struct {
			subErrs, err := validateStruct(fieldPrefix+fieldName+".", field.Interface())
			if err != nil {
				return nil, err
			}
			errs = append(errs, subErrs...)
		}
	}

	return errs, nil
}

func getFieldName(def reflect.StructField) string {
	jsonVal, ok := def.Tag.Lookup("json")
	if !ok || jsonVal == "-" {
		return def.Name
	}
	name, _, _ := strings.Cut(jsonVal, ",")
	return name
}
