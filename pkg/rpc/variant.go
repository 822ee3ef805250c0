package rpc

import (
	"bytes"
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/steemkit/steembridge/pkg/log"
)

// Variant is a tagged record encoded as ["<tag>", {...}], e.g. an operation
// inside an account history entry.
type Variant struct {
	Tag    string
	Fields map[string]any
}

func (v *Variant) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("expected [tag, record] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &v.Tag); err != nil {
		return fmt.Errorf("tag: %w", err)
	}

	v.Fields = nil
	if bytes.Equal(bytes.TrimSpace(pair[1]), []byte("null")) {
		return nil
	}
	if err := decodeJSON(pair[1], &v.Fields); err != nil {
		return fmt.Errorf("%s record: %w", v.Tag, err)
	}
	return nil
}

func (v Variant) MarshalJSON() ([]byte, error) {
	fields := v.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	return json.Marshal([2]any{v.Tag, fields})
}

// As maps the record fields onto target, which must be a pointer to a struct
// or map. Fields that cannot be converted keep their zero value and are
// logged at debug; the others are still decoded. See DecodeLoose.
func (v Variant) As(ctx context.Context, target any) error {
	dropped, err := DecodeLoose(v.Fields, target)
	if err != nil {
		return &TransformationError{Value: v.Tag, Target: fmt.Sprintf("%T", target), Index: -1, Err: err}
	}
	if len(dropped) > 0 {
		log.FromContext(ctx).Debug("dropped unmappable record fields", "tag", v.Tag, "fields", dropped)
	}
	return nil
}

// DecodeLoose maps a generic JSON tree onto target by json field names.
// Numbers and strings convert into each other, fields the target does not
// declare are ignored, and missing fields keep their zero value. Types
// implementing encoding.TextUnmarshaler are decoded from strings.
//
// Fields whose value cannot be converted are skipped and returned in
// dropped. An error is returned only when src cannot be mapped at all, for
// instance a scalar into a struct, or when target is not a pointer.
func DecodeLoose(src any, target any) (dropped []string, err error) {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       textUnmarshalerHook,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           target,
	})
	if err != nil {
		return nil, err
	}

	err = dec.Decode(src)
	var fieldErrs *mapstructure.Error
	if errors.As(err, &fieldErrs) {
		for _, msg := range fieldErrs.Errors {
			dropped = append(dropped, fieldName(msg))
		}
		return dropped, nil
	}
	return nil, err
}

// fieldName extracts the quoted field name mapstructure puts first in each
// field error, e.g. 'weight' expected type 'int16'.
func fieldName(msg string) string {
	_, rest, ok := strings.Cut(msg, "'")
	if !ok {
		return msg
	}
	name, _, ok := strings.Cut(rest, "'")
	if !ok {
		return msg
	}
	return name
}

// textUnmarshalerHook decodes strings and json.Number values into targets
// implementing encoding.TextUnmarshaler.
func textUnmarshalerHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	ptr := reflect.New(to)
	u, ok := ptr.Interface().(encoding.TextUnmarshaler)
	if !ok {
		return data, nil
	}
	if err := u.UnmarshalText([]byte(reflect.ValueOf(data).String())); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}
