/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tomoncle/feedback/apperrors"
	"github.com/tomoncle/feedback/types"
)

var validate = validator.New()

// NormalizeIdentifier parses value as a UUID and returns its canonical
// lowercase hyphenated form.
func NormalizeIdentifier(value string) (string, error) {
	return normalizeIdentifierField("feedback_id", value)
}

func normalizeIdentifierField(field, value string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return "", apperrors.Validation("%s must be a valid UUID string", field)
	}
	return id.String(), nil
}

// ValidateEnumFields checks every enum field present in payload against its
// domain. Absent fields pass; present values outside the domain never do.
func ValidateEnumFields(payload types.Payload) error {
	for _, domain := range enumDomainsInOrder() {
		raw, ok := payload[domain.Field()]
		if !ok {
			continue
		}
		if _, err := checkEnum(domain, raw); err != nil {
			return err
		}
	}
	return nil
}

func enumDomainsInOrder() []types.EnumDomain {
	out := make([]types.EnumDomain, 0, 4)
	for _, f := range mutableFields {
		if f.Kind == KindEnum {
			out = append(out, f.Enum)
		}
	}
	return out
}

func checkEnum(domain types.EnumDomain, raw interface{}) (string, error) {
	s, ok := raw.(string)
	if !ok || validate.Var(s, "required,oneof="+domain.OneOf()) != nil {
		return "", apperrors.Validation("%s must be one of %v", domain.Field(), domain.Values())
	}
	return s, nil
}

// ValidateConfidence accepts nil, or a value convertible to a float in [0,1].
func ValidateConfidence(value interface{}) error {
	_, err := confidenceValue(value)
	return err
}

func confidenceValue(value interface{}) (*float64, error) {
	if value == nil {
		return nil, nil
	}
	c, ok := toFloat64(value)
	if !ok {
		return nil, apperrors.Validation("confidence must be numeric")
	}
	if validate.Var(c, "gte=0,lte=1") != nil {
		return nil, apperrors.Validation("confidence must be between 0 and 1")
	}
	return &c, nil
}

// SelectUpdatableFields keeps only keys on the mutable whitelist. Unknown
// keys are dropped without error.
func SelectUpdatableFields(payload types.Payload) types.Payload {
	out := make(types.Payload, len(payload))
	for k, v := range payload {
		if _, ok := mutableIndex[k]; ok {
			out[k] = v
		}
	}
	return out
}

// ValidateRequired reports every create-time field that is absent, null or
// an empty string.
func ValidateRequired(payload types.Payload) error {
	var missing []string
	for _, name := range RequiredOnCreate {
		if isBlank(payload[name]) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperrors.Validation("missing required fields: %v", missing)
	}
	return nil
}

// ValidateFilters checks list filters; enum filters must name a domain value.
// Empty values mean "no filter" and are skipped.
func ValidateFilters(filters map[string]string) error {
	for _, name := range FilterColumns {
		v := filters[name]
		if v == "" {
			continue
		}
		if domain, ok := enumDomain(name); ok {
			if _, err := checkEnum(domain, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// coerce normalizes raw into the Go representation of field's column.
// A nil result means SQL NULL.
func coerce(field Field, raw interface{}) (interface{}, error) {
	if raw == nil {
		if field.Required {
			return nil, apperrors.Validation("%s must not be null", field.Name)
		}
		return nil, nil
	}
	switch field.Kind {
	case KindEnum:
		return checkEnum(field.Enum, raw)
	case KindFloat:
		c, err := confidenceValue(raw)
		if err != nil {
			return nil, err
		}
		return *c, nil
	case KindInteger:
		n, ok := toInt64(raw)
		if !ok {
			return nil, apperrors.Validation("%s must be an integer", field.Name)
		}
		return n, nil
	case KindIdentifier:
		s, ok := raw.(string)
		if !ok {
			return nil, apperrors.Validation("%s must be a valid UUID string", field.Name)
		}
		return normalizeIdentifierField(field.Name, s)
	default:
		s, ok := raw.(string)
		if !ok {
			return nil, apperrors.Validation("%s must be a string", field.Name)
		}
		if field.Required && s == "" {
			return nil, apperrors.Validation("%s must not be empty", field.Name)
		}
		return s, nil
	}
}

func isBlank(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	default:
		return false
	}
}

func toFloat64(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int64:
		return t, true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n, true
		}
	}
	f, ok := toFloat64(v)
	if !ok || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
