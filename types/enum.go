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

package types

import (
	"sort"
	"strings"
)

// BaseEnum represents a closed set of permitted string values for a field.
type BaseEnum interface {
	Field() string
	Contains(value string) bool
	Values() []string
}

// EnumDomain is the default BaseEnum implementation.
type EnumDomain struct {
	field  string
	values []string
}

// NewEnumDomain builds a domain for field; values are kept sorted.
func NewEnumDomain(field string, values ...string) EnumDomain {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	return EnumDomain{field: field, values: sorted}
}

func (d EnumDomain) Field() string { return d.field }

func (d EnumDomain) Contains(value string) bool {
	i := sort.SearchStrings(d.values, value)
	return i < len(d.values) && d.values[i] == value
}

// Values returns a copy of the sorted domain.
func (d EnumDomain) Values() []string {
	out := make([]string, len(d.values))
	copy(out, d.values)
	return out
}

// OneOf renders the domain as a validator "oneof" parameter list.
func (d EnumDomain) OneOf() string {
	return strings.Join(d.values, " ")
}

var _ BaseEnum = EnumDomain{}
