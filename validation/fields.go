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
	"github.com/tomoncle/feedback/models"
	"github.com/tomoncle/feedback/types"
)

// FieldKind describes how a payload value is normalized for its column.
type FieldKind int

const (
	KindString FieldKind = iota
	KindEnum
	KindInteger
	KindFloat
	KindIdentifier
)

// Field maps a payload key to a fixed column.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	Enum     types.EnumDomain
}

// mutableFields is the static whitelist of updatable columns, in table order.
// feedback_id and created_at are deliberately absent.
var mutableFields = []Field{
	{Name: "session_id", Kind: KindString, Required: true},
	{Name: "item_type", Kind: KindEnum, Required: true, Enum: models.ItemTypes},
	{Name: "item_id", Kind: KindString},
	{Name: "provider", Kind: KindString},
	{Name: "provider_playlist_id", Kind: KindString},
	{Name: "feedback", Kind: KindEnum, Required: true, Enum: models.FeedbackKind},
	{Name: "reason_code", Kind: KindString},
	{Name: "comment", Kind: KindString},
	{Name: "intent", Kind: KindEnum, Required: true, Enum: models.Intents},
	{Name: "emotion", Kind: KindEnum, Required: true, Enum: models.Emotions},
	{Name: "confidence", Kind: KindFloat},
	{Name: "latency_ms", Kind: KindInteger},
	{Name: "retries", Kind: KindInteger},
	{Name: "client_device", Kind: KindString},
	{Name: "client_version", Kind: KindString},
	{Name: "trace_id", Kind: KindString},
	{Name: "supersedes_event_id", Kind: KindIdentifier},
}

var mutableIndex = func() map[string]Field {
	m := make(map[string]Field, len(mutableFields))
	for _, f := range mutableFields {
		m[f.Name] = f
	}
	return m
}()

// FilterColumns are the columns a list request may match on.
var FilterColumns = []string{"session_id", "item_type", "feedback", "intent", "emotion"}

// RequiredOnCreate are the fields a create payload must carry.
var RequiredOnCreate = []string{"session_id", "item_type", "feedback", "intent", "emotion"}

// MutableField looks up a whitelisted column by name.
func MutableField(name string) (Field, bool) {
	f, ok := mutableIndex[name]
	return f, ok
}

func enumDomain(name string) (types.EnumDomain, bool) {
	for _, d := range models.EnumDomains {
		if d.Field() == name {
			return d, true
		}
	}
	return types.EnumDomain{}, false
}
