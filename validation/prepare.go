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
	"github.com/tomoncle/feedback/apperrors"
	"github.com/tomoncle/feedback/models"
	"github.com/tomoncle/feedback/types"
)

// PrepareCreate validates a create payload and builds the row to insert.
// feedback_id is left empty when the payload does not carry one; the
// repository assigns it.
func PrepareCreate(payload types.Payload) (*models.FeedbackEvent, error) {
	if err := ValidateRequired(payload); err != nil {
		return nil, err
	}
	if err := ValidateEnumFields(payload); err != nil {
		return nil, err
	}
	if err := ValidateConfidence(payload["confidence"]); err != nil {
		return nil, err
	}

	event := &models.FeedbackEvent{}
	if raw, ok := payload["feedback_id"]; ok && !isBlank(raw) {
		s, isString := raw.(string)
		if !isString {
			return nil, apperrors.Validation("feedback_id must be a valid UUID string")
		}
		id, err := NormalizeIdentifier(s)
		if err != nil {
			return nil, err
		}
		event.FeedbackID = id
	}

	for _, field := range mutableFields {
		raw, ok := payload[field.Name]
		if !ok {
			continue
		}
		v, err := coerce(field, raw)
		if err != nil {
			return nil, err
		}
		assign(event, field.Name, v)
	}
	if !payload.Has("provider") {
		provider := models.DefaultProvider
		event.Provider = &provider
	}
	return event, nil
}

// PrepareUpdate filters payload down to the mutable whitelist, validates it
// and returns column -> value for a single UPDATE statement.
func PrepareUpdate(payload types.Payload) (map[string]interface{}, error) {
	selected := SelectUpdatableFields(payload)
	if len(selected) == 0 {
		return nil, apperrors.Validation("no valid fields to update")
	}
	if err := ValidateEnumFields(selected); err != nil {
		return nil, err
	}
	if selected.Has("confidence") {
		if err := ValidateConfidence(selected["confidence"]); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{}, len(selected))
	for name, raw := range selected {
		v, err := coerce(mutableIndex[name], raw)
		if err != nil {
			return nil, err
		}
		updates[name] = v
	}
	return updates, nil
}

func assign(e *models.FeedbackEvent, name string, v interface{}) {
	switch name {
	case "session_id":
		e.SessionID = v.(string)
	case "item_type":
		e.ItemType = v.(string)
	case "feedback":
		e.Feedback = v.(string)
	case "intent":
		e.Intent = v.(string)
	case "emotion":
		e.Emotion = v.(string)
	case "item_id":
		e.ItemID = stringPtr(v)
	case "provider":
		e.Provider = stringPtr(v)
	case "provider_playlist_id":
		e.ProviderPlaylistID = stringPtr(v)
	case "reason_code":
		e.ReasonCode = stringPtr(v)
	case "comment":
		e.Comment = stringPtr(v)
	case "client_device":
		e.ClientDevice = stringPtr(v)
	case "client_version":
		e.ClientVersion = stringPtr(v)
	case "trace_id":
		e.TraceID = stringPtr(v)
	case "supersedes_event_id":
		e.SupersedesEventID = stringPtr(v)
	case "confidence":
		if f, ok := v.(float64); ok {
			e.Confidence = &f
		}
	case "latency_ms":
		e.LatencyMs = int64Ptr(v)
	case "retries":
		e.Retries = int64Ptr(v)
	}
}

func stringPtr(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func int64Ptr(v interface{}) *int64 {
	n, ok := v.(int64)
	if !ok {
		return nil
	}
	return &n
}
