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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/feedback/apperrors"
	"github.com/tomoncle/feedback/models"
)

func TestPrepareCreate(t *testing.T) {
	p := validPayload()
	p["item_id"] = "pl_joy_001"
	p["confidence"] = json.Number("0.85")
	p["latency_ms"] = json.Number("120")
	p["retries"] = json.Number("0")
	p["client_device"] = "web"
	p["supersedes_event_id"] = "6F9619FF-8B86-D011-B42D-00C04FC964FF"
	p["unknown"] = "dropped"

	event, err := PrepareCreate(p)
	require.NoError(t, err)

	assert.Empty(t, event.FeedbackID)
	assert.Equal(t, "sess_demo", event.SessionID)
	assert.Equal(t, "playlist", event.ItemType)
	assert.Equal(t, "like", event.Feedback)
	assert.Equal(t, "maintain", event.Intent)
	assert.Equal(t, "joy", event.Emotion)
	require.NotNil(t, event.ItemID)
	assert.Equal(t, "pl_joy_001", *event.ItemID)
	require.NotNil(t, event.Provider)
	assert.Equal(t, models.DefaultProvider, *event.Provider)
	require.NotNil(t, event.Confidence)
	assert.InDelta(t, 0.85, *event.Confidence, 1e-9)
	require.NotNil(t, event.LatencyMs)
	assert.Equal(t, int64(120), *event.LatencyMs)
	require.NotNil(t, event.Retries)
	assert.Equal(t, int64(0), *event.Retries)
	require.NotNil(t, event.SupersedesEventID)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", *event.SupersedesEventID)
	assert.Nil(t, event.Comment)
	assert.True(t, event.CreatedAt.IsZero())
}

func TestPrepareCreateKeepsSuppliedIdentifier(t *testing.T) {
	p := validPayload()
	p["feedback_id"] = "A0EEBC99-9C0B-4EF8-BB6D-6BB9BD380A11"

	event, err := PrepareCreate(p)
	require.NoError(t, err)
	assert.Equal(t, "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11", event.FeedbackID)

	p["feedback_id"] = "nope"
	_, err = PrepareCreate(p)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPrepareCreateExplicitNullProvider(t *testing.T) {
	p := validPayload()
	p["provider"] = nil

	event, err := PrepareCreate(p)
	require.NoError(t, err)
	assert.Nil(t, event.Provider)
}

func TestPrepareCreateRejects(t *testing.T) {
	cases := map[string]func(p map[string]interface{}){
		"missing session":      func(p map[string]interface{}) { delete(p, "session_id") },
		"bad enum":             func(p map[string]interface{}) { p["emotion"] = "fear" },
		"confidence too high":  func(p map[string]interface{}) { p["confidence"] = json.Number("1.5") },
		"confidence negative":  func(p map[string]interface{}) { p["confidence"] = json.Number("-0.1") },
		"confidence text":      func(p map[string]interface{}) { p["confidence"] = "high" },
		"fractional retries":   func(p map[string]interface{}) { p["retries"] = json.Number("1.5") },
		"non string item id":   func(p map[string]interface{}) { p["item_id"] = json.Number("7") },
		"bad supersedes id":    func(p map[string]interface{}) { p["supersedes_event_id"] = "xyz" },
		"non string identifer": func(p map[string]interface{}) { p["feedback_id"] = json.Number("12") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := validPayload()
			mutate(p)
			_, err := PrepareCreate(p)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestPrepareUpdate(t *testing.T) {
	updates, err := PrepareUpdate(map[string]interface{}{
		"feedback":    "dislike",
		"reason_code": "not_my_style",
		"comment":     nil,
		"latency_ms":  json.Number("3.0"),
		"feedback_id": "ignored",
		"created_at":  "ignored",
		"extra":       true,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"feedback":    "dislike",
		"reason_code": "not_my_style",
		"comment":     nil,
		"latency_ms":  int64(3),
	}, updates)
}

func TestPrepareUpdateRejects(t *testing.T) {
	_, err := PrepareUpdate(map[string]interface{}{})
	assert.EqualError(t, err, "VALIDATION_ERROR: no valid fields to update")

	_, err = PrepareUpdate(map[string]interface{}{"unknown": 1, "created_at": "x"})
	assert.EqualError(t, err, "VALIDATION_ERROR: no valid fields to update")

	_, err = PrepareUpdate(map[string]interface{}{"intent": "stay"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = PrepareUpdate(map[string]interface{}{"confidence": json.Number("2")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = PrepareUpdate(map[string]interface{}{"session_id": nil})
	assert.EqualError(t, err, "VALIDATION_ERROR: session_id must not be null")

	_, err = PrepareUpdate(map[string]interface{}{"session_id": ""})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPrepareUpdateConfidenceBounds(t *testing.T) {
	for _, v := range []string{"0", "0.0", "0.85", "1", "1.0"} {
		updates, err := PrepareUpdate(map[string]interface{}{"confidence": json.Number(v)})
		require.NoError(t, err, v)
		assert.IsType(t, float64(0), updates["confidence"])
	}
}
