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

// Package models holds the bun table models.
package models

import (
	"time"

	"github.com/tomoncle/feedback/database"
	"github.com/tomoncle/feedback/types"
	"github.com/uptrace/bun"
)

const (
	FeedbackEventTable = "feedback_events"
	DefaultProvider    = "spotify"
)

// Enum domains of FeedbackEvent.
var (
	ItemTypes    = types.NewEnumDomain("item_type", "playlist", "track")
	FeedbackKind = types.NewEnumDomain("feedback", "like", "dislike", "skip", "save", "share", "undo")
	Intents      = types.NewEnumDomain("intent", "maintain", "change")
	Emotions     = types.NewEnumDomain("emotion", "joy", "sadness", "anger")
)

// EnumDomains lists every enum-constrained column.
var EnumDomains = []types.EnumDomain{ItemTypes, FeedbackKind, Intents, Emotions}

// FeedbackEvent is one user reaction to a recommended playlist or track.
type FeedbackEvent struct {
	bun.BaseModel `bun:"table:feedback_events,alias:fe"`

	FeedbackID         string    `bun:"feedback_id,pk,type:varchar(36)" json:"feedback_id"`
	SessionID          string    `bun:"session_id,notnull,type:varchar(128)" json:"session_id"`
	ItemType           string    `bun:"item_type,notnull,type:varchar(16)" json:"item_type"`
	ItemID             *string   `bun:"item_id,type:varchar(128)" json:"item_id"`
	Provider           *string   `bun:"provider,type:varchar(32)" json:"provider"`
	ProviderPlaylistID *string   `bun:"provider_playlist_id,type:varchar(128)" json:"provider_playlist_id"`
	Feedback           string    `bun:"feedback,notnull,type:varchar(16)" json:"feedback"`
	ReasonCode         *string   `bun:"reason_code,type:varchar(64)" json:"reason_code"`
	Comment            *string   `bun:"comment,type:text" json:"comment"`
	Intent             string    `bun:"intent,notnull,type:varchar(16)" json:"intent"`
	Emotion            string    `bun:"emotion,notnull,type:varchar(16)" json:"emotion"`
	Confidence         *float64  `bun:"confidence" json:"confidence"`
	LatencyMs          *int64    `bun:"latency_ms" json:"latency_ms"`
	Retries            *int64    `bun:"retries" json:"retries"`
	ClientDevice       *string   `bun:"client_device,type:varchar(64)" json:"client_device"`
	ClientVersion      *string   `bun:"client_version,type:varchar(64)" json:"client_version"`
	TraceID            *string   `bun:"trace_id,type:varchar(128)" json:"trace_id"`
	SupersedesEventID  *string   `bun:"supersedes_event_id,type:varchar(36)" json:"supersedes_event_id"`
	CreatedAt          time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

func init() {
	database.RegisteredModel(database.NewModelAdapter((*FeedbackEvent)(nil), 10))
	database.RegisteredIndex(database.IndexDefinition{
		Model:   (*FeedbackEvent)(nil),
		Name:    "idx_feedback_events_session_created",
		Columns: []string{"session_id", "created_at"},
	})
}
