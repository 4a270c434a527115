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

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tomoncle/feedback"
	"github.com/tomoncle/feedback/apperrors"
	"github.com/tomoncle/feedback/types"
	"github.com/tomoncle/feedback/validation"
)

// FeedbackHandler serves the /feedback-events resource.
type FeedbackHandler struct {
	svc feedback.Service
}

func NewFeedbackHandler(svc feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

// ListFeedbackEvents handles GET /feedback-events. Non-integer page values
// fall back to the defaults.
func (h *FeedbackHandler) ListFeedbackEvents(c *gin.Context) {
	query := feedback.ListQuery{
		Filters:  make(map[string]string, len(validation.FilterColumns)),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", types.DefaultPageSize),
	}
	for _, col := range validation.FilterColumns {
		if v := c.Query(col); v != "" {
			query.Filters[col] = v
		}
	}

	result, err := h.svc.List(c.Request.Context(), query)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FeedbackHandler) GetFeedbackEvent(c *gin.Context) {
	event, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *FeedbackHandler) CreateFeedbackEvent(c *gin.Context) {
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	id, err := h.svc.Create(c.Request.Context(), payload)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"feedback_id": id, "message": "feedback event created"})
}

func (h *FeedbackHandler) UpdateFeedbackEvent(c *gin.Context) {
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	if err := h.svc.Update(c.Request.Context(), c.Param("id"), payload); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feedback event updated"})
}

func (h *FeedbackHandler) DeleteFeedbackEvent(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feedback event deleted"})
}

// Health reports store connectivity; failures are a 500 carrying the cause.
func (h *FeedbackHandler) Health(c *gin.Context) {
	if err := h.svc.Health(c.Request.Context()); err != nil {
		appErr := apperrors.From(err)
		detail := appErr.Detail
		if detail == "" {
			detail = appErr.Message
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "detail": detail})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": "feedback-events", "version": feedback.Version, "ok": true})
}

func Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": feedback.Version})
}

func bindPayload(c *gin.Context) (types.Payload, bool) {
	payload, err := types.DecodePayload(c.Request.Body)
	if err != nil {
		_ = c.Error(apperrors.Validation("request body must be a JSON object: %v", err))
		return nil, false
	}
	return payload, true
}

func queryInt(c *gin.Context, key string, def int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
