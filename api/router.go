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
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tomoncle/feedback"
	"github.com/tomoncle/feedback/apperrors"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	EnableMetrics  bool
}

// NewRouter builds the gin engine serving svc.
func NewRouter(svc feedback.Service, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		RequestLogger(),
		Metrics(),
		CORS(opts.AllowedOrigins),
		ErrorHandler(),
	)

	h := NewFeedbackHandler(svc)

	r.GET("/", Root)
	r.GET("/version", Version)
	r.GET("/health", h.Health)
	if opts.EnableMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	events := r.Group("/feedback-events")
	{
		events.GET("", h.ListFeedbackEvents)
		events.POST("", h.CreateFeedbackEvent)
		events.GET("/:id", h.GetFeedbackEvent)
		events.PUT("/:id", h.UpdateFeedbackEvent)
		events.DELETE("/:id", h.DeleteFeedbackEvent)
	}

	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound("resource", c.Request.URL.Path))
	})
	return r
}
