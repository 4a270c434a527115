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
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/feedback/apperrors"
	"github.com/tomoncle/feedback/utils"
)

var log = utils.NewLogger("HTTP")

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

// ErrorHandler renders the last error attached to the context. Server-side
// failures are logged with their diagnostic detail, which is not sent to
// the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := apperrors.From(c.Errors.Last().Err)
		status := appErr.HTTPStatus()
		if status >= http.StatusInternalServerError {
			log.WithFields(logrus.Fields{
				"req_uri":    c.Request.URL.Path,
				"req_method": c.Request.Method,
				"error_type": string(appErr.Kind),
				"detail":     appErr.Detail,
			}).Error(appErr.Message)
		}
		c.AbortWithStatusJSON(status, ErrorResponse{Error: appErr.Message, Type: string(appErr.Kind)})
	}
}

// RequestLogger logs one entry per request with the fields promoted by the
// JSON log formatter.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"req_uri":      c.Request.URL.RequestURI(),
			"req_method":   c.Request.Method,
			"client_ip":    c.ClientIP(),
			"status_code":  status,
			"latency_time": utils.ElapsedString(time.Since(start)),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request completed")
		}
	}
}

// CORS allows every origin when origins is empty or contains "*".
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || containsOrigin(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func containsOrigin(origins []string, origin string) bool {
	for _, o := range origins {
		if o == origin {
			return true
		}
	}
	return false
}
