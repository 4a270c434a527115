// Package api exposes the feedback service over HTTP with gin: the
// /feedback-events resource, health and version endpoints, Prometheus
// metrics, request logging, CORS, and uniform error rendering.
package api
