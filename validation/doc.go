// Package validation checks and normalizes feedback event payloads before
// they reach the repository: enum domains, confidence range, identifier
// format, required fields, and the static whitelist of mutable columns.
package validation
