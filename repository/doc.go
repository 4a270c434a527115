// Package repository persists feedback events through Bun. Statements are
// built from static column whitelists and bound values, and driver errors are
// classified into apperrors kinds.
package repository
