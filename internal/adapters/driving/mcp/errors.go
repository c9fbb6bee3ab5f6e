// Package mcp provides an MCP (Model Context Protocol) server adapter for refeel.
// It gives assistants read-only access to exams and their mapped points.
package mcp

import "errors"

// ErrMissingExamService is returned when the exam service is not provided.
var ErrMissingExamService = errors.New("mcp: exam service is required")
