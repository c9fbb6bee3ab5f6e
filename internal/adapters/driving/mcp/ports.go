package mcp

import (
	"github.com/refeel-health/refeel-cli/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Exams reads exams and their stored points.
	Exams driving.ExamService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Exams == nil {
		return ErrMissingExamService
	}
	return nil
}
