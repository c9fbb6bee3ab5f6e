package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for refeel resources.
	uriScheme = "refeel://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.srv.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "patients/{patientId}/exams",
		Name:        "patient-exams",
		Description: "Exams recorded for a patient, most recent first",
		MIMEType:    "application/json",
	}, s.handlePatientExamsResource)

	s.srv.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "exams/{examId}/points",
		Name:        "exam-points",
		Description: "Mapped sensation points of an exam",
		MIMEType:    "application/json",
	}, s.handlePointsResource)
}

// handlePatientExamsResource returns a patient's exams.
func (s *Server) handlePatientExamsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	patientID := extractPatientID(req.Params.URI)
	if patientID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	exams, err := s.ports.Exams.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("listing exams: %w", err)
	}

	infos := make([]ExamOutput, len(exams))
	for i := range exams {
		infos[i] = toExamOutput(exams[i])
	}
	return jsonResult(req.Params.URI, infos)
}

// handlePointsResource returns the points of an exam.
func (s *Server) handlePointsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	examID := extractExamID(req.Params.URI)
	if examID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	points, err := s.ports.Exams.Points(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("listing points: %w", err)
	}
	return jsonResult(req.Params.URI, toPointList(points).Points)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractPatientID extracts the patient ID from refeel://patients/{patientId}/exams.
func extractPatientID(uri string) string {
	return between(uri, uriScheme+"patients/", "/exams")
}

// extractExamID extracts the exam ID from refeel://exams/{examId}/points.
func extractExamID(uri string) string {
	return between(uri, uriScheme+"exams/", "/points")
}

func between(uri, prefix, suffix string) string {
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}
	id := strings.TrimSuffix(uri, suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
