package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

// ExamInput selects one exam.
type ExamInput struct {
	ExamID string `json:"exam_id" jsonschema:"the exam identifier"`
}

// FindExamInput selects a patient's most recent exam.
type FindExamInput struct {
	PatientName string `json:"patient_name" jsonschema:"the patient's full name"`
	PatientID   string `json:"patient_id" jsonschema:"the patient identifier"`
}

// PatientInput selects a patient.
type PatientInput struct {
	PatientID string `json:"patient_id" jsonschema:"the patient identifier"`
}

// ExamOutput is the exam summary returned by the exam tools.
type ExamOutput struct {
	ID            string `json:"id"`
	PatientName   string `json:"patient_name"`
	PatientID     string `json:"patient_id"`
	Limb          string `json:"limb"`
	Location      string `json:"location"`
	TherapistName string `json:"therapist_name"`
	DeviceModel   string `json:"device_model"`
	DateTime      string `json:"date_time"`
}

// ExamListOutput is the output of list_patient_exams.
type ExamListOutput struct {
	Exams []ExamOutput `json:"exams"`
	Count int          `json:"count"`
}

// VectorOutput is a model-local position.
type VectorOutput struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PointOutput is one mapped sensation.
type PointOutput struct {
	Number            int           `json:"number"`
	ID                string        `json:"id"`
	StumpPosition     *VectorOutput `json:"stump_position,omitempty"`
	LimbPosition      *VectorOutput `json:"limb_position,omitempty"`
	StimulationType   string        `json:"stimulation_type,omitempty"`
	Program           string        `json:"program,omitempty"`
	Frequency         string        `json:"frequency,omitempty"`
	Sensation         string        `json:"sensation,omitempty"`
	DistanceFromStump string        `json:"distance_from_stump,omitempty"`
	Images            []string      `json:"images,omitempty"`
}

// PointListOutput is the output of list_points.
type PointListOutput struct {
	Points []PointOutput `json:"points"`
	Count  int           `json:"count"`
	Mapped int           `json:"mapped"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.srv, &mcp.Tool{
		Name:        "get_exam",
		Description: "Get an exam by ID",
	}, s.handleGetExam)

	mcp.AddTool(s.srv, &mcp.Tool{
		Name:        "find_exam",
		Description: "Find a patient's most recent exam by name and patient ID",
	}, s.handleFindExam)

	mcp.AddTool(s.srv, &mcp.Tool{
		Name:        "list_patient_exams",
		Description: "List all exams of a patient, most recent first",
	}, s.handleListPatientExams)

	mcp.AddTool(s.srv, &mcp.Tool{
		Name:        "list_points",
		Description: "List the mapped sensation points of an exam in order",
	}, s.handleListPoints)
}

func (s *Server) handleGetExam(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExamInput,
) (*mcp.CallToolResult, ExamOutput, error) {
	exam, err := s.ports.Exams.Get(ctx, input.ExamID)
	if err != nil {
		return nil, ExamOutput{}, err
	}
	return nil, toExamOutput(exam), nil
}

func (s *Server) handleFindExam(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindExamInput,
) (*mcp.CallToolResult, ExamOutput, error) {
	exam, err := s.ports.Exams.FindLatest(ctx, input.PatientName, input.PatientID)
	if err != nil {
		return nil, ExamOutput{}, err
	}
	return nil, toExamOutput(exam), nil
}

func (s *Server) handleListPatientExams(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PatientInput,
) (*mcp.CallToolResult, ExamListOutput, error) {
	exams, err := s.ports.Exams.ListForPatient(ctx, input.PatientID)
	if err != nil {
		return nil, ExamListOutput{}, err
	}
	output := ExamListOutput{Exams: make([]ExamOutput, len(exams)), Count: len(exams)}
	for i := range exams {
		output.Exams[i] = toExamOutput(exams[i])
	}
	return nil, output, nil
}

func (s *Server) handleListPoints(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExamInput,
) (*mcp.CallToolResult, PointListOutput, error) {
	points, err := s.ports.Exams.Points(ctx, input.ExamID)
	if err != nil {
		return nil, PointListOutput{}, err
	}
	return nil, toPointList(points), nil
}

func toExamOutput(e domain.Exam) ExamOutput {
	return ExamOutput{
		ID:            e.ID,
		PatientName:   e.PatientName,
		PatientID:     e.PatientID,
		Limb:          string(e.Limb),
		Location:      string(e.Location),
		TherapistName: e.TherapistName,
		DeviceModel:   e.DeviceModel,
		DateTime:      e.DateTime.Format(time.RFC3339),
	}
}

func toPointList(points []domain.Point) PointListOutput {
	output := PointListOutput{Points: make([]PointOutput, len(points)), Count: len(points)}
	for i, p := range points {
		if p.IsMapped() {
			output.Mapped++
		}
		output.Points[i] = PointOutput{
			Number:            i + 1,
			ID:                p.ID.String(),
			StumpPosition:     toVector(p.StumpPosition),
			LimbPosition:      toVector(p.LimbPosition),
			StimulationType:   p.StimulationType,
			Program:           p.Program,
			Frequency:         p.Frequency,
			Sensation:         p.Sensation,
			DistanceFromStump: p.DistanceFromStump,
			Images:            p.Images(),
		}
	}
	return output
}

func toVector(v *domain.Vec3) *VectorOutput {
	if v == nil {
		return nil
	}
	return &VectorOutput{X: v.X, Y: v.Y, Z: v.Z}
}
