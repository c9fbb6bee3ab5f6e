package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

// examDateLayout is the accepted --date format besides RFC 3339.
const examDateLayout = "2006-01-02 15:04"

var examFlags struct {
	patientName string
	patientID   string
	limb        string
	location    string
	therapist   string
	device      string
	date        string
}

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Manage exams",
	Long:  `Create, find, inspect and edit mapping exams.`,
}

var examNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an exam",
	Long: `Create an exam for a patient.

Limbs: leg-right, leg-left, arm-right, arm-left
Locations: above-knee, below-knee, above-elbow, below-elbow`,
	Args: cobra.NoArgs,
	RunE: runExamNew,
}

var examLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Find a patient's most recent exam",
	Args:  cobra.NoArgs,
	RunE:  runExamLoad,
}

var examListCmd = &cobra.Command{
	Use:   "list [patient-id]",
	Short: "List a patient's exams",
	Args:  cobra.ExactArgs(1),
	RunE:  runExamList,
}

var examShowCmd = &cobra.Command{
	Use:   "show [exam-id]",
	Short: "Show an exam and its points",
	Args:  cobra.ExactArgs(1),
	RunE:  runExamShow,
}

var examEditCmd = &cobra.Command{
	Use:   "edit [exam-id]",
	Short: "Edit exam details",
	Long: `Edit exam details. Only the flags given are changed.

Changing the limb or the location deletes every point of the exam, because
their positions belong to the old model. You are asked to confirm first.`,
	Args: cobra.ExactArgs(1),
	RunE: runExamEdit,
}

func init() {
	for _, c := range []*cobra.Command{examNewCmd, examEditCmd} {
		c.Flags().StringVar(&examFlags.patientName, "patient-name", "", "patient full name")
		c.Flags().StringVar(&examFlags.patientID, "patient-id", "", "patient identifier")
		c.Flags().StringVar(&examFlags.limb, "limb", "", "affected limb")
		c.Flags().StringVar(&examFlags.location, "location", "", "amputation level")
		c.Flags().StringVar(&examFlags.therapist, "therapist", "", "therapist name")
		c.Flags().StringVar(&examFlags.device, "device", "", "stimulation device model")
		c.Flags().StringVar(&examFlags.date, "date", "", `exam date, "YYYY-MM-DD HH:MM" or RFC 3339 (default now)`)
	}
	examLoadCmd.Flags().StringVar(&examFlags.patientName, "patient-name", "", "patient full name")
	examLoadCmd.Flags().StringVar(&examFlags.patientID, "patient-id", "", "patient identifier")

	examCmd.AddCommand(examNewCmd)
	examCmd.AddCommand(examLoadCmd)
	examCmd.AddCommand(examListCmd)
	examCmd.AddCommand(examShowCmd)
	examCmd.AddCommand(examEditCmd)
	rootCmd.AddCommand(examCmd)
}

func runExamNew(cmd *cobra.Command, _ []string) error {
	if examService == nil {
		return errors.New("exam service not configured")
	}

	date, err := parseExamDate(examFlags.date)
	if err != nil {
		return err
	}
	exam, err := examService.Create(commandContext(cmd), domain.Exam{
		PatientName:   examFlags.patientName,
		PatientID:     examFlags.patientID,
		Limb:          domain.Limb(examFlags.limb),
		Location:      domain.Location(examFlags.location),
		TherapistName: examFlags.therapist,
		DeviceModel:   examFlags.device,
		DateTime:      date,
	})
	if err != nil {
		return fmt.Errorf("failed to create exam: %w", err)
	}

	cmd.Printf("Created exam %s\n\n", exam.ID)
	printExam(cmd, exam)
	return nil
}

func runExamLoad(cmd *cobra.Command, _ []string) error {
	if examService == nil {
		return errors.New("exam service not configured")
	}

	exam, err := examService.FindLatest(commandContext(cmd), examFlags.patientName, examFlags.patientID)
	if err != nil {
		return fmt.Errorf("failed to find exam: %w", err)
	}
	printExam(cmd, exam)
	return nil
}

func runExamList(cmd *cobra.Command, args []string) error {
	if examService == nil {
		return errors.New("exam service not configured")
	}

	exams, err := examService.ListForPatient(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to list exams: %w", err)
	}
	if len(exams) == 0 {
		cmd.Printf("No exams found for patient: %s\n", args[0])
		return nil
	}

	cmd.Printf("Exams for patient %s:\n\n", args[0])
	for _, e := range exams {
		cmd.Printf("  %s  %s  %s, %s\n", e.ID, e.DateTime.Format(examDateLayout),
			e.Limb.Description(), e.Location.Description())
	}
	cmd.Printf("\nTotal: %d exams\n", len(exams))
	return nil
}

func runExamShow(cmd *cobra.Command, args []string) error {
	if examService == nil {
		return errors.New("exam service not configured")
	}

	ctx := commandContext(cmd)
	exam, err := examService.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get exam: %w", err)
	}
	points, err := examService.Points(ctx, exam.ID)
	if err != nil {
		return fmt.Errorf("failed to list points: %w", err)
	}

	printExam(cmd, exam)
	cmd.Println()
	printPoints(cmd, points)
	return nil
}

func runExamEdit(cmd *cobra.Command, args []string) error {
	lc, exam, err := openSession(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	defer lc.CloseExam()

	next := exam
	flags := cmd.Flags()
	if flags.Changed("patient-name") {
		next.PatientName = strings.TrimSpace(examFlags.patientName)
	}
	if flags.Changed("patient-id") {
		next.PatientID = strings.TrimSpace(examFlags.patientID)
	}
	if flags.Changed("limb") {
		next.Limb = domain.Limb(examFlags.limb)
	}
	if flags.Changed("location") {
		next.Location = domain.Location(examFlags.location)
	}
	if flags.Changed("therapist") {
		next.TherapistName = strings.TrimSpace(examFlags.therapist)
	}
	if flags.Changed("device") {
		next.DeviceModel = examFlags.device
	}
	if flags.Changed("date") {
		if next.DateTime, err = parseExamDate(examFlags.date); err != nil {
			return err
		}
	}

	deleted, err := lc.UpdateExam(commandContext(cmd), next)
	if errors.Is(err, domain.ErrCancelled) {
		cmd.Println("Exam left unchanged.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update exam: %w", err)
	}

	if deleted > 0 {
		cmd.Printf("Deleted %d points mapped on the previous model.\n", deleted)
	}
	cmd.Printf("Updated exam %s\n", exam.ID)
	return nil
}

// parseExamDate accepts the short layout or RFC 3339. Empty means unset.
func parseExamDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(examDateLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", domain.ErrInvalidInput, s)
	}
	return t, nil
}

func printExam(cmd *cobra.Command, e domain.Exam) {
	cmd.Printf("Exam: %s\n", e.ID)
	cmd.Printf("  Patient: %s (%s)\n", e.PatientName, e.PatientID)
	cmd.Printf("  Limb: %s, %s\n", e.Limb.Description(), e.Location.Description())
	cmd.Printf("  Therapist: %s\n", e.TherapistName)
	cmd.Printf("  Device: %s\n", e.DeviceModel)
	cmd.Printf("  Date: %s\n", e.DateTime.Format(examDateLayout))
}
