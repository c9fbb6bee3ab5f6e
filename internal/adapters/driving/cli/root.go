// Package cli provides the cobra command tree of the refeel binary.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/refeel-health/refeel-cli/internal/adapters/driven/confirm"
	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui"
	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driven"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driving"
	"github.com/refeel-health/refeel-cli/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services bundles what the commands drive.
type Services struct {
	Exams    driving.ExamService
	Settings driving.SettingsService

	// Gateway backs the store server and raw image downloads.
	Gateway driven.PersistenceGateway

	// Meshes loads model files for the TUI.
	Meshes tui.MeshLoader

	// Confirmer answers destructive prompts outside the TUI.
	Confirmer driven.Confirmer

	// NewLifecycle builds a point lifecycle bound to a confirmer.
	NewLifecycle func(driven.Confirmer) driving.PointLifecycle
}

var (
	examService     driving.ExamService
	settingsService driving.SettingsService
	gateway         driven.PersistenceGateway
	meshLoader      tui.MeshLoader
	confirmer       driven.Confirmer
	newLifecycle    func(driven.Confirmer) driving.PointLifecycle
)

var (
	verbose   bool
	assumeYes bool
)

var rootCmd = &cobra.Command{
	Use:   "refeel",
	Short: "Map phantom limb sensations onto 3D models",
	Long: `refeel records where electrical stimulation of a residual limb is felt
on the phantom limb. Points placed on the stump model are mapped onto the
full-limb model, described and saved per exam.

Run 'refeel tui <exam-id>' for the interactive mapper, or use the exam,
point and image commands for scripted edits.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation")
}

// SetVersion sets the version reported by 'refeel version'.
func SetVersion(v string) {
	version = v
}

// SetServices injects the services the commands use.
func SetServices(s Services) {
	examService = s.Exams
	settingsService = s.Settings
	gateway = s.Gateway
	meshLoader = s.Meshes
	confirmer = s.Confirmer
	newLifecycle = s.NewLifecycle
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// openSession loads an exam into a fresh lifecycle for one command.
func openSession(ctx context.Context, examID string) (driving.PointLifecycle, domain.Exam, error) {
	if newLifecycle == nil {
		return nil, domain.Exam{}, errors.New("point lifecycle not configured")
	}
	var c driven.Confirmer = confirmer
	if assumeYes {
		c = confirm.Auto{Answer: true}
	}
	lc := newLifecycle(c)
	exam, err := lc.LoadExam(ctx, examID)
	if err != nil {
		return nil, domain.Exam{}, fmt.Errorf("failed to open exam: %w", err)
	}
	return lc, exam, nil
}

// commandContext returns the command's context or a background one when
// the command runs outside ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
