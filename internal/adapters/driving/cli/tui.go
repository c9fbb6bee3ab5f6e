package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/refeel-health/refeel-cli/internal/adapters/driving/tui"
	"github.com/refeel-health/refeel-cli/internal/core/domain"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [exam-id]",
	Short: "Launch the interactive mapper",
	Long: `Launch the interactive mapper for an exam.

Tap the stump model to place a point, press m and tap the full-limb model
to map it, then e to describe and s to save.

Controls:
  tab      - Switch between stump and full limb
  m        - Toggle mapping mode
  n, p     - Next / previous point
  e        - Describe the selected point
  s, S     - Save selected / save all
  d        - Delete the selected point
  u        - Unmap the selected point
  +, -     - Zoom
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if newLifecycle == nil {
		return fmt.Errorf("failed to create TUI: %w", tui.ErrMissingLifecycle)
	}

	var picker domain.PickerSettings
	if settingsService != nil {
		if s, err := settingsService.Get(); err == nil {
			picker = s.Picker
		}
	}

	modal := tui.NewModalConfirmer()
	app, err := tui.NewApp(&tui.Ports{
		Lifecycle: newLifecycle(modal),
		Meshes:    meshLoader,
		Confirmer: modal,
	}, tui.Options{ExamID: args[0], Picker: picker})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(commandContext(cmd))
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
