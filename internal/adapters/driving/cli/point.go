package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driving"
)

var pointFlags struct {
	stump       string
	limb        string
	stimulation string
	program     string
	frequency   string
	sensation   string
	distance    string
}

var pointCmd = &cobra.Command{
	Use:   "point",
	Short: "Manage the points of an exam",
	Long: `Add, describe, map and delete points. Points are numbered from 1 in
the order shown by 'refeel point list'.`,
}

var pointListCmd = &cobra.Command{
	Use:   "list [exam-id]",
	Short: "List the points of an exam",
	Args:  cobra.ExactArgs(1),
	RunE:  runPointList,
}

var pointAddCmd = &cobra.Command{
	Use:   "add [exam-id]",
	Short: "Add and save a point",
	Long: `Add a point at a stump position and save it. Positions are model-local
coordinates written as x,y,z.`,
	Args: cobra.ExactArgs(1),
	RunE: runPointAdd,
}

var pointDescribeCmd = &cobra.Command{
	Use:   "describe [exam-id] [n]",
	Short: "Edit a point's clinical description",
	Args:  cobra.ExactArgs(2),
	RunE:  runPointDescribe,
}

var pointMapCmd = &cobra.Command{
	Use:   "map [exam-id] [n]",
	Short: "Place a point on the full-limb model",
	Long:  `Place a point on the full-limb model. A mapped point must be unmapped first.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runPointMap,
}

var pointUnmapCmd = &cobra.Command{
	Use:   "unmap [exam-id] [n]",
	Short: "Clear a point's full-limb position",
	Args:  cobra.ExactArgs(2),
	RunE:  runPointUnmap,
}

var pointDeleteCmd = &cobra.Command{
	Use:   "delete [exam-id] [n]",
	Short: "Delete a point and its photos",
	Args:  cobra.ExactArgs(2),
	RunE:  runPointDelete,
}

func init() {
	describeFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&pointFlags.stimulation, "stimulation", "", "stimulation type")
		c.Flags().StringVar(&pointFlags.program, "program", "", "device program")
		c.Flags().StringVar(&pointFlags.frequency, "frequency", "", "stimulation frequency")
		c.Flags().StringVar(&pointFlags.sensation, "sensation", "", "reported sensation")
		c.Flags().StringVar(&pointFlags.distance, "distance", "", "distance from the stump")
	}

	pointAddCmd.Flags().StringVar(&pointFlags.stump, "stump", "", "stump position x,y,z (required)")
	pointAddCmd.Flags().StringVar(&pointFlags.limb, "limb", "", "full-limb position x,y,z")
	_ = pointAddCmd.MarkFlagRequired("stump")
	describeFlags(pointAddCmd)
	describeFlags(pointDescribeCmd)
	pointMapCmd.Flags().StringVar(&pointFlags.limb, "limb", "", "full-limb position x,y,z (required)")
	_ = pointMapCmd.MarkFlagRequired("limb")

	pointCmd.AddCommand(pointListCmd)
	pointCmd.AddCommand(pointAddCmd)
	pointCmd.AddCommand(pointDescribeCmd)
	pointCmd.AddCommand(pointMapCmd)
	pointCmd.AddCommand(pointUnmapCmd)
	pointCmd.AddCommand(pointDeleteCmd)
	rootCmd.AddCommand(pointCmd)
}

func runPointList(cmd *cobra.Command, args []string) error {
	if examService == nil {
		return errors.New("exam service not configured")
	}

	points, err := examService.Points(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to list points: %w", err)
	}
	printPoints(cmd, points)
	return nil
}

func runPointAdd(cmd *cobra.Command, args []string) error {
	stump, err := parseVec3(pointFlags.stump)
	if err != nil {
		return err
	}
	var limb *domain.Vec3
	if pointFlags.limb != "" {
		v, err := parseVec3(pointFlags.limb)
		if err != nil {
			return err
		}
		limb = &v
	}

	ctx := commandContext(cmd)
	lc, _, err := openSession(ctx, args[0])
	if err != nil {
		return err
	}
	defer lc.CloseExam()

	p, err := lc.HandleStumpPick(stump)
	if err != nil {
		return fmt.Errorf("failed to add point: %w", err)
	}
	index := p.Order - 1
	if limb != nil {
		if err := lc.SetMappingMode(true); err != nil {
			return err
		}
		if _, err := lc.HandleLimbPick(*limb); err != nil {
			return fmt.Errorf("failed to map point: %w", err)
		}
	}
	if _, err := lc.UpdateDescription(index, applyDescription(cmd, domain.Description{})); err != nil {
		return fmt.Errorf("failed to describe point: %w", err)
	}

	saved, err := lc.CommitSelected(ctx)
	if err != nil {
		return fmt.Errorf("failed to save point: %w", err)
	}
	cmd.Printf("Saved point %d (%s)\n", saved.Order, saved.ID)
	return nil
}

func runPointDescribe(cmd *cobra.Command, args []string) error {
	return editPoint(cmd, args, func(lc driving.PointLifecycle, index int, p domain.Point) error {
		_, err := lc.UpdateDescription(index, applyDescription(cmd, p.Description()))
		return err
	}, "Described point %d\n")
}

func runPointMap(cmd *cobra.Command, args []string) error {
	pos, err := parseVec3(pointFlags.limb)
	if err != nil {
		return err
	}
	return editPoint(cmd, args, func(lc driving.PointLifecycle, index int, _ domain.Point) error {
		if err := lc.Select(index); err != nil {
			return err
		}
		if err := lc.SetMappingMode(true); err != nil {
			return err
		}
		placed, err := lc.HandleLimbPick(pos)
		if err != nil {
			return err
		}
		if !placed {
			return fmt.Errorf("%w: point %d is already mapped, unmap it first", domain.ErrInvalidInput, index+1)
		}
		return nil
	}, "Mapped point %d\n")
}

func runPointUnmap(cmd *cobra.Command, args []string) error {
	return editPoint(cmd, args, func(lc driving.PointLifecycle, index int, _ domain.Point) error {
		return lc.UnmapLimb(index)
	}, "Unmapped point %d\n")
}

func runPointDelete(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	lc, index, err := openPoint(ctx, args)
	if err != nil {
		return err
	}
	defer lc.CloseExam()

	orphaned, err := lc.DeletePoint(ctx, index)
	if errors.Is(err, domain.ErrCancelled) {
		cmd.Println("Point kept.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete point: %w", err)
	}
	for _, url := range orphaned {
		cmd.Printf("Warning: photo %s could not be removed from the store\n", url)
	}
	// Later points moved up one place; store their new order.
	if _, err := lc.CommitAll(ctx); err != nil {
		return fmt.Errorf("failed to save point order: %w", err)
	}
	cmd.Printf("Deleted point %d\n", index+1)
	return nil
}

// editPoint opens the exam, applies edit to point n and saves all changes.
func editPoint(
	cmd *cobra.Command, args []string,
	edit func(lc driving.PointLifecycle, index int, p domain.Point) error,
	done string,
) error {
	ctx := commandContext(cmd)
	lc, index, err := openPoint(ctx, args)
	if err != nil {
		return err
	}
	defer lc.CloseExam()

	p, _ := lc.Points().At(index)
	if err := edit(lc, index, p); err != nil {
		return fmt.Errorf("failed to edit point %d: %w", index+1, err)
	}
	if _, err := lc.CommitAll(ctx); err != nil {
		return fmt.Errorf("failed to save point %d: %w", index+1, err)
	}
	cmd.Printf(done, index+1)
	return nil
}

// openPoint opens args[0] and resolves the 1-based point number args[1].
func openPoint(ctx context.Context, args []string) (driving.PointLifecycle, int, error) {
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return nil, 0, fmt.Errorf("%w: point number %q", domain.ErrInvalidInput, args[1])
	}
	lc, _, err := openSession(ctx, args[0])
	if err != nil {
		return nil, 0, err
	}
	if n > lc.Points().Len() {
		lc.CloseExam()
		return nil, 0, fmt.Errorf("%w: exam has %d points, no point %d", domain.ErrNotFound, lc.Points().Len(), n)
	}
	return lc, n - 1, nil
}

// applyDescription overlays the description flags that were given on d.
func applyDescription(cmd *cobra.Command, d domain.Description) domain.Description {
	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = strings.TrimSpace(v)
		}
	}
	set("stimulation", &d.StimulationType, pointFlags.stimulation)
	set("program", &d.Program, pointFlags.program)
	set("frequency", &d.Frequency, pointFlags.frequency)
	set("sensation", &d.Sensation, pointFlags.sensation)
	set("distance", &d.DistanceFromStump, pointFlags.distance)
	return d
}

// parseVec3 reads "x,y,z".
func parseVec3(s string) (domain.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return domain.Vec3{}, fmt.Errorf("%w: position %q, want x,y,z", domain.ErrInvalidInput, s)
	}
	var xyz [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return domain.Vec3{}, fmt.Errorf("%w: position %q, want x,y,z", domain.ErrInvalidInput, s)
		}
		xyz[i] = f
	}
	return domain.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

func printPoints(cmd *cobra.Command, points []domain.Point) {
	if len(points) == 0 {
		cmd.Println("No points.")
		return
	}

	cmd.Println("Points:")
	for i, p := range points {
		cmd.Printf("  [%d] %s\n", i+1, p.ID)
		cmd.Printf("    Stump: %s\n", formatVec(p.StumpPosition))
		cmd.Printf("    Limb: %s\n", formatVec(p.LimbPosition))
		d := p.Description()
		if d != (domain.Description{}) {
			cmd.Printf("    Stimulation: %s  Program: %s  Frequency: %s\n", d.StimulationType, d.Program, d.Frequency)
			cmd.Printf("    Sensation: %s  Distance: %s\n", d.Sensation, d.DistanceFromStump)
		}
		if images := p.Images(); len(images) > 0 {
			cmd.Printf("    Photos: %d\n", len(images))
		}
	}
	cmd.Printf("\nTotal: %d points\n", len(points))
}

func formatVec(v *domain.Vec3) string {
	if v == nil {
		return "(not mapped)"
	}
	return fmt.Sprintf("%.3f, %.3f, %.3f", v.X, v.Y, v.Z)
}
