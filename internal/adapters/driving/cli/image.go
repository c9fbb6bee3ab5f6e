package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/core/ports/driving"
)

var imageOut string

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage point photos",
	Long:  `Attach, list, fetch and remove the photos of a point. A point holds at most 5 photos.`,
}

var imageAddCmd = &cobra.Command{
	Use:   "add [exam-id] [n] [file]",
	Short: "Attach a photo to a point",
	Args:  cobra.ExactArgs(3),
	RunE:  runImageAdd,
}

var imageListCmd = &cobra.Command{
	Use:   "list [exam-id] [n]",
	Short: "List a point's photos",
	Args:  cobra.ExactArgs(2),
	RunE:  runImageList,
}

var imageRmCmd = &cobra.Command{
	Use:   "rm [exam-id] [n] [url-or-index]",
	Short: "Remove a photo from a point",
	Long:  `Remove a photo by its URL or by its 1-based position in 'refeel image list'.`,
	Args:  cobra.ExactArgs(3),
	RunE:  runImageRm,
}

var imageGetCmd = &cobra.Command{
	Use:   "get [url]",
	Short: "Download a stored photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runImageGet,
}

func init() {
	imageGetCmd.Flags().StringVarP(&imageOut, "out", "o", "", "output file (required)")
	_ = imageGetCmd.MarkFlagRequired("out")

	imageCmd.AddCommand(imageAddCmd)
	imageCmd.AddCommand(imageListCmd)
	imageCmd.AddCommand(imageRmCmd)
	imageCmd.AddCommand(imageGetCmd)
	rootCmd.AddCommand(imageCmd)
}

func runImageAdd(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[2])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	ctx := commandContext(cmd)
	lc, index, err := openPoint(ctx, args)
	if err != nil {
		return err
	}
	defer lc.CloseExam()

	p, err := lc.AttachImage(ctx, index, data)
	if err != nil {
		return fmt.Errorf("failed to attach image: %w", err)
	}
	if _, err := lc.CommitAll(ctx); err != nil {
		return fmt.Errorf("failed to save point: %w", err)
	}
	cmd.Printf("Attached photo %d of %d to point %d\n", len(p.Images()), domain.MaxImagesPerPoint, index+1)
	return nil
}

func runImageList(cmd *cobra.Command, args []string) error {
	lc, index, err := openPoint(commandContext(cmd), args)
	if err != nil {
		return err
	}
	defer lc.CloseExam()

	p, _ := lc.Points().At(index)
	images := p.Images()
	if len(images) == 0 {
		cmd.Printf("Point %d has no photos.\n", index+1)
		return nil
	}
	for i, url := range images {
		cmd.Printf("  [%d] %s\n", i+1, url)
	}
	return nil
}

func runImageRm(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	lc, index, err := openPoint(ctx, args)
	if err != nil {
		return err
	}
	defer lc.CloseExam()

	url, err := resolveImage(lc, index, args[2])
	if err != nil {
		return err
	}
	if _, err := lc.RemoveImage(ctx, index, url); err != nil {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	if _, err := lc.CommitAll(ctx); err != nil {
		return fmt.Errorf("failed to save point: %w", err)
	}
	cmd.Printf("Removed photo from point %d\n", index+1)
	return nil
}

func runImageGet(cmd *cobra.Command, args []string) error {
	if gateway == nil {
		return errors.New("store not configured")
	}

	data, err := gateway.GetImage(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}
	if err := os.WriteFile(imageOut, data, 0o600); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	cmd.Printf("Wrote %d bytes to %s\n", len(data), imageOut)
	return nil
}

// resolveImage accepts a 1-based photo position or a URL of the point.
func resolveImage(lc driving.PointLifecycle, index int, ref string) (string, error) {
	p, _ := lc.Points().At(index)
	images := p.Images()
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(images) {
			return "", fmt.Errorf("%w: point %d has %d photos, no photo %d", domain.ErrNotFound, index+1, len(images), n)
		}
		return images[n-1], nil
	}
	return ref, nil
}
