package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
	Long:  `Show and change the settings stored in the configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long:  `Change a setting. Run 'refeel config keys' for the recognised keys.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the recognised setting keys",
	Args:  cobra.NoArgs,
	RunE:  runConfigKeys,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("Store:")
	cmd.Printf("  Backend: %s\n", s.Store.Backend.Description())
	cmd.Printf("  Data dir: %s\n", orDefault(s.Store.DataDir, "~/.refeel/data"))
	cmd.Printf("  Redis: %s\n", s.Store.RedisAddr)
	cmd.Printf("  HTTP: %s\n", orDefault(s.Store.BaseURL, "(not set)"))
	if s.Store.Token != "" {
		cmd.Println("  HTTP token: (set)")
	}
	cmd.Printf("  HTTP rate: %.1f req/s\n", s.Store.RequestsPerSecond)
	cmd.Println("Picker:")
	cmd.Printf("  Drag threshold: %.1f px\n", s.Picker.DragThresholdPx)
	cmd.Printf("  Tap max: %s\n", s.Picker.TapMaxDuration)
	cmd.Printf("  Select radius: %.3f\n", s.Picker.SelectRadius)
	cmd.Println("Models:")
	cmd.Printf("  Dir: %s\n", orDefault(s.ModelsDir, "(built-in)"))
	cmd.Println("Log:")
	cmd.Printf("  Level: %s\n", s.Log.Level)
	cmd.Printf("  Format: %s\n", s.Log.Format)

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("\nWarning: %v\n", err)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetValue(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	path := settingsService.ConfigPath()
	if path == "" {
		path = "(in memory)"
	}
	cmd.Println(path)
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
