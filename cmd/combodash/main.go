// Package main provides the CLI entrypoint for combodash.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/combodash/internal/boardui"
	"github.com/verte-zerg/combodash/internal/catalog"
	"github.com/verte-zerg/combodash/internal/config"
	"github.com/verte-zerg/combodash/internal/input"
	"github.com/verte-zerg/combodash/internal/model"
	"github.com/verte-zerg/combodash/internal/progress"
	"github.com/verte-zerg/combodash/internal/session"
	"github.com/verte-zerg/combodash/internal/share"
	"github.com/verte-zerg/combodash/internal/store"
	"github.com/verte-zerg/combodash/internal/tui"
)

const (
	defaultMode     = "free-practice"
	defaultInitials = "AAA"
)

var (
	playMode       string
	playCategory   string
	playDurationMs int64
	playTarget     int
	playInitials   string
	playDeadzone   float64
	playPreset     string
	playCode       string

	combosCategory string

	exportOut string
)

var modeDescriptions = map[model.Mode]string{
	model.ModeFreePractice:      "No timer, no pressure. Each combo repeats until you move on.",
	model.ModeTimeAttack:        "Score as much as you can before the clock runs out.",
	model.ModeAccuracy:          "Hit a fixed number of combos; every miss counts against you.",
	model.ModeSurvival:          "Per-combo countdown that shrinks as you go. One life.",
	model.ModeQuiz:              "Sequences are hidden. Recall them from the combo name.",
	model.ModeDailyChallenge:    "One seeded run per day, same queue for everyone.",
	model.ModeSpeedRun:          "Clear the queue as fast as possible; misses add time.",
	model.ModeEndless:           "Keep going until a combo window expires.",
	model.ModeCategoryChallenge: "Every combo from one category, in order.",
	model.ModeBossRush:          "Shrinking windows with double-score boss combos.",
	model.ModeCustom:            "Your own rule set, shareable as a code.",
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "combodash",
		Short:         "TUI directional combo trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playMode, "mode", defaultMode, "game mode (see 'combodash modes')")
	rootCmd.Flags().StringVar(&playCategory, "category", "", "combo category (required for category-challenge, optional for free-practice)")
	rootCmd.Flags().Int64Var(&playDurationMs, "duration-ms", 0, "timer override in milliseconds (time-attack, custom)")
	rootCmd.Flags().IntVar(&playTarget, "target", 0, "combo goal override (accuracy)")
	rootCmd.Flags().StringVar(&playInitials, "initials", defaultInitials, "leaderboard initials")
	rootCmd.Flags().Float64Var(&playDeadzone, "deadzone", input.DefaultDeadzone, "gamepad stick deadzone (0-1); reserved until a gamepad backend is linked")
	rootCmd.Flags().StringVar(&playPreset, "preset", "", "saved custom preset to play")
	rootCmd.Flags().StringVar(&playCode, "code", "", "shared custom-mode code to play")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newModesCmd())
	rootCmd.AddCommand(newCombosCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newShareCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &playMode, fileCfg.Play.Mode)
	applyStringConfig(cmd, "category", &playCategory, fileCfg.Play.Category)
	applyInt64Config(cmd, "duration-ms", &playDurationMs, fileCfg.Play.DurationMs)
	applyIntConfig(cmd, "target", &playTarget, fileCfg.Play.Target)
	applyStringConfig(cmd, "initials", &playInitials, fileCfg.Play.Initials)
	applyFloatConfig(cmd, "deadzone", &playDeadzone, fileCfg.Play.Deadzone)

	mode, ok := model.ParseMode(playMode)
	if !ok {
		return fmt.Errorf("unknown mode %q (see 'combodash modes')", playMode)
	}
	if playDeadzone < 0 || playDeadzone >= 1 {
		return fmt.Errorf("--deadzone must be in [0, 1)")
	}

	cfg := model.Config{
		Mode:       mode,
		DurationMs: playDurationMs,
		Target:     playTarget,
		Deadzone:   playDeadzone,
		Custom:     model.DefaultCustomMode(),
	}

	cfg.Category, err = resolvePlayCategory(mode, playCategory)
	if err != nil {
		return err
	}

	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	svc := progress.NewService(st)
	ctx := context.Background()

	// Persisted preferences sit under the config file and flags in
	// precedence, and track the effective values for backup export.
	settings, err := svc.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if !cmd.Flags().Changed("deadzone") && fileCfg.Play.Deadzone == nil && settings.Deadzone > 0 && settings.Deadzone < 1 {
		playDeadzone = settings.Deadzone
		cfg.Deadzone = settings.Deadzone
	}
	settings.Deadzone = playDeadzone
	for key, name := range fileCfg.Input.Bindings {
		if settings.Bindings == nil {
			settings.Bindings = map[string]string{}
		}
		settings.Bindings[key] = name
	}
	if err := svc.SaveSettings(ctx, settings); err != nil {
		logErrf("failed to save settings: %v\n", err)
	}

	if mode == model.ModeCustom {
		custom, err := resolveCustom(ctx, svc, fileCfg.Custom)
		if err != nil {
			return err
		}
		cfg.Custom = custom
		if playDurationMs > 0 {
			cfg.Custom.TimerMs = playDurationMs
		}
	}

	if mode == model.ModeDailyChallenge {
		played, err := svc.PlayedDailyOn(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("failed to check daily challenge: %w", err)
		}
		if played {
			return fmt.Errorf("today's daily challenge is already done; come back tomorrow")
		}
	}

	tracker, err := svc.LoadTracker(ctx)
	if err != nil {
		return fmt.Errorf("failed to load achievements: %w", err)
	}

	bindings := input.DefaultBindings().Merge(settings.Bindings)
	ctrl := session.New(cfg, time.Now)
	m := tui.NewModel(ctrl, svc, tracker, bindings, normalizeInitials(playInitials), nil, playDeadzone)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveCustom picks the custom rule set: a shared code wins, then a
// saved preset, then the config file section over the defaults.
func resolveCustom(ctx context.Context, svc *progress.Service, section config.CustomModeSection) (model.CustomModeConfig, error) {
	if playCode != "" {
		decoded := share.DecodeCustom(playCode)
		if decoded == nil {
			return model.CustomModeConfig{}, fmt.Errorf("invalid custom-mode code")
		}
		return *decoded, nil
	}
	if playPreset != "" {
		presets, err := svc.LoadPresets(ctx)
		if err != nil {
			return model.CustomModeConfig{}, fmt.Errorf("failed to load presets: %w", err)
		}
		preset, ok := presets[playPreset]
		if !ok {
			return model.CustomModeConfig{}, fmt.Errorf("unknown preset %q", playPreset)
		}
		return preset, nil
	}
	return customFromSection(section), nil
}

func customFromSection(section config.CustomModeSection) model.CustomModeConfig {
	custom := model.DefaultCustomMode()
	if section.Name != nil {
		custom.Name = *section.Name
	}
	if section.TimerType != nil {
		if t := model.TimerType(*section.TimerType); model.ValidTimerType(t) {
			custom.TimerType = t
		}
	}
	if section.TimerMs != nil && *section.TimerMs > 0 {
		custom.TimerMs = *section.TimerMs
	}
	if section.Source != nil {
		switch s := model.QueueSource(*section.Source); s {
		case model.SourceAll, model.SourceCategory, model.SourceTier:
			custom.Source = s
		}
	}
	if section.Category != nil {
		custom.Category = model.Category(*section.Category)
	}
	if section.Tier != nil {
		custom.Tier = model.Tier(*section.Tier)
	}
	if section.Shuffle != nil {
		custom.Shuffle = *section.Shuffle
	}
	if section.QueueLength != nil && *section.QueueLength > 0 {
		custom.QueueLength = *section.QueueLength
	}
	if section.ErrorPolicy != nil {
		if p := model.ErrorPolicy(*section.ErrorPolicy); model.ValidErrorPolicy(p) {
			custom.ErrorPolicy = p
		}
	}
	if section.Lives != nil && *section.Lives > 0 {
		custom.Lives = *section.Lives
	}
	if section.PenaltyMs != nil && *section.PenaltyMs >= 0 {
		custom.PenaltyMs = *section.PenaltyMs
	}
	if section.ScoreMultiplier != nil && *section.ScoreMultiplier > 0 {
		custom.ScoreMultiplier = *section.ScoreMultiplier
	}
	return custom
}

// resolvePlayCategory maps --category for the mode at hand: required
// for category-challenge, optional for free practice (narrows the
// repeated pool), ignored elsewhere.
func resolvePlayCategory(mode model.Mode, name string) (model.Category, error) {
	switch mode {
	case model.ModeCategoryChallenge:
		if name == "" {
			return "", fmt.Errorf("--category is required for category-challenge")
		}
		return resolveCategory(name)
	case model.ModeFreePractice:
		if name == "" {
			return "", nil
		}
		return resolveCategory(name)
	default:
		return "", nil
	}
}

func resolveCategory(name string) (model.Category, error) {
	if name == "" {
		return "", fmt.Errorf("--category must not be empty")
	}
	for _, cat := range catalog.Categories() {
		if string(cat) == name {
			return cat, nil
		}
	}
	names := make([]string, 0, len(catalog.Categories()))
	for _, cat := range catalog.Categories() {
		names = append(names, string(cat))
	}
	return "", fmt.Errorf("unknown category %q (available: %s)", name, strings.Join(names, ", "))
}

func normalizeInitials(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) > 3 {
		s = s[:3]
	}
	for len(s) < 3 {
		s += "A"
	}
	return s
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List game modes",
		Args:  cobra.NoArgs,
		RunE:  runModesCmd,
	}
}

func runModesCmd(cmd *cobra.Command, _ []string) error {
	for _, mode := range model.Modes() {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", mode, modeDescriptions[mode]); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newCombosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combos",
		Short: "List catalog combos",
		Args:  cobra.NoArgs,
		RunE:  runCombosCmd,
	}
	cmd.Flags().StringVar(&combosCategory, "category", "", "category filter")
	return cmd
}

func runCombosCmd(cmd *cobra.Command, _ []string) error {
	defs := catalog.All()
	if combosCategory != "" {
		cat, err := resolveCategory(combosCategory)
		if err != nil {
			return err
		}
		defs = catalog.ByCategory(cat)
	}
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Category != defs[j].Category {
			return defs[i].Category < defs[j].Category
		}
		return defs[i].ID < defs[j].ID
	})
	for _, d := range defs {
		glyphs := make([]string, len(d.Sequence))
		for i, dir := range d.Sequence {
			glyphs[i] = dir.Glyph()
		}
		line := fmt.Sprintf("%-22s %-10s %-8s %s", d.Name, d.Category, d.Tier, strings.Join(glyphs, " "))
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Browse stats, leaderboards, and achievements",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
}

func runStatsCmd(_ *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := boardui.NewModel(progress.NewService(st))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newShareCmd() *cobra.Command {
	shareCmd := &cobra.Command{
		Use:   "share",
		Short: "Encode/decode custom-mode codes",
	}
	shareCmd.AddCommand(&cobra.Command{
		Use:   "encode [preset]",
		Short: "Print the share code for a custom rule set",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runShareEncodeCmd,
	})
	shareCmd.AddCommand(&cobra.Command{
		Use:   "decode <code>",
		Short: "Print the rule set a share code describes",
		Args:  cobra.ExactArgs(1),
		RunE:  runShareDecodeCmd,
	})
	return shareCmd
}

func runShareEncodeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	custom := customFromSection(fileCfg.Custom)
	if len(args) == 1 {
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		presets, err := progress.NewService(st).LoadPresets(context.Background())
		if err != nil {
			return fmt.Errorf("failed to load presets: %w", err)
		}
		preset, ok := presets[args[0]]
		if !ok {
			return fmt.Errorf("unknown preset %q", args[0])
		}
		custom = preset
	}

	code, err := share.EncodeCustom(custom)
	if err != nil {
		return fmt.Errorf("failed to encode rule set: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), code); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runShareDecodeCmd(cmd *cobra.Command, args []string) error {
	decoded := share.DecodeCustom(args[0])
	if decoded == nil {
		return fmt.Errorf("invalid custom-mode code")
	}
	out, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render rule set: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(out)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export progress to a backup file",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "output path (default: stdout)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	backup, err := share.Export(context.Background(), st, time.Now())
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	out, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}
	if exportOut == "" {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(out)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(exportOut, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	logErrf("Wrote %s\n", exportOut)
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import progress from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if err := share.Import(context.Background(), st, data); err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}
	logErrln("Backup imported.")
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# combodash configuration
# Uncomment a value to enable it. CLI flags override config values.

[play]
# mode = %q          # Game mode (see 'combodash modes')
# category = "quarters"        # Category for category-challenge
# duration-ms = 60000          # Timer override in milliseconds
# target = 20                  # Combo goal for accuracy mode
# initials = %q              # Leaderboard initials
# deadzone = %.1f              # Gamepad stick deadzone (0-1)

[input.bindings]
# Key name to direction. Defaults cover WASD and the arrow keys.
# "k" = "up"
# "j" = "down"
# "h" = "left"
# "l" = "right"

[custom]
# name = "My mode"
# timer-type = "countdown"     # none, countdown, countup, survival
# timer-ms = 60000
# source = "all"               # all, category, tier
# category = "quarters"
# tier = "advanced"            # basic, advanced, expert
# shuffle = true
# queue-length = 20
# error-policy = "reset-streak" # reset-streak, lose-life, time-penalty, end-game
# lives = 3
# penalty-ms = 3000
# score-multiplier = 1.0
`,
		defaultMode,
		defaultInitials,
		input.DefaultDeadzone,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
