package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/presets"
)

func init() {
	RegisterCommand(&Command{
		Name:  "presets",
		Short: "List or export spring presets",
		Long: `List every registered preset with the number of 16ms frames it needs to
carry a value from 0 to 1.

Flags:
  --file FILE         List only the presets defined in FILE
  --export FORMAT     Write the presets as a preset file (yaml or toml)`,
		Usage: "motion presets [--file FILE] [--export yaml|toml]",
		Run:   runPresets,
	})
}

func runPresets(args []string) error {
	var file, export string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--file":
			if i+1 >= len(args) {
				return fmt.Errorf("--file requires a path")
			}
			file = args[i+1]
			i++
		case "--export":
			if i+1 >= len(args) {
				return fmt.Errorf("--export requires a format (yaml or toml)")
			}
			export = args[i+1]
			i++
		default:
			return fmt.Errorf("unexpected argument %q", args[i])
		}
	}

	if _, err := loadProject(); err != nil {
		return err
	}

	table := presets.Builtin()
	if file != "" {
		t, err := presets.Load(file)
		if err != nil {
			return err
		}
		table = t
	}

	if export != "" {
		var format presets.Format
		switch strings.ToLower(export) {
		case "yaml", "yml":
			format = presets.YAML
		case "toml":
			format = presets.TOML
		default:
			return fmt.Errorf("unknown export format %q (use yaml or toml)", export)
		}
		return table.Encode(stdout, format)
	}

	fmt.Fprintf(stdout, "%-12s %8s %8s %6s %8s  %s\n", "NAME", "TENSION", "FRICTION", "MASS", "SETTLE", "NOTES")
	for _, name := range table.Names() {
		cfg, err := table.Config(name)
		if err != nil {
			return err
		}
		settle := "-"
		frames, err := animation.SettleFrames(cfg, 0, 1, animation.NominalFrame, 1000)
		if err != nil {
			return err
		}
		if frames >= 0 {
			settle = fmt.Sprintf("%d", frames)
		}
		fmt.Fprintf(stdout, "%-12s %8g %8g %6g %8s  %s\n", name, cfg.Tension, cfg.Friction, cfg.Mass, settle, notes(cfg))
	}
	return nil
}

func notes(cfg animation.SpringConfig) string {
	var parts []string
	if cfg.Duration > 0 {
		parts = append(parts, "tween "+cfg.Duration.String())
	}
	if cfg.Clamp {
		parts = append(parts, "clamped")
	}
	if cfg.Delay > 0 {
		parts = append(parts, "delay "+cfg.Delay.String())
	}
	if cfg.Precision != 0 {
		parts = append(parts, fmt.Sprintf("precision %g", cfg.Precision))
	}
	return strings.Join(parts, ", ")
}

// describe formats a config on one line.
func describe(cfg animation.SpringConfig) string {
	if cfg.Duration > 0 {
		return fmt.Sprintf("tween %v", cfg.Duration.Round(time.Millisecond))
	}
	s := fmt.Sprintf("tension=%g friction=%g mass=%g", cfg.Tension, cfg.Friction, cfg.Mass)
	if n := notes(cfg); n != "" {
		s += " (" + n + ")"
	}
	return s
}
