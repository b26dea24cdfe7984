package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/motion/pkg/plot"
)

func init() {
	RegisterCommand(&Command{
		Name:  "plot",
		Short: "Render preset trajectories to a PNG",
		Long: `Simulate one or more presets and draw their trajectories on shared axes.

Flags:
  --presets A,B,...      Presets to compare (default: all built-in presets)
  --out FILE             Output file (default: motion.png or motion.yaml)
  --width N, --height N  Image size in pixels
  --title TEXT           Title drawn above the plot

The spring flags of "motion simulate" (--tension, --from, --to, --frame,
--integrator, ...) apply to every plotted preset.`,
		Usage: "motion plot [--presets A,B] [--out FILE] [flags]",
		Run:   runPlot,
	})
}

func runPlot(args []string) error {
	project, err := loadProject()
	if err != nil {
		return err
	}

	var sf springFlags
	fs := newFlagSet("plot", project, &sf)
	names := fs.String("presets", strings.Join(builtin, ","), "comma separated preset names")
	out := fs.String("out", project.PlotOut, "output file")
	width := fs.Int("width", project.PlotWidth, "image width")
	height := fs.Int("height", project.PlotHeight, "image height")
	title := fs.String("title", "", "plot title")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var series []plot.Series
	for _, name := range strings.Split(*names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		base, err := preset(name)
		if err != nil {
			return err
		}
		cfg, err := sf.apply(base)
		if err != nil {
			return err
		}
		samples, err := sf.simulate(cfg)
		if err != nil {
			return err
		}
		series = append(series, plot.Series{Name: name, Samples: samples})
	}

	if *title == "" {
		*title = fmt.Sprintf("%g -> %g, %v frames", sf.from, sf.to, sf.frame)
	}
	img, err := plot.Render(series, plot.Options{Width: *width, Height: *height, Title: *title})
	if err != nil {
		return err
	}

	path := *out
	if !filepath.IsAbs(path) {
		path = filepath.Join(project.Root, path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := plot.WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d series)\n", path, len(series))
	return nil
}
