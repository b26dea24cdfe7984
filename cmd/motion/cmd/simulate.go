package cmd

import (
	"encoding/csv"
	"fmt"
	"strconv"
)

func init() {
	RegisterCommand(&Command{
		Name:  "simulate",
		Short: "Print a spring trajectory",
		Long: `Simulate one value travelling from --from to --to with fixed frames and
print every frame until it comes to rest.

Flags:
  --preset NAME          Start from a named preset (default: default)
  --tension, --friction, --mass, --precision N
                         Override the preset's spring
  --clamp                Stop at the target instead of overshooting
  --duration D           Use a tween of this length instead of a spring
  --easing NAME          Easing of a --duration tween (e.g. easeOutCubic)
  --from N, --to N       Start and target values (default: 0 and 1)
  --frame D              Frame length (default: 16ms or motion.yaml)
  --limit N              Give up after N frames
  --integrator NAME      euler or harmonic
  --csv                  Print CSV instead of a table`,
		Usage: "motion simulate [--preset NAME] [flags]",
		Run:   runSimulate,
	})
}

func runSimulate(args []string) error {
	project, err := loadProject()
	if err != nil {
		return err
	}

	var sf springFlags
	fs := newFlagSet("simulate", project, &sf)
	name := fs.String("preset", "default", "preset name")
	asCSV := fs.Bool("csv", false, "print CSV")
	if err := fs.Parse(args); err != nil {
		return err
	}

	base, err := preset(*name)
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

	if *asCSV {
		w := csv.NewWriter(stdout)
		w.Write([]string{"frame", "time_ms", "value", "velocity", "rest"})
		for _, s := range samples {
			w.Write([]string{
				strconv.Itoa(s.Frame),
				strconv.FormatInt(s.Time.Milliseconds(), 10),
				strconv.FormatFloat(s.Value, 'f', 6, 64),
				strconv.FormatFloat(s.Velocity, 'f', 6, 64),
				strconv.FormatBool(s.Rest),
			})
		}
		w.Flush()
		return w.Error()
	}

	fmt.Fprintf(stdout, "%s: %s\n", *name, describe(cfg))
	fmt.Fprintf(stdout, "%6s %8s %12s %12s\n", "frame", "time", "value", "velocity")
	for _, s := range samples {
		fmt.Fprintf(stdout, "%6d %8v %12.6f %12.6f\n", s.Frame, s.Time, s.Value, s.Velocity)
	}
	last := samples[len(samples)-1]
	if last.Rest {
		fmt.Fprintf(stdout, "settled after %d frames (%v)\n", last.Frame, last.Time)
	} else {
		fmt.Fprintf(stdout, "did not settle within %d frames\n", sf.limit)
	}
	return nil
}
