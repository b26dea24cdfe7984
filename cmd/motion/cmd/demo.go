package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/motion/cmd/motion/internal/term"
	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

func init() {
	RegisterCommand(&Command{
		Name:  "demo",
		Short: "Run the terminal demo",
		Long: `Run an interactive terminal demo of trails, list transitions and chains.

Keys:
  space   Send the trail to the other side
  a, d    Add or remove a list item
  c       Open or close the panels one after another
  t       Open the panels with fixed timesteps
  q, Esc  Quit

Flags:
  --preset NAME   Spring preset used by every animation (default: default)
  --fps N         Frames per second (default: 60)`,
		Usage: "motion demo [--preset NAME] [--fps N]",
		Run:   runDemo,
	})
}

func runDemo(args []string) error {
	project, err := loadProject()
	if err != nil {
		return err
	}

	var sf springFlags
	fs := newFlagSet("demo", project, &sf)
	name := fs.String("preset", "default", "preset name")
	fps := fs.Int("fps", 60, "frames per second")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fps <= 0 || *fps > 240 {
		return fmt.Errorf("--fps must be between 1 and 240, got %d", *fps)
	}
	base, err := preset(*name)
	if err != nil {
		return err
	}
	cfg, err := sf.apply(base)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	finish := sync.OnceFunc(screen.Fini)
	defer finish()

	// Errors would scribble over the screen; keep them for after Fini.
	var reported []error
	var mu sync.Mutex
	prev := errors.SetHandler(collectHandler(func(err error) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	}))
	defer errors.SetHandler(prev)

	src := animation.NewTickerSource(time.Second / time.Duration(*fps))
	sched := animation.NewScheduler(animation.WithFrameSource(src))
	defer src.Stop()

	// The scene lives on the frame thread; build and dispose it there.
	var scene *term.Scene
	ready := make(chan error, 1)
	sched.Dispatch(func() {
		var err error
		scene, err = term.NewScene(screen, sched, cfg)
		ready <- err
	})
	if err := <-ready; err != nil {
		return err
	}

	quit := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			sched.Dispatch(func() {
				if !scene.Handle(ev) {
					once.Do(func() { close(quit) })
				}
			})
		}
	}()
	<-quit

	done := make(chan struct{})
	sched.Dispatch(func() {
		scene.Dispose()
		close(done)
	})
	<-done

	finish()
	mu.Lock()
	defer mu.Unlock()
	for _, err := range reported {
		fmt.Fprintf(stdout, "reported: %v\n", err)
	}
	return nil
}

// collectHandler forwards reported errors and panics to fn.
type collectHandler func(error)

func (h collectHandler) HandleError(err *errors.MotionError) {
	h(err)
}

func (h collectHandler) HandlePanic(err *errors.PanicError) {
	h(err)
}
