// Package term draws live animations into a terminal with tcell.
package term

import (
	"fmt"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/chain"
	"github.com/go-drift/motion/pkg/core"
	"github.com/go-drift/motion/pkg/trail"
	"github.com/go-drift/motion/pkg/transition"
)

const (
	trailMembers = 5
	trailStagger = 60 * time.Millisecond
	listTrail    = 40 * time.Millisecond
	panelWidth   = 36
	maxItems     = 6
	labelWidth   = 10
)

const help = "[space] trail  [a] add  [d] remove  [c] chain  [t] timesteps  [q] quit"

var (
	styleDefault = tcell.StyleDefault
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTrail   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHeader  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleBody    = tcell.StyleDefault.Foreground(tcell.ColorPurple)

	fadeColor = animation.ColorRange(
		color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff},
		color.RGBA{R: 0x40, G: 0xa0, B: 0xff, A: 0xff},
	)
)

// Scene is the demo: a trail of bars, a keyed list with enter and leave
// transitions, and two panels opened by a chain. All state is owned by
// one scope and must be touched from the frame thread only.
type Scene struct {
	screen tcell.Screen
	sched  *animation.Scheduler
	scope  *core.Scope

	trail    *trail.Trail
	trailOut bool

	list  *transition.Transition[string, string]
	items []string
	next  int

	chain        *chain.Chain
	headerRef    *animation.Ref
	bodyRef      *animation.Ref
	header, body *animation.Controller
	open         bool

	status string
	redraw *animation.Ticker
	frames int
}

// NewScene builds the demo on sched. Every object uses cfg.
func NewScene(screen tcell.Screen, sched *animation.Scheduler, cfg animation.SpringConfig) (*Scene, error) {
	s := &Scene{
		screen: screen,
		sched:  sched,
		scope:  core.NewScope(sched),
		status: "ready",
	}
	s.redraw = sched.NewTicker(func(time.Duration) {
		s.redraw.Stop()
		s.Draw()
	})
	s.scope.OnDispose(s.redraw.Stop)

	var err error
	if s.trail, err = core.UseTrail(s.scope, trailMembers, cfg, trailStagger); err != nil {
		return nil, err
	}
	s.trail.OnChange(func(int, animation.Values) { s.invalidate() })
	s.trail.OnRest(func() { s.setStatus("trail at rest") })
	if err := s.trail.Start(animation.Values{"x": 0}, animation.Values{"x": 0}); err != nil {
		return nil, err
	}

	s.list, err = core.UseTransition(s.scope, transition.Props[string, string]{
		Key:   func(item string) string { return item },
		From:  transition.Fixed[string](animation.Values{"opacity": 0, "x": -6}),
		Enter: transition.Fixed[string](animation.Values{"opacity": 1, "x": 0}),
		Leave: transition.Fixed[string](animation.Values{"opacity": 0, "x": 6}),
		Config: cfg,
		Trail:  listTrail,
		OnChange: func(string, animation.Values) {
			s.invalidate()
		},
		OnRemove: func(key, _ string) {
			s.setStatus("removed " + key)
		},
	})
	if err != nil {
		return nil, err
	}

	s.chain = core.UseChain(s.scope)
	s.headerRef = core.UseRef(s.scope, "header")
	s.bodyRef = core.UseRef(s.scope, "body")
	if s.header, err = core.UseController(s.scope, cfg, animation.WithRef(s.headerRef), animation.WithName("header")); err != nil {
		return nil, err
	}
	if s.body, err = core.UseController(s.scope, cfg, animation.WithRef(s.bodyRef), animation.WithName("body")); err != nil {
		return nil, err
	}
	for _, c := range []*animation.Controller{s.header, s.body} {
		c.OnTick(func(animation.Values) { s.invalidate() })
		c.Jump(animation.Values{"w": 0})
	}

	s.invalidate()
	return s, nil
}

// Handle applies one terminal event. It returns false when the demo should
// quit.
func (s *Scene) Handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			s.ToggleTrail()
		case 'a':
			s.AddItem()
		case 'd':
			s.RemoveItem()
		case 'c':
			s.ToggleChain()
		case 't':
			s.RunTimesteps()
		}
	case *tcell.EventResize:
		s.screen.Sync()
		s.invalidate()
	}
	return true
}

// ToggleTrail sends the trail to the other side of its track.
func (s *Scene) ToggleTrail() {
	s.trailOut = !s.trailOut
	target := 0.0
	if s.trailOut {
		target = panelWidth
	}
	s.trail.Set(animation.Values{"x": target})
	s.setStatus(fmt.Sprintf("trail -> %.0f", target))
}

// AddItem appends a new item to the list.
func (s *Scene) AddItem() {
	if len(s.items) >= maxItems {
		s.setStatus("list is full")
		return
	}
	s.next++
	s.items = append(s.items, fmt.Sprintf("item %d", s.next))
	s.list.Update(s.items)
	s.setStatus("added " + s.items[len(s.items)-1])
}

// RemoveItem drops the oldest item from the list.
func (s *Scene) RemoveItem() {
	if len(s.items) == 0 {
		s.setStatus("list is empty")
		return
	}
	s.items = s.items[1:]
	s.list.Update(s.items)
}

// ToggleChain opens the header and then the body, or closes them in
// reverse order.
func (s *Scene) ToggleChain() {
	s.open = !s.open
	width := 0.0
	refs := []*animation.Ref{s.bodyRef, s.headerRef}
	if s.open {
		width = panelWidth
		refs = []*animation.Ref{s.headerRef, s.bodyRef}
	}
	s.header.Start(nil, animation.Values{"w": width})
	s.body.Start(nil, animation.Values{"w": width})
	s.chain.RunSequential(refs...)
	s.setStatus(fmt.Sprintf("chain open=%v", s.open))
}

// RunTimesteps restarts both panels from closed, spread over 300ms.
func (s *Scene) RunTimesteps() {
	s.open = true
	s.header.Start(animation.Values{"w": 0}, animation.Values{"w": panelWidth})
	s.body.Start(animation.Values{"w": 0}, animation.Values{"w": panelWidth})
	links, err := chain.Timesteps([]*animation.Ref{s.headerRef, s.bodyRef}, []float64{0, 1}, 300*time.Millisecond)
	if err != nil {
		s.setStatus(err.Error())
		return
	}
	s.chain.Run(links...)
	s.setStatus(fmt.Sprintf("timesteps %v %v", links[0], links[1]))
}

// Status returns the last status line message.
func (s *Scene) Status() string {
	return s.status
}

// Frames returns how many times the scene has been drawn.
func (s *Scene) Frames() int {
	return s.frames
}

func (s *Scene) setStatus(msg string) {
	s.status = msg
	s.invalidate()
}

// invalidate schedules one redraw on the next frame.
func (s *Scene) invalidate() {
	if !s.scope.IsDisposed() && !s.redraw.IsActive() {
		s.redraw.Start()
	}
}

// Draw renders the current values.
func (s *Scene) Draw() {
	s.frames++
	s.screen.Clear()
	row := 0
	s.text(0, row, styleDefault, "motion demo")
	row++
	s.text(0, row, styleDim, help)
	row += 2

	s.text(0, row, styleDim, "trail")
	row++
	for i, v := range s.trail.Values() {
		s.marker(row, fmt.Sprintf("%d", i), v["x"], styleTrail, '●')
		row++
	}
	row++

	s.text(0, row, styleDim, "list")
	row++
	for _, e := range s.list.Items() {
		c := fadeColor.Evaluate(e.Values["opacity"])
		style := styleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
		s.text(labelWidth+int(e.Values["x"]+6), row, style, fmt.Sprintf("%s (%s)", e.Key, e.Phase))
		row++
	}
	for range maxItems - s.list.Len() {
		row++
	}
	row++

	s.text(0, row, styleDim, "chain")
	row++
	header, _ := s.header.Get("w")
	body, _ := s.body.Get("w")
	s.fill(row, "header", header, styleHeader, '█')
	s.fill(row+1, "body", body, styleBody, '▒')
	row += 3

	s.text(0, row, styleDim, s.status)
	s.screen.Show()
}

// fill draws a label followed by a run of width cells.
func (s *Scene) fill(y int, label string, width float64, style tcell.Style, r rune) {
	s.text(0, y, styleDim, label)
	for x := range int(width + 0.5) {
		s.screen.SetContent(labelWidth+x, y, r, nil, style)
	}
}

// marker draws a label and a single cell at pos.
func (s *Scene) marker(y int, label string, pos float64, style tcell.Style, r rune) {
	s.text(0, y, styleDim, label)
	s.screen.SetContent(labelWidth+int(pos+0.5), y, r, nil, style)
}

func (s *Scene) text(x, y int, style tcell.Style, str string) {
	for _, r := range str {
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// Dispose releases every animation of the scene.
func (s *Scene) Dispose() {
	s.scope.Dispose()
}
