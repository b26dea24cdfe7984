package core

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/go-drift/motion/pkg/animation"
	motiontest "github.com/go-drift/motion/pkg/testing"
	"github.com/go-drift/motion/pkg/transition"
)

// MockDisposable for testing Use
type mockDisposable struct {
	disposed bool
}

func (m *mockDisposable) Dispose() {
	m.disposed = true
}

func TestUse(t *testing.T) {
	scope := NewScope(nil)

	obj := Use(scope, func() *mockDisposable {
		return &mockDisposable{}
	})

	if obj.disposed {
		t.Error("object should not be disposed initially")
	}

	scope.Dispose()

	if !obj.disposed {
		t.Error("object should be disposed when the scope is disposed")
	}
}

func TestScope_DisposeOrder(t *testing.T) {
	scope := NewScope(nil)
	var order []int
	for i := range 3 {
		scope.OnDispose(func() { order = append(order, i) })
	}
	scope.Dispose()
	scope.Dispose()

	if want := []int{2, 1, 0}; !slices.Equal(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	if !scope.IsDisposed() {
		t.Error("IsDisposed = false")
	}
}

func TestScope_Unregister(t *testing.T) {
	scope := NewScope(nil)
	called := false
	unregister := scope.OnDispose(func() { called = true })
	unregister()
	scope.Dispose()

	if called {
		t.Error("unregistered disposer ran")
	}
}

func TestScope_OnDisposeAfterDispose(t *testing.T) {
	scope := NewScope(nil)
	scope.Dispose()

	called := false
	scope.OnDispose(func() { called = true })
	if !called {
		t.Error("disposer registered after Dispose should run immediately")
	}
	if scope.OnDispose(nil) == nil {
		t.Error("OnDispose(nil) should return a no-op unregister")
	}
}

func TestScope_Child(t *testing.T) {
	parent := NewScope(nil)
	child := parent.Child()
	obj := Use(child, func() *mockDisposable { return &mockDisposable{} })

	parent.Dispose()
	if !child.IsDisposed() || !obj.disposed {
		t.Error("disposing the parent should dispose the child")
	}
}

func TestUseController(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	scope := NewScope(h.Scheduler())

	c, err := UseController(scope, animation.StiffConfig)
	if err != nil {
		t.Fatal(err)
	}
	if c.Scheduler() != h.Scheduler() {
		t.Error("controller is not on the scope scheduler")
	}
	c.Start(animation.Values{"x": 0}, animation.Values{"x": 1})
	h.Pump()

	scope.Dispose()
	if !c.IsDisposed() {
		t.Error("controller should be disposed with the scope")
	}
	if h.Scheduler().Registered() != 0 {
		t.Error("disposed controller is still registered")
	}

	if _, err := UseController(NewScope(nil), animation.SpringConfig{Tension: -1}); err == nil {
		t.Error("expected config error")
	}
}

func TestUseSpring(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	scope := NewScope(h.Scheduler())
	defer scope.Dispose()

	c, err := UseSpring(scope, animation.DefaultConfig,
		animation.Values{"opacity": 0}, animation.Values{"opacity": 1})
	if err != nil {
		t.Fatal(err)
	}
	if c.Status() != animation.StatusRunning {
		t.Errorf("status = %v, want running", c.Status())
	}
	h.MustSettle(t, 3*time.Second)
	if got, _ := c.Get("opacity"); got != 1 {
		t.Errorf("opacity = %v, want 1", got)
	}
}

func TestUseTrailAndChain(t *testing.T) {
	motiontest.RecordErrors(t)
	h := motiontest.NewHarnessWithT(t)
	scope := NewScope(h.Scheduler())

	tr, err := UseTrail(scope, 3, animation.DefaultConfig, 30*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	tr.Start(animation.Values{"y": 0}, animation.Values{"y": 10})
	ch := UseChain(scope)
	ref := UseRef(scope, "late")
	late, _ := UseController(scope, animation.DefaultConfig, animation.WithRef(ref))
	late.Start(nil, animation.Values{"x": 1})
	ch.RunSequential(UseRef(scope, "none"), ref)
	h.PumpFrames(2)

	scope.Dispose()
	if tr.Len() != 0 || ch.Pending() != 0 {
		t.Errorf("after dispose: trail len %d, chain pending %d", tr.Len(), ch.Pending())
	}
	if h.Scheduler().Registered() != 0 || h.Scheduler().Pending() != 0 {
		t.Errorf("leaked registered=%d pending=%d", h.Scheduler().Registered(), h.Scheduler().Pending())
	}
}

func TestUseTransition(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	scope := NewScope(h.Scheduler())

	removed := 0
	tr, err := UseTransition(scope, transition.Props[string, string]{
		Key:      func(s string) string { return s },
		Enter:    transition.Fixed[string](animation.Values{"opacity": 1}),
		Leave:    transition.Fixed[string](animation.Values{"opacity": 0}),
		OnRemove: func(string, string) { removed++ },
	})
	if err != nil {
		t.Fatal(err)
	}
	tr.Update([]string{"a", "b"})
	h.MustSettle(t, 3*time.Second)
	tr.Update([]string{"b"})
	h.Pump()

	scope.Dispose()
	if tr.Len() != 0 {
		t.Errorf("len = %d after dispose", tr.Len())
	}
	if removed != 0 {
		t.Errorf("OnRemove ran %d times during dispose", removed)
	}

	if _, err := UseTransition(NewScope(nil), transition.Props[string, string]{}); err == nil {
		t.Error("expected missing Key error")
	}
}

func TestUseDerivedAndRest(t *testing.T) {
	h := motiontest.NewHarnessWithT(t)
	scope := NewScope(h.Scheduler())
	c, _ := UseController(NewScope(h.Scheduler()), animation.StiffConfig)
	defer c.Dispose()

	var labels []string
	UseDerived(scope, c, animation.To(func(a ...float64) string {
		return fmt.Sprintf("%.0f%%", a[0]*100)
	}, "p"), func(s string) { labels = append(labels, s) })
	rests := 0
	UseRest(scope, c, func(animation.Values) { rests++ })

	c.Start(animation.Values{"p": 0}, animation.Values{"p": 1})
	h.MustSettle(t, 3*time.Second)
	if len(labels) == 0 || labels[len(labels)-1] != "100%" {
		t.Errorf("labels = %v, want ending in 100%%", labels)
	}
	if rests != 1 {
		t.Errorf("rests = %d, want 1", rests)
	}

	scope.Dispose()
	n := len(labels)
	c.Start(nil, animation.Values{"p": 0})
	h.MustSettle(t, 3*time.Second)
	if len(labels) != n || rests != 1 {
		t.Error("listeners still subscribed after scope dispose")
	}
}
