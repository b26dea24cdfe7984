// Package core ties the lifetime of animation objects to a scope.
//
// A Scope collects disposers and runs them in reverse order when it is
// disposed, the same way a view's state releases its controllers:
//
//	scope := core.NewScope(sched)
//	defer scope.Dispose()
//
//	cards, _ := core.UseTrail(scope, 5, animation.GentleConfig, 40*time.Millisecond)
//	cards.Start(animation.Values{"y": 40}, animation.Values{"y": 0})
//
// # Hooks
//
// UseController, UseSpring, UseTrail, UseTransition and UseChain create an
// object on the scope's scheduler and dispose it with the scope.
// UseDerived and UseRest subscribe to a controller and unsubscribe on
// disposal. Use adopts any other Disposable.
package core
