package main

import "sync"

// View keys used by the mutation gateways to signal which cached projections
// a write may have made stale.
const (
	viewTasks     = "tasks"
	viewCalendar  = "calendar"
	viewMeals     = "meals"
	viewFinances  = "finances"
	viewVacation  = "vacation"
	viewDashboard = "dashboard"
)

var revalidators = struct {
	sync.RWMutex
	byView map[string][]func()
}{byView: make(map[string][]func())}

// onRevalidate registers a callback to run whenever the given view is
// invalidated. Registration order is not significant.
func onRevalidate(view string, fn func()) {
	revalidators.Lock()
	defer revalidators.Unlock()
	revalidators.byView[view] = append(revalidators.byView[view], fn)
}

// revalidateView fires the invalidation signal for the given views. It is
// fire-and-forget: callbacks run synchronously but their effect on a read
// already in flight is not ordered.
func revalidateView(views ...string) {
	revalidators.RLock()
	defer revalidators.RUnlock()
	for _, v := range views {
		for _, fn := range revalidators.byView[v] {
			fn()
		}
	}
}
