// Package vtest provides testing helpers for vdom components.
//
// A Harness mounts an element into a fresh memhost document and offers
// lookups, event dispatch and render assertions, so component tests need no
// host of their own.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := vtest.Mount(t, vdom.Comp(counterType, nil))
//	    h.ExpectContains("Counter: 0")
//
//	    h.Click(h.MustFind(memhost.ByTag("button")))
//	    h.ExpectContains("Counter: 1")
//	}
//
// # Render Assertions
//
//	h.ExpectHTML(`<div>Counter: 1</div>`)
//	h.ExpectElement("button")
//	h.ExpectAttribute("class", "counter")
//	h.ExpectNotContains("Error")
//
// # Counting Host Work
//
// Stats reports the host operations since the last ResetStats, which makes
// it easy to check that an update patched in place:
//
//	h.ResetStats()
//	h.Click(button)
//	if s := h.Stats(); s.Structural() != 0 {
//	    t.Errorf("update rebuilt nodes: %+v", s)
//	}
//
// # Observing Reconciliation
//
// Recorder is a vdom.Observer that keeps every notification as a line:
//
//	rec := &vtest.Recorder{}
//	h := vtest.Mount(t, el, vdom.WithObserver(rec))
//	// rec.Events: [render "reconciled create Counter" "render done"]
package vtest
