// Package selectz keeps a dropdown widget's options and selection in sync
// with a reactive data source.
//
// The core type is Controller. It subscribes to a Source, and whenever the
// source changes it reads the new option set, diffs it against the last
// state it applied to the Widget, and issues the minimal set of widget calls:
//
//	Source → Read → Diff against Snapshot → Update/Remove/Add/Select → Snapshot
//
// If reading the source fails, the widget and snapshot are left untouched and
// the error is reported to the host. Nothing is retried until the source
// changes again.
//
// # Loop
//
// All callbacks run on a Loop, a single-threaded cooperative scheduler.
// Sources post their change notifications to the loop instead of calling the
// controller while their data is being mutated, so a reconciliation never
// interleaves with another callback.
//
// # Loop Guard
//
// Widgets fire selection events for changes made by the controller itself.
// While a reconciliation runs the controller is in StateReconciling and
// ignores those echoes. Outside a reconciliation, a selection event is a user
// action: it updates the snapshot and is written back to the source if the
// source implements SelectionWriter.
//
// # State Machine
//
//   - Detached: no source or widget
//   - Attached: subscribed, widget matches the snapshot
//   - Reconciling: applying changes, widget echoes suppressed
//
// # Sources
//
//   - FuncSource: wraps a computation, call Invalidate after mutating its inputs
//   - WatcherSource: decodes option lists from a Watcher (file, channel, pkg/redis)
//   - CompositeSource: merges several sources through a Reducer
//
// # Example
//
//	loop := selectz.NewLoop()
//	countries := []selectz.Option{{ID: "de", Label: "Germany"}}
//	source := selectz.NewFuncSource(loop, func() (selectz.OptionSet, error) {
//	    return countries, nil
//	})
//
//	ctrl := selectz.New().OnError(func(err error) {
//	    log.Printf("dropdown: %v", err)
//	})
//	if err := ctrl.Attach(ctx, source, widget, "de"); err != nil {
//	    log.Printf("initial sync failed: %v", err)
//	}
//
//	countries = append(countries, selectz.Option{ID: "fr", Label: "France"})
//	source.Invalidate()
//
//	go loop.Run(ctx)
package selectz
