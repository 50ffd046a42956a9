// Package core provides the settings-resolution engine for table views.
//
// This package is the heart of tableview, containing all view logic
// independent of any UI, transport or storage layer. It can be used by web
// handlers, the CLI, or tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Model: the data source capability interface. [BasicModel] is the
//     array-backed implementation; other packages adapt Postgres tables and
//     Arrow/Parquet data to it.
//   - Settings: the persisted view configuration (filters, sort, grouping,
//     column widths, visibility and ordering).
//   - Results: the renderable projection produced by [ApplySettings].
//   - State: the long-lived view state that reconciles Settings, selection,
//     the filter popup and group collapse flags against a mutating Model.
//
// # Resolution Order
//
// [ApplySettings] is a pure function. It always runs the same pipeline:
//
//  1. Filter rows (AND across enabled column filters)
//  2. Partition into groups ordered by group value
//  3. Stable sort within each group
//  4. Lay out rows, emitting a heading slot per group
//  5. Resolve visible columns in display order
//
// # Reconciliation
//
// A [State] is refreshed once per update tick:
//
//	state := core.NewState(model, core.DefaultLayout())
//	state.RefreshModel()   // cheap no-op when Model.Ref() is unchanged
//	render(state.Results)
//
// Schema changes reset Settings, the distinct-value index is rebuilt, the
// open filter popup is recomputed and the selection is relocated by key
// before the Results are recomputed.
//
// # Error Handling
//
// The engine returns no errors. A Model that violates its contract (key
// columns out of range, settings arrays that do not match the column count)
// causes a panic. Outer layers use the sentinel errors in this package and
// [MapError] to turn failures into user-facing messages:
//
//   - VIEW001-VIEW004: View session errors
//   - SRC001-SRC003: Data source errors
//   - COL001-COL002: Column and row addressing errors
//   - FILE001-FILE006: Upload file errors
//   - DB001-DB003: Database errors
//   - REQ001-REQ003: Cancelled, timed out and malformed requests
//
// # Concurrency
//
// A State is not safe for concurrent use. Callers serialize access and must
// not mutate the Model while a refresh is running.
package core
