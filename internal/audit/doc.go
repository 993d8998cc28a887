// Package audit provides the domain types shared by every stage of the
// delivery reconciliation pipeline.
//
// This package contains type definitions and small value helpers only. All
// other internal packages import audit; audit imports nothing internal. This
// keeps the domain model the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Article ids are strings of ASCII digits and are compared lexically
//   - Quantities are float64 (order files carry decimal quantities)
//   - Snapshots are values; every copy crossing a package boundary clones
//     its item slice
//   - All JSON tags use snake_case
package audit
