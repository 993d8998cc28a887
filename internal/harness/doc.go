// Package harness provides conformance testing for the reconciliation engine.
//
// The harness loads YAML scenarios that describe an order file and a batch
// of delivery documents as fixtures, runs them through the real engine and
// validates the resulting audit items.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	rules: rules.cue            # optional, relative to the scenario file
//	order:
//	  lines:
//	    - { id: "1001", name: Badlaken, qty: 10 }
//	deliveries:
//	  - name: week12.pdf
//	    lines:
//	      - { y: 700, text: "1001 Badlaken 8" }
//	  - name: scan.pdf
//	    corrupt: "truncated xref table"
//	save: true
//	assertions:
//	  - type: item
//	    article: "1001"
//	    expect: { delivered: 8, status: Shortfall }
//	  - type: final_state
//	    table: snapshots
//	    where: { id: snap-0001 }
//	    expect: { total_ordered: 10 }
//
// # Assertion Types
//
//   - item: An item exists and matches the expected fields
//   - item_absent: No item exists for an article
//   - item_count: Exact number of items
//   - items_order: Articles appear in the given relative order
//   - skipped: Exact list of skipped delivery documents
//   - delivery_date: The reported delivery date
//   - final_state: Queries a store table and verifies expected values
//
// A scenario may instead set expect_error to the code the run must fail with.
//
// # Deterministic Testing
//
// The harness uses:
//   - Sequential snapshot ids (testutil.SequentialIDGenerator)
//   - A stepping wall clock (testutil.DeterministicClock)
//   - In-memory SQLite database (isolated per scenario)
//
// This ensures identical outcomes across runs for golden file comparison.
package harness
