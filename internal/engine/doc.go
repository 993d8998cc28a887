// Package engine runs the linen delivery reconciliation pipeline.
//
// One run takes an order file and a batch of delivery documents:
//
//  1. The order file is decoded and aggregated into an OrderMap
//  2. Each delivery document is decoded into positioned tokens, its lines are
//     reconstructed and folded into one DeliveryFacts accumulator
//  3. Orders and facts are merged into audit items
//
// Runs are synchronous and single-threaded. Each run owns its OrderMap and
// DeliveryFacts; nothing is shared between runs.
//
// # Failure Isolation
//
// A delivery document that fails to decode is skipped and reported as a
// DocumentDecodeError in Result.Warnings. The remaining documents are still
// processed. An order file without a single valid row fails the whole run.
//
// # Delivery Date
//
// The first date marker line across all documents wins. Documents are
// processed in the order given, so the reported date depends on that order.
package engine
