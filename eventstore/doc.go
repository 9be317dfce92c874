// Package eventstore provides the storage contract the circulation engine is built on:
// append-only events queried through dynamic consistency boundaries.
//
// A consistency boundary is described by a Filter: a disjunction of FilterItems, each matching a set of
// event types and (optionally) JSON payload predicates. Query returns all matching events together with the
// highest sequence number among them. Append inserts new events only if that highest sequence number is
// still the same, otherwise it fails with ErrConcurrencyConflict. This gives compare-and-set semantics
// scoped exactly to the facts a decision was based on.
//
// Common usage pattern:
//
//	filter := eventstore.NewFilter(
//		eventstore.Types(core.LoanOpenedEventType, core.LoanClosedEventType).
//			WhereAny(eventstore.P("TitleID", titleID), eventstore.P("MemberID", memberID)),
//	)
//
//	events, maxSeq, err := store.Query(ctx, filter)
//	if err != nil {
//		// handle error
//	}
//
//	// decide ...
//
//	err = store.Append(ctx, filter, maxSeq, newEvent, moreEvents...)
//
// Engines live in the subpackages postgresengine, sqliteengine and memoryengine.
package eventstore
