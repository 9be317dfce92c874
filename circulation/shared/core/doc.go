// Package core contains the domain events, decision results, errors and policy of
// library circulation: copies of catalogued titles are lent to members, returned late or on time,
// renewed, reserved in per-title queues, and fined when overdue.
//
// Events are facts with business meaning (LoanOpened, FineApplied, ReservationReadyForPickup),
// never generic updates. Every event carries the IDs that decision boundaries filter on
// (TitleID, MemberID, ...) as top-level string properties.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
