// Package shell contains the infrastructure shared by all feature slices:
// mapping between domain events and storable events, event metadata, the query-decide-append cycle
// with optimistic concurrency retries, handler results, and observability helpers.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' or 'adapters' layer.
package shell
