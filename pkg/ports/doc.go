/*
Package ports defines the driven ports (interfaces) for the Roteiro engine.

These interfaces decouple the navigation core from external implementations,
allowing the engine to work with various storage backends without knowing
whether a lookup is a local read or a network call.

# Key Interfaces

  - StepStore: Responsible for resolving Steps by id (optionally product-scoped).
  - ProductResolver: Responsible for resolving Products at session start.
  - SessionStore: Responsible for persisting and loading session snapshots.
  - StoreWatcher: Optional change notification for long-lived step caches.
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
