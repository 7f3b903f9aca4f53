/*
Package session implements the navigation session state machine and its
server-side manager.

A Session tracks an operator's position inside one product's script graph:
the current step, the ordered history of visited step ids, and the frozen
attendance configuration. It exposes Start, Advance, GoBack, JumpToTitle
and Reset, re-fetching steps from the injected StepStore on every
transition so it never operates on stale cached content.

The Manager provides high-level orchestration for many concurrent operator
sessions: per-session locking with reference counting, optional distributed
locking across replicas, and snapshot persistence through a SessionStore.
*/
package session
