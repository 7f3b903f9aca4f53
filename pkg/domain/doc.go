/*
Package domain contains the core domain models for the Roteiro engine.

It defines the fundamental entities of the script graph, such as Steps,
Buttons, and Products, plus the serializable session snapshot. This package
is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Step: Represents a node in a script graph (one screen of call-guide content).
  - Button: A labeled edge from one Step to another, or to termination.
  - Product: A named script graph plus eligibility filters and its entry Step.
  - AttendanceConfig: The frozen selection used to start a navigation session.
  - SessionSnapshot: A serializable capture of a session's runtime state.
*/
package domain
