/*
Package domain contains the core domain models of the UDL assessment coach.

It defines the dialogue graph (States and Branches), the per-session Record with
its transcript and Context Store, the closed Intent classification used for
keyword branching, and the slot merge rules. This package is kept pure and free
of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - State: A node of the dialogue graph (Start, DesignMode, QualityCheckPhase, End...).
  - Branch: The conversational track chosen when leaving Start (design or evaluate).
  - Record: The durable snapshot of a session (token, transcript, state, branch, context).
  - ContextStore: Slots accumulated across turns plus cached generated artifacts.
  - Intent: Tagged classification of a raw user message (Affirmative, ModeDesign...).
*/
package domain
