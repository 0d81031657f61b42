/*
Package ports defines the driven ports (interfaces) of the UDL assessment coach.

These interfaces decouple the dialogue core from external implementations, allowing
the engine to work with various storage backends and generative backends.

# Key Interfaces

  - SessionRepository: Durable keyed storage for session Records.
  - DistributedLocker: Distributed locking for concurrent access to one session across replicas.
  - IntentClassifier: Slot extraction and binary alignment verdicts behind a typed contract.
  - ContentGenerator: Formatted markdown for assessment sets, reports and refinements.
  - DocumentExtractor: Plain text from uploaded documents.
*/
package ports
