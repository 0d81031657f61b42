/*
Package session implements the session lifecycle: token issuance, record
creation, reset and the per-token serialization of turns.

Every mutating operation runs under a lock keyed by token (reference-counted so
idle tokens do not leak lock entries), optionally backed by a distributed lock
for multi-replica deployments. A turn is "load → compute → persist": the record
is persisted only if the computation succeeds, so a failed turn leaves the
stored record exactly as it was.
*/
package session
