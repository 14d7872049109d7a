// Package password implements credential hashing with Argon2id.
//
// Hashes are emitted in PHC string format
// ($argon2id$v=19$m=…,t=…,p=…$salt$hash) so parameters travel with the hash
// and can be strengthened later; [Hasher.NeedsRehash] detects hashes made
// with weaker parameters than the current configuration. Verification uses a
// constant-time comparison.
//
// Hashing is CPU- and memory-heavy on purpose. Callers run it on their own
// goroutine; nothing in this package blocks anything but its caller.
package password
