/*
Package sigbatch decodes the records produced by the signature verification
facilities.

A facility is a program that verifies a batch of signatures. Its instruction
data is the record consumed by the multisig extension: a header with the
signature count, per signature offset metadata and then the signatures,
identities and messages, each group stored in its own block. Two layouts
exist, one per signature scheme.

	ed25519:    count(1) pad(1) offsets(14*n) signatures(64*n) public keys(32*n) messages(32*n)
	secp256k1:  count(1)        offsets(11*n) addresses(20*n) signatures(65*n)  messages(32*n)

The parser extracts (identity, message) pairs using the fixed layout. The
facility programs verify signatures using the offsets. The parser requires
that both views point at the same bytes. With relaxed offsets the table may
point anywhere, and the oracle resolves it to check that it addresses the
parsed entries.
*/
package sigbatch
