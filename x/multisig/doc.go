/*
Package multisig implements a stateless multi signature authorization.

A configuration holds a set of owners, a threshold and a nonce. Owners never
sign on chain. Instead, a signature verification facility checks their
signatures in a sibling instruction of the same transaction and this package
only reads the facility record. When enough owners signed the expected
digest, the requested action is executed on behalf of the configuration
delegated authority.

The delegated authority is an address derived from the configuration
address. It has no private key. Executed actions see it as a signer of every
account reference pointing at it, and the Authenticate authenticator reports
it as an authenticated condition while the action runs.

Each successful execution increments the configuration nonce. The nonce is
part of the signed digest so that a signed request can be executed only
once.
*/
package multisig
