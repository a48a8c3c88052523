/*
Package x contains the extensions of the multisig runtime.

Extensions implement common functionality (Handler, Decorator,
Authenticator) and are combined together by the app package.
Sub-packages hold the multisig core, the signature batch facilities and
shared decorators.

Note that protobuf types in exported code will be prefixed by
the package, so follow standard go naming conventions and avoid
stutter. Use eg. `multisig.CreateMsg` in place of `multisig.CreateMultisigMsg`.
*/
package x
