/*
Package msig defines the interfaces shared by the multisig authorization core
and the runtime hosting it: storage, instructions, handlers and identities.

We pass context.Context between the runtime, decorators and handlers. To do
so, this package defines keys for the logger and the instructions of the
transaction being executed. Each extension, such as multisig, may add its own
keys to enrich the context with specific data.

There should exist two functions for every XYZ of type T
that we want to support in Context:

  WithXYZ(Context, T) Context
  GetXYZ(Context) (val T, ok bool)
*/
package msig
