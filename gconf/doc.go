/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension stores a single configuration object under its package name.
The object is loaded from the genesis file and can be updated later by its
owner with an update instruction.

Not being able to load a configuration is a critical condition for the
extension using it. Handlers must refuse to process instructions until the
configuration is initialized.
*/
package gconf
