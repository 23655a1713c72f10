// Package configurable binds configuration resources to application state.
// A Configurable declares its parameters once, names the resources they are
// read from and applies the resolved values onto Settable targets. Targets
// receive values through an explicit assignment step; the reflection-based
// Target adapter is provided for plain structs.
package configurable
