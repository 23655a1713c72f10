// Package driver defines the contract between raw configuration resources
// and the model. A driver reads a resource into flat sections of serialized
// key/value pairs; Assemble matches those against the placeholder
// parameters a caller declared, expanding pattern names into one concrete
// parameter per matching resource key and marking undeclared entries as
// foreign.
package driver
