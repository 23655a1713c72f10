// Package model defines the configuration data model: a Configuration is an
// ordered collection of Categories, and a Category is an ordered collection
// of Parameters. Category order determines override priority when a
// configuration is unified into its VALUES, FOREIGNS and ERRORS partitions.
package model
