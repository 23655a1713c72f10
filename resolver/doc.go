// Package resolver manages named expression-language evaluators. A Registry
// is a plain value constructed at startup and injected into the parser, so
// tests and embedders can hold isolated instances; there is no ambient
// global registration.
package resolver
