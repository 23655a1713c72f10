// Package parser turns serialized parameter values into typed ones. A
// serialized value is one of three forms, checked in order:
//
//   - full expression  `=[lang:]expr` — the whole value is one expression,
//     evaluated by the named resolver (default language when omitted) and
//     returned as its native typed result;
//   - plain string with inline fragments `%[lang:]expr%` — each fragment is
//     evaluated, stringified and concatenated with the literal text;
//   - plain value — returned as a string, or coerced when the target type
//     asks for a bool, number, collection or map.
//
// Within any expression form, `@[path/][category.][..history]name` denotes
// another parameter's value. With no category, categories are searched in
// reverse definition order (the last definition wins); a run of extra dots
// steps that many matches further back, which lets an expression refer to
// the definition it shadows. A path prefix resolves the reference against
// an external configuration fetched through the ResourceLoader. Backslash
// escapes `\@`, `\%` and `\\` produce the literal character.
package parser
