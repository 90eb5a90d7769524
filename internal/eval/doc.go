// Package eval evaluates model formulas against a named-variable scope.
//
// Formulas originate from an untrusted upstream generator, so the package
// exposes a deliberately restricted expression language rather than anything
// resembling general code execution. A formula is parsed once with the HCL
// native syntax parser and then checked against an allow-list: arithmetic
// (+, -, *, /), comparisons, unary negation, parentheses, attribute access
// (for parameter objects, e.g. RATE.value) and calls to min, max and abs.
// Every other construct is rejected at parse time, and every name a formula
// references must be present in the scope at evaluation time. A missing name
// is a hard failure that names the offender; it is never defaulted to zero.
//
// Parsed expressions also report the set of names they reference, which the
// resolver uses to build the auxiliary dependency graph without a second
// parser.
package eval
