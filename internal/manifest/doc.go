// Package manifest models the package.json descriptor shipped inside an
// extension package. Decoding is lenient: a recognised field with an
// unexpected shape is kept opaquely instead of failing the parse, and fields
// the model does not know are preserved verbatim. Schema validation is a
// separate, advisory step.
package manifest
