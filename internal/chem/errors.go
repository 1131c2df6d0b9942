package chem

import "errors"

var (
	// ErrUnsupportedMolecule is returned for molecule names without a geometry builder.
	ErrUnsupportedMolecule = errors.New("Unsupported molecule")

	// ErrUnsupportedBasis indicates a basis set that is not tabulated.
	ErrUnsupportedBasis = errors.New("chem: unsupported basis set")

	// ErrUnknownElement indicates an atom symbol outside the element table.
	ErrUnknownElement = errors.New("chem: unknown element")

	// ErrMalformedAtomString indicates an atom string that cannot be parsed.
	ErrMalformedAtomString = errors.New("chem: malformed atom string")
)
