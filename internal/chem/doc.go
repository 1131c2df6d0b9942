// Package chem provides molecular geometries, Gaussian basis sets and the
// one- and two-electron integrals needed to set up an electronic-structure
// problem.
//
// Integrals are evaluated over contracted Cartesian Gaussians with the
// McMurchie-Davidson scheme:
//
//   - [Overlap], [Kinetic] and [NuclearAttraction] for one-electron terms
//   - [Compute] for the full set including electron repulsion integrals
//
// All geometry input is in Angstrom; everything returned is in atomic units.
package chem
