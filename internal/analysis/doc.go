// Package analysis extracts spectroscopic quantities from potential-energy
// curves.
//
//   - [FitEquilibrium]: equilibrium bond length and energy from a local
//     quadratic fit around the lowest sample
//   - [HarmonicFrequency]: vibrational wavenumber from the fitted curvature
//   - [Dissociation]: depth of the well relative to the longest bond
//   - [Summarize]: all of the above for one molecule
//
// # Harmonic Approximation
//
// Near the minimum E(r) ≈ E0 + k/2 (r - r0)², so the vibrational
// wavenumber follows from k and the reduced mass μ:
//
//	eq, err := analysis.FitEquilibrium(rs, energies)
//	mu, _ := analysis.ReducedMass("H2")
//	nu := analysis.HarmonicFrequency(eq.Curvature, mu) // cm⁻¹
package analysis
