// Package spatial provides the fixed-size vector and matrix algebra used
// by the multibody dynamics recursions: 3-vectors, 3x3 matrices, rigid
// transforms, quaternions, and 6-component spatial vectors and matrices
// (angular part first, linear part second) together with the Phi shift
// operator that translates spatial quantities between offset frames.
//
// Everything here is purely functional over its inputs: value types,
// no mutation, no side effects.
package spatial
