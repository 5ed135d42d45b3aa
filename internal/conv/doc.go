// Package conv provides overflow-checked integer conversions used in
// byte/element size arithmetic.
package conv
