// Package workflow turns recipe annotations into workflow trees and computes
// per-cluster statistics over collections of trees.
//
// Every function in this package is a pure function of its inputs and is
// safe to call concurrently.
package workflow
