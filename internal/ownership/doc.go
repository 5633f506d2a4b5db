// Package ownership persists which operator created which driver key.
//
// The store backs the permission model: an operator may only remove or
// close out drivers they added themselves. Operators and their owned keys
// live in a single JSON file rewritten wholesale on every mutation.
package ownership
