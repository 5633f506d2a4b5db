// Package driver implements the in-memory driver pool registry.
//
// A driver is identified by a 13-character LH business key and carries a
// name and a vehicle plate (or comma-separated plate list). The registry
// enforces key uniqueness, point-lookup search by plate or key, and
// one-way lifecycle transitions to Concluido/Cancelado, and derives the
// colour-coded closing report consumed by the report package.
//
// All failure is returned as sentinel errors; no operation panics on bad
// input.
package driver
