// Package checklist reads and updates per-user project checked state
// against an externally supplied project catalog.
package checklist
