// Package core defines the shared language of leaperd.
//
// This package contains:
//   - Catalog contracts (Object, Folder, Container, Entity, DataSource, ObjectFilter)
//   - Entity traits and metadata (Attribute, Association, EntityType)
//   - Configuration types (TargetConfig, FilterConfig, DiagramConfig)
//   - The AccessError raised by catalog implementations
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
