// Package catalog provides an in-memory catalog object model.
//
// Databases contain schemas, schemas contain tables, and folders group
// arbitrary objects. Every container can be populated statically (fixtures,
// tests) or lazily through a Loader (live database adapters). The objects
// implement the pkg/core contracts and carry no traversal logic of their own.
package catalog
