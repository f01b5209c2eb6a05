// Package util provides utility components for database implementations
// that satisfy the db.IDatabase interface.
//
// The package contains:
//   - statistics: Utility tools for analyzing database characteristics and a
//     SizeHistogram for tracking data size distribution
//   - functions: Hash functions and other utility functions
//
// This package is particularly useful for:
//   - Database developers implementing the db.IDatabase interface
//   - Monitoring systems that need to track database size and distribution metrics
package util
