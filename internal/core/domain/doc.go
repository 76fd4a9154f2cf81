// Package domain defines the core domain models for keyden.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - Database: Named database record with optional credentials
//   - Entry: Stored value with optional expiry deadline
//   - Errors: Domain-specific error definitions
//
// All domain models implement validation and serialization.
//
// @req RQ-0101
// @design DS-0101
package domain
