// Package store defines interfaces for data persistence operations.
// These interfaces keep the analysis, community and subscription logic
// independent of the concrete database, which lives in platform/postgres.
package store
