// Package service contains the application's use cases. Services coordinate
// the stores, the analysis pipeline, the background task system and the
// external oracles, and enforce ownership and subscription rules.
//
// Services receive their dependencies through constructors and depend only on
// store interfaces, never on a concrete database. Expected conditions are
// reported with the sentinel errors in errors.go; unexpected failures are
// wrapped in a *ServiceError naming the failed operation.
package service
