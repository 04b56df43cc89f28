// Package task runs background jobs, currently dream analyses, on a pool of
// workers. Tasks are persisted before they are queued so that pending and
// interrupted work is recovered after a restart.
package task
