// Package events decouples services that request background work from the
// components that perform it.
//
// A service emits a TaskRequestEvent naming a task type and carrying a JSON
// payload. Handlers registered with an emitter turn those events into work,
// typically by building a task and submitting it to the task runner.
package events
