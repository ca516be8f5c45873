// Package shutdown runs named cleanup hooks when the process is asked to
// stop, in reverse order of registration and under a shared deadline.
package shutdown
