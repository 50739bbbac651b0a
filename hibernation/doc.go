// Package hibernation opportunistically powers down an idle display
// pipeline and transparently powers it back up before the next frame.
//
// A Hibernator watches the idle opportunities the pipeline reports,
// debounces them against the current refresh rate, and, once the pipeline
// has stayed idle long enough, runs the hardware suspend sequence on a
// background worker. Foreground code that needs the hardware awake calls
// Exit, which cancels or waits out an in-flight suspend and resumes the
// hardware synchronously before returning. Latency-sensitive callers
// inhibit entry with Block and Unblock without ever touching the
// sequencing lock.
package hibernation
