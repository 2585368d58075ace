// Package diag holds the side-channel diagnostics realtime code is
// allowed to touch: atomic counters, never logging or any other
// unbounded-latency call.
package diag

import "sync/atomic"

// Counters tracks realtime-path anomalies. All methods are safe to
// call from the input callback, the output callback, and the control
// thread concurrently.
type Counters struct {
	underruns    atomic.Uint64
	overruns     atomic.Uint64
	streamErrors atomic.Uint64
}

func (c *Counters) AddUnderrun()         { c.underruns.Add(1) }
func (c *Counters) AddOverrun(n uint64)  { c.overruns.Add(n) }
func (c *Counters) AddStreamError()      { c.streamErrors.Add(1) }
func (c *Counters) Underruns() uint64    { return c.underruns.Load() }
func (c *Counters) Overruns() uint64     { return c.overruns.Load() }
func (c *Counters) StreamErrors() uint64 { return c.streamErrors.Load() }
