package format

// TicksToNanos converts a tick stamp from an event payload into absolute
// nanoseconds since the epoch using the owning chunk's header fields.
func TicksToNanos(startNanos, startTicks, ticksPerSecond, ticks int64) int64 {
	if ticksPerSecond <= 0 {
		return startNanos
	}
	delta := ticks - startTicks
	return startNanos + delta*1e9/ticksPerSecond
}
