// Package reader parses flight recordings into the jfr model: chunk headers,
// the metadata type dictionary, constant pools and the event stream.
//
// The recording is accessed through a read-only memory mapping; all decoding
// works over the mapped byte slice without copying event payloads. Constant
// pools are indexed eagerly but resolved lazily with memoization, so a pool
// entry referencing another pool (Thread -> ThreadGroup) resolves naturally
// regardless of on-disk order.
package reader
