/*
Package trace provides the stock consumers of the status-change notification
bus: a flat-file NDJSON logger, an embedded-database (bbolt) logger with its
own buffered writer goroutine, and a Prometheus metrics observer.

All of them attach with tree.Subscribe(x.Record). Record never blocks the
ticking goroutine: the file logger does a buffered write, the bolt logger
enqueues on a bounded channel and drops when the writer falls behind, and
the metrics observer only bumps counters.
*/
package trace
