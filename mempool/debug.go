package mempool

import "os"

// Runtime debug flag for allocation logging - controlled by QUADPOOL_LOG_ALLOC env var.
var logAlloc = os.Getenv("QUADPOOL_LOG_ALLOC") != ""

// debugf emits a debug record for split/recombine/restart events when
// allocation logging is enabled.
func (p *Pool) debugf(msg string, args ...any) {
	if !logAlloc {
		return
	}
	p.logger().Debug(msg, append([]any{"pool", p.cfg.Name}, args...)...)
}
