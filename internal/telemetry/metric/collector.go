package metric

import "time"

// Result labels for host messages.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// RecordMessage counts one host message.
func (r *Registry) RecordMessage(msgType, result string) {
	if r == nil {
		return
	}
	r.MessagesTotal.WithLabelValues(msgType, result).Inc()
}

// RecordRejected counts one message refused by the gate.
func (r *Registry) RecordRejected(reason string) {
	if r == nil {
		return
	}
	r.SendersRejected.WithLabelValues(reason).Inc()
}

// RecordStorageOp counts one storage command.
func (r *Registry) RecordStorageOp(cmd, outcome string) {
	if r == nil {
		return
	}
	r.StorageOps.WithLabelValues(cmd, outcome).Inc()
}

// SetKnownKeys sets the indexed key gauge.
func (r *Registry) SetKnownKeys(n int) {
	if r == nil {
		return
	}
	r.KnownKeys.Set(float64(n))
}

// RecordClientRequest counts a settled client request and observes its
// latency.
func (r *Registry) RecordClientRequest(cmd, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.ClientRequests.WithLabelValues(cmd, outcome).Inc()
	r.ClientLatency.WithLabelValues(cmd).Observe(elapsed.Seconds())
}

// IncClientTimeout counts an expired conversation.
func (r *Registry) IncClientTimeout() {
	if r == nil {
		return
	}
	r.ClientTimeouts.Inc()
}

// SetClientPending sets the pending conversation gauge.
func (r *Registry) SetClientPending(n int) {
	if r == nil {
		return
	}
	r.ClientPending.Set(float64(n))
}
