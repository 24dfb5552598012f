// Package escalate delivers confirmed-scam reports to the external
// collector. Delivery is fire-and-forget and at-most-once: dispatch never
// blocks the request path, failures are logged and swallowed, and nothing
// is ever retried.
package escalate

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rakshaklabs/rakshak/pkg/httputil"
	"github.com/rakshaklabs/rakshak/pkg/session"
)

// maxInFlight caps concurrent collector deliveries. Reports beyond the
// cap are dropped, not queued; the escalation flag stays set either way.
const maxInFlight = 32

// Report is the payload POSTed to the collector.
type Report struct {
	SessionID     string               `json:"session_id"`
	ScamConfirmed bool                 `json:"scam_confirmed"`
	TotalMessages int                  `json:"total_messages"`
	Intelligence  session.Intelligence `json:"intelligence"`
	Rationale     string               `json:"rationale"`
	ReportedAt    time.Time            `json:"reported_at"`
}

// Notifier dispatches reports to the collector URL.
type Notifier struct {
	collectorURL string
	timeout      time.Duration
	sem          *httputil.Semaphore
	client       *http.Client

	sent   atomic.Int64
	failed atomic.Int64
}

// NewNotifier creates a notifier. An empty collectorURL disables
// dispatch entirely.
func NewNotifier(collectorURL string, timeout time.Duration) *Notifier {
	return &Notifier{
		collectorURL: collectorURL,
		timeout:      timeout,
		sem:          httputil.NewSemaphore(maxInFlight),
		client:       httputil.FastClient(),
	}
}

// Dispatch hands the report to a background goroutine and returns
// immediately. The caller must have already won MarkEscalated; dropping
// or failing here never rolls that flag back.
func (n *Notifier) Dispatch(report Report) {
	if n.collectorURL == "" {
		return
	}
	if !n.sem.TryAcquire() {
		log.Printf("[ESCALATE] dispatch capacity full, dropping report for session %s", report.SessionID)
		return
	}

	go func() {
		defer n.sem.Release()
		n.deliver(report)
	}()
}

func (n *Notifier) deliver(report Report) {
	if report.ReportedAt.IsZero() {
		report.ReportedAt = time.Now().UTC()
	}

	body, err := json.Marshal(report)
	if err != nil {
		n.failed.Add(1)
		log.Printf("[ESCALATE] failed to marshal report for session %s: %v", report.SessionID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.collectorURL, bytes.NewReader(body))
	if err != nil {
		n.failed.Add(1)
		log.Printf("[ESCALATE] failed to build collector request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.failed.Add(1)
		log.Printf("[ESCALATE] collector unreachable for session %s: %v", report.SessionID, err)
		return
	}
	defer httputil.DrainAndClose(resp.Body)

	if resp.StatusCode >= 300 {
		n.failed.Add(1)
		errBody, _ := httputil.ReadErrorBody(resp.Body)
		log.Printf("[ESCALATE] collector rejected report for session %s: %d %s", report.SessionID, resp.StatusCode, string(errBody))
		return
	}

	n.sent.Add(1)
	log.Printf("[ESCALATE] reported session %s (%d messages, %d artifacts)",
		report.SessionID, report.TotalMessages, report.Intelligence.Total())
}

// Sent returns the number of reports the collector accepted.
func (n *Notifier) Sent() int64 { return n.sent.Load() }

// Failed returns the number of deliveries that errored out.
func (n *Notifier) Failed() int64 { return n.failed.Load() }

// Dropped returns the number of reports shed at the capacity gate.
func (n *Notifier) Dropped() int64 { return n.sem.DroppedCount() }
