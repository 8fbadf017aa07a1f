package tracking

import (
	"time"

	"github.com/dshills/tagtext/internal/engine/buffer"
)

// Revision numbers the changes a Propagator has applied, starting at 1.
// Revision 0 is the state before any change.
type Revision uint64

// Record is one applied change kept in the history.
type Record struct {
	Revision  Revision
	Timestamp time.Time
	Change    buffer.Change
	Purged    int // Number of annotations purged
	Relays    int // Number of annotations whose interior changed
}

// record adds a change to the ring buffer and returns its revision.
func (p *Propagator) record(c buffer.Change, res Result) Revision {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.revision++
	idx := (p.head + p.count) % p.maxHistory
	if p.count < p.maxHistory {
		p.count++
	} else {
		// Ring buffer is full, advance head
		p.head = (p.head + 1) % p.maxHistory
	}
	p.history[idx] = Record{
		Revision:  p.revision,
		Timestamp: time.Now(),
		Change:    c,
		Purged:    len(res.Purged),
		Relays:    len(res.Relays),
	}
	return p.revision
}

// Revision returns the revision of the last applied change.
func (p *Propagator) Revision() Revision {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.revision
}

// ChangesSince returns the remembered records after rev in chronological
// order. Records older than the history bound are gone.
func (p *Propagator) ChangesSince(rev Revision) []Record {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var result []Record
	for i := 0; i < p.count; i++ {
		r := p.history[(p.head+i)%p.maxHistory]
		if r.Revision > rev {
			result = append(result, r)
		}
	}
	return result
}

// Latest returns the most recent n records in chronological order.
func (p *Propagator) Latest(n int) []Record {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n = min(max(n, 0), p.count)
	result := make([]Record, n)
	for i := 0; i < n; i++ {
		idx := (p.head + p.count - n + i) % p.maxHistory
		result[i] = p.history[idx]
	}
	return result
}

// HistoryLen returns the number of remembered records.
func (p *Propagator) HistoryLen() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.count
}

// ClearHistory forgets every record. The revision counter keeps counting.
func (p *Propagator) ClearHistory() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.head, p.count = 0, 0
	clear(p.history)
}
