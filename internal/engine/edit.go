package engine

import (
	"github.com/dshills/tagtext/internal/engine/annotation"
	"github.com/dshills/tagtext/internal/engine/history"
	"github.com/dshills/tagtext/internal/engine/tracking"
)

// delivery is one listener call collected under the lock and made after it
// is released.
type delivery struct {
	fn     func(Change)
	change Change
}

// pending holds everything a write must announce once it has committed.
type pending struct {
	deliveries []delivery
	events     []annotation.Event
}

// begin claims the write slot. It fails if the document is read-only or
// another write, including the one now notifying listeners, is running.
func (d *Document) begin() error {
	if d.readOnly {
		return ErrReadOnly
	}
	if !d.editing.CompareAndSwap(false, true) {
		d.logger.Warn("write rejected: edit in progress")
		return ErrEditInProgress
	}
	return nil
}

// write runs fn under the write lock and then dispatches the annotation
// events it caused.
func (d *Document) write(fn func() error) error {
	if err := d.begin(); err != nil {
		return err
	}
	defer d.editing.Store(false)

	d.mu.Lock()
	d.store.Suspend()
	err := fn()
	p := pending{events: d.store.Resume()}
	d.mu.Unlock()

	d.announce(p)
	return err
}

// edit is the single entry point for structural edits. op applies the edit
// to the buffer and names the annotation it was made through, if any. The
// resulting change is propagated to the store before the lock is released;
// listeners hear about it afterwards.
func (d *Document) edit(op func() (Change, *Annotation, error)) (Change, error) {
	if err := d.begin(); err != nil {
		return Change{}, err
	}
	defer d.editing.Store(false)

	d.mu.Lock()
	d.store.Suspend()
	c, source, err := op()
	var p pending
	if err == nil {
		if c.Cause.Removed != c.Cause.Inserted {
			d.undo.Record(c.Cause)
		}
		d.commitLocked(c, source, &p)
	}
	p.events = d.store.Resume()
	d.mu.Unlock()

	d.announce(p)
	if err != nil {
		return Change{}, err
	}
	return c, nil
}

// replay applies a history step. The replayed edits are made at document
// level and are not recorded again.
func (d *Document) replay(step func(history.ApplyFunc) error) error {
	if err := d.begin(); err != nil {
		return err
	}
	defer d.editing.Store(false)

	d.mu.Lock()
	d.store.Suspend()
	var p pending
	err := step(func(edits []CharEdit) error {
		for _, e := range edits {
			c, err := d.buf.ReplaceChars(e.Offset, len(e.Removed), e.Inserted)
			if err != nil {
				return err
			}
			d.commitLocked(c, nil, &p)
		}
		return nil
	})
	p.events = d.store.Resume()
	d.mu.Unlock()

	d.announce(p)
	return err
}

// commitLocked propagates c to the annotations and queues its deliveries.
func (d *Document) commitLocked(c Change, source *Annotation, p *pending) {
	if c.IsEmpty() {
		return
	}
	res := d.prop.Apply(c, source)
	d.logger.Debug("%s: %s", c, res)
	for _, a := range res.Purged {
		d.logger.Debug("purged %s", a)
		delete(d.viewListeners, a.ID())
	}
	p.deliveries = append(p.deliveries, d.collectLocked(c, res)...)
}

// collectLocked gathers the listener calls for change c: document
// listeners and root views get it as is, the views of each touched
// annotation get its relay.
func (d *Document) collectLocked(c Change, res tracking.Result) []delivery {
	var out []delivery
	for _, l := range d.listeners {
		out = append(out, delivery{fn: l.fn, change: c})
	}
	for _, l := range d.viewListeners[annotation.ID{}] {
		out = append(out, delivery{fn: l.fn, change: c})
	}
	for _, r := range res.Relays {
		ls := d.viewListeners[r.Annotation.ID()]
		if len(ls) == 0 {
			continue
		}
		rc := r.Change
		rc.Cause.Offset -= d.charStartLocked(r.Annotation.Start())
		for _, l := range ls {
			out = append(out, delivery{fn: l.fn, change: rc})
		}
	}
	return out
}

// charStartLocked returns the byte offset of token index, or the end of
// the text past the last token.
func (d *Document) charStartLocked(index int) int {
	if t, err := d.buf.Token(index); err == nil {
		return t.Start()
	}
	return d.buf.Len()
}

func (d *Document) announce(p pending) {
	for _, dl := range p.deliveries {
		dl.fn(dl.change)
	}
	if len(p.events) > 0 {
		d.store.Dispatch(p.events)
	}
}
