package memory

import (
	"context"
	"slices"
	"time"

	"github.com/dmehra2102/ordersystem/pkg/outbox"
)

// Outbox is the in-memory outbox table. It satisfies outbox.Recorder for
// the services and outbox.Store for the relay.
type Outbox struct{ s *Store }

func (o *Outbox) Append(ctx context.Context, ev outbox.Event) error {
	return o.s.write(ctx, func(st *state) error {
		st.seq.event++
		ev.ID = st.seq.event
		ev.Status = outbox.StatusPending
		st.events = append(st.events, ev)
		return nil
	})
}

func (o *Outbox) LockBatch(ctx context.Context, relayID string, batchSize int, _ time.Duration) ([]outbox.Event, error) {
	var batch []outbox.Event
	err := o.s.write(ctx, func(st *state) error {
		for i := range st.events {
			if len(batch) == batchSize {
				break
			}
			if st.events[i].Status != outbox.StatusPending {
				continue
			}
			st.events[i].Status = outbox.StatusInProgress
			st.events[i].RelayID = relayID
			batch = append(batch, st.events[i])
		}
		return nil
	})
	return batch, err
}

func (o *Outbox) MarkSent(ctx context.Context, ids []int64) error {
	return o.s.write(ctx, func(st *state) error {
		for i := range st.events {
			if slices.Contains(ids, st.events[i].ID) {
				st.events[i].Status = outbox.StatusSent
			}
		}
		return nil
	})
}

func (o *Outbox) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	return o.s.write(ctx, func(st *state) error {
		for i := range st.events {
			if st.events[i].ID == id {
				st.events[i].Status = outbox.StatusFailed
				st.events[i].RetryCount++
				st.events[i].LastError = &errMsg
			}
		}
		return nil
	})
}

// ExtendLease is a no-op: leases never expire in memory.
func (o *Outbox) ExtendLease(context.Context, string, []int64, time.Duration) error { return nil }

// Events returns a copy of every recorded event in insertion order.
func (o *Outbox) Events() []outbox.Event {
	var out []outbox.Event
	o.s.read(context.Background(), func(st *state) { out = slices.Clone(st.events) })
	return out
}
