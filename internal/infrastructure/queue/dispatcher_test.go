package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parentdesk/portal-auth/internal/core/domain"
)

type collectingRecorder struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (r *collectingRecorder) Record(_ context.Context, entry domain.AuditEntry) error {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
	return nil
}

func (r *collectingRecorder) byActor(actor string) []domain.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.Actor == actor {
			out = append(out, e)
		}
	}
	return out
}

func (r *collectingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func TestDispatcher_PreservesPerActorOrdering(t *testing.T) {
	recorder := &collectingRecorder{}
	d := NewDispatcher(4, recorder, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	const perActor = 50
	actors := []string{"alice", "bob", "carol"}
	for i := 0; i < perActor; i++ {
		for _, actor := range actors {
			d.Enqueue(domain.AuditEntry{
				Actor:     actor,
				Action:    "document_write",
				Decision:  domain.AuditAllowed,
				Timestamp: time.Unix(int64(i), 0),
			})
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for recorder.count() < perActor*len(actors) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := recorder.count(); got != perActor*len(actors) {
		t.Fatalf("processed %d entries, want %d", got, perActor*len(actors))
	}

	for _, actor := range actors {
		entries := recorder.byActor(actor)
		for i := 1; i < len(entries); i++ {
			if entries[i].Timestamp.Before(entries[i-1].Timestamp) {
				t.Fatalf("ordering violated for %s at index %d", actor, i)
			}
		}
	}
}

func TestDispatcher_ShardIsDeterministic(t *testing.T) {
	d := NewDispatcher(8, &collectingRecorder{}, zerolog.Nop())

	for _, actor := range []string{"", "alice", "bob", "a-very-long-actor-identifier"} {
		first := d.shardIndex(actor)
		for i := 0; i < 10; i++ {
			if d.shardIndex(actor) != first {
				t.Fatalf("shard for %q not deterministic", actor)
			}
		}
		if first < 0 || first >= len(d.workers) {
			t.Fatalf("shard %d out of range for %q", first, actor)
		}
	}
}
