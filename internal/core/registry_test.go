package core

import (
	"sync"
	"testing"
	"time"
)

func TestRegistryLeaveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c := NewClient(Identity{UserID: 1, Email: "alice@example.com"})

	r.Join("lobby", c)
	if got := r.Members("lobby"); got != 1 {
		t.Fatalf("expected 1 member, got %d", got)
	}

	r.Leave("lobby", c)
	if got := r.Members("lobby"); got != 0 {
		t.Fatalf("expected 0 members after leave, got %d", got)
	}

	// Second leave must be a no-op, as must leaving a room never joined.
	r.Leave("lobby", c)
	r.Leave("ghost", c)
	if got := r.Members("lobby"); got != 0 {
		t.Fatalf("expected 0 members after double leave, got %d", got)
	}
}

func TestRegistryJoinIsIdempotent(t *testing.T) {
	r := NewRegistry()
	c := NewClient(Identity{UserID: 1, Email: "alice@example.com"})

	r.Join("lobby", c)
	r.Join("lobby", c)
	if got := r.Members("lobby"); got != 1 {
		t.Fatalf("expected 1 member after double join, got %d", got)
	}
}

func TestRegistryBroadcastExcludesSender(t *testing.T) {
	r := NewRegistry()
	sender := NewClient(Identity{UserID: 1, Email: "alice@example.com"})
	bob := NewClient(Identity{UserID: 2, Email: "bob@example.com"})
	carol := NewClient(Identity{UserID: 3, Email: "carol@example.com"})

	r.Join("lobby", sender)
	r.Join("lobby", bob)
	r.Join("lobby", carol)

	ev := &Event{Room: "lobby", User: "alice@example.com", Text: "hi", CreatedAt: time.Now()}
	r.Broadcast("lobby", ev, sender)

	for _, c := range []*Client{bob, carol} {
		select {
		case got := <-c.Events:
			if got.Text != "hi" || got.User != "alice@example.com" {
				t.Fatalf("unexpected event: %+v", got)
			}
		default:
			t.Fatalf("expected client %s to receive the broadcast", c.ID)
		}
	}

	select {
	case got := <-sender.Events:
		t.Fatalf("sender received its own broadcast: %+v", got)
	default:
	}
}

func TestRegistryRoomIsolation(t *testing.T) {
	r := NewRegistry()
	alice := NewClient(Identity{UserID: 1, Email: "alice@example.com"})
	bob := NewClient(Identity{UserID: 2, Email: "bob@example.com"})

	r.Join("lobby", alice)
	r.Join("general", bob)

	r.Broadcast("lobby", &Event{Room: "lobby", Text: "hi"}, nil)

	select {
	case got := <-bob.Events:
		t.Fatalf("client in another room received the broadcast: %+v", got)
	default:
	}

	select {
	case <-alice.Events:
	default:
		t.Fatalf("expected lobby member to receive the broadcast")
	}
}

func TestRegistryBroadcastSurvivesDeadRecipient(t *testing.T) {
	r := NewRegistry()
	dead := NewClient(Identity{UserID: 1, Email: "dead@example.com"})
	live := NewClient(Identity{UserID: 2, Email: "live@example.com"})

	r.Join("lobby", dead)
	r.Join("lobby", live)

	// Fill the dead client's buffer so further sends would block.
	for i := 0; i < cap(dead.Events); i++ {
		dead.Events <- &Event{}
	}

	done := make(chan struct{})
	go func() {
		r.Broadcast("lobby", &Event{Text: "hi"}, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("broadcast blocked on a dead recipient")
	}

	select {
	case got := <-live.Events:
		if got.Text != "hi" {
			t.Fatalf("unexpected event: %+v", got)
		}
	default:
		t.Fatalf("live recipient missed the broadcast")
	}
}

func TestRegistryJoinRacingLastLeaveIsNotStranded(t *testing.T) {
	r := NewRegistry()

	// A join must never land in a group that the last member's leave is
	// pruning concurrently, or the joiner would be invisible to every
	// later broadcast.
	for i := 0; i < 5000; i++ {
		c1 := NewClient(Identity{UserID: 1, Email: "alice@example.com"})
		c2 := NewClient(Identity{UserID: 2, Email: "bob@example.com"})

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Join("racy", c1)
		}()
		go func() {
			defer wg.Done()
			r.Join("racy", c2)
			r.Leave("racy", c2)
		}()
		wg.Wait()

		if got := r.Members("racy"); got != 1 {
			t.Fatalf("iteration %d: expected c1 to remain a member, got %d", i, got)
		}

		r.Leave("racy", c1)
		if got := r.Members("racy"); got != 0 {
			t.Fatalf("iteration %d: expected empty group after leave, got %d", i, got)
		}
	}
}

func TestRegistryConcurrentJoinLeaveBroadcast(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewClient(Identity{UserID: 1, Email: "x@example.com"})
			for j := 0; j < 100; j++ {
				r.Join("busy", c)
				r.Broadcast("busy", &Event{Text: "t"}, nil)
				r.Leave("busy", c)
			}
			// Drain to keep buffers from mattering.
			for {
				select {
				case <-c.Events:
				default:
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := r.Members("busy"); got != 0 {
		t.Fatalf("expected empty group after churn, got %d members", got)
	}
}
