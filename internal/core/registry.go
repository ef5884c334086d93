package core

import "sync"

// group is the membership set of a single room. Each group carries its
// own lock so traffic in one room does not block another. dead marks a
// group that was pruned from the registry; a joiner that raced the prune
// must not insert into it.
type group struct {
	mu      sync.Mutex
	members map[*Client]struct{}
	dead    bool
}

// Registry maps room names to the set of currently-connected clients.
// It is owned by the application and shared by all connection sessions;
// all mutation goes through Join, Leave and Broadcast.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]*group
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]*group)}
}

func (r *Registry) getOrCreate(room string) *group {
	r.mu.RLock()
	g, ok := r.groups[room]
	r.mu.RUnlock()
	if ok {
		return g
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.groups[room]; ok {
		return g
	}
	g = &group{members: make(map[*Client]struct{})}
	r.groups[room] = g
	return g
}

// Join adds a client to the room's group. Idempotent per client.
func (r *Registry) Join(room string, c *Client) {
	for {
		g := r.getOrCreate(room)
		g.mu.Lock()
		if g.dead {
			// Lost a race against the last member's leave pruning this
			// group; fetch a fresh one.
			g.mu.Unlock()
			continue
		}
		g.members[c] = struct{}{}
		g.mu.Unlock()
		return
	}
}

// Leave removes a client from the room's group. Calling it for a client
// that is not a member, or calling it twice, is a no-op. Empty groups
// are pruned.
func (r *Registry) Leave(room string, c *Client) {
	r.mu.RLock()
	g, ok := r.groups[room]
	r.mu.RUnlock()
	if !ok {
		return
	}

	g.mu.Lock()
	delete(g.members, c)
	empty := len(g.members) == 0
	g.mu.Unlock()

	if !empty {
		return
	}

	r.mu.Lock()
	if g2, ok := r.groups[room]; ok && g2 == g {
		g.mu.Lock()
		if len(g.members) == 0 {
			g.dead = true
			delete(r.groups, room)
		}
		g.mu.Unlock()
	}
	r.mu.Unlock()
}

// Broadcast delivers the event to every member of the room's group at
// call time, except the sender's own handle. Delivery is a non-blocking
// channel send per member; a dead or slow recipient is skipped and never
// aborts delivery to the rest.
func (r *Registry) Broadcast(room string, ev *Event, except *Client) {
	r.mu.RLock()
	g, ok := r.groups[room]
	r.mu.RUnlock()
	if !ok {
		return
	}

	// Snapshot the membership so concurrent joins and leaves cannot
	// interfere with the delivery loop.
	g.mu.Lock()
	recipients := make([]*Client, 0, len(g.members))
	for c := range g.members {
		if c == except {
			continue
		}
		recipients = append(recipients, c)
	}
	g.mu.Unlock()

	for _, c := range recipients {
		select {
		case c.Events <- ev:
		default:
			// Drop if slow consumer.
		}
	}
}

// Members returns the current size of a room's group.
func (r *Registry) Members(room string) int {
	r.mu.RLock()
	g, ok := r.groups[room]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}
