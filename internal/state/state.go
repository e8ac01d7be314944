package state

import "sync"

// guard is the common container skeleton: a big mutex serializing loads and
// mutations, a data lock for the container's item slice, and
// separately-locked observable flags. Readers never wait behind an in-flight
// network call, so optimistic state is visible before the call resolves.
type guard struct {
	mu sync.Mutex // serializes mutations and loads

	data sync.RWMutex // protects the container's item slice

	st      sync.Mutex // protects the flags below
	loading bool
	lastErr error
}

func (g *guard) setLoading(v bool) {
	g.st.Lock()
	g.loading = v
	g.st.Unlock()
}

func (g *guard) setErr(err error) {
	g.st.Lock()
	g.lastErr = err
	g.st.Unlock()
}

// Loading reports whether a load or mutation is in flight.
func (g *guard) Loading() bool {
	g.st.Lock()
	defer g.st.Unlock()
	return g.loading
}

// Err returns the last failure, or nil.
func (g *guard) Err() error {
	g.st.Lock()
	defer g.st.Unlock()
	return g.lastErr
}
