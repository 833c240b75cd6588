package store

type sliceID int

const (
	cartSlice sliceID = iota
	productSlice
	// product mutations patch the list instead of replacing it, so they are tracked
	// apart from product fetches
	productWrites
	authSlice
	ordersSlice
	numSlices
)

// fence orders async outcomes of one slice. Sequence numbers are taken at dispatch;
// an outcome older than the last applied one is dropped.
type fence struct {
	issued   uint64
	applied  uint64
	inflight map[uint64]struct{}
}

func newFence() *fence {
	return &fence{inflight: make(map[uint64]struct{})}
}

func (f *fence) begin() uint64 {
	f.issued++
	f.inflight[f.issued] = struct{}{}
	return f.issued
}

// settle reports whether the outcome for seq should be applied.
func (f *fence) settle(seq uint64) bool {
	delete(f.inflight, seq)
	if seq < f.applied {
		return false
	}
	f.applied = seq
	return true
}

// done ends seq without ordering it against other outcomes.
func (f *fence) done(seq uint64) {
	delete(f.inflight, seq)
}

// reset invalidates every outcome dispatched so far.
func (f *fence) reset() {
	f.issued++
	f.applied = f.issued
	f.inflight = make(map[uint64]struct{})
}

func (f *fence) loading() bool {
	return len(f.inflight) > 0
}
