package rr

import (
	"sync/atomic"
)

// RoundRobin rotates over a replaceable list of endpoints.
type RoundRobin struct {
	data  atomic.Pointer[[]string]
	index atomic.Uint32
}

func New(items []string) *RoundRobin {
	r := &RoundRobin{}
	r.Replace(items)
	return r
}

func (r *RoundRobin) Replace(items []string) {
	cp := make([]string, len(items))
	copy(cp, items)
	r.data.Store(&cp)
}

func (r *RoundRobin) Next() (string, bool) {
	items := *r.data.Load()
	if len(items) == 0 {
		return "", false
	}

	n := r.index.Add(1)
	return items[(int(n)-1)%len(items)], true
}

func (r *RoundRobin) Len() int {
	return len(*r.data.Load())
}
