package observability

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type serverTimingKey struct{}

// ServerTiming accumulates named durations for the Server-Timing header.
// Durations recorded under the same name are summed.
type ServerTiming struct {
	mu    sync.Mutex
	order []string
	dur   map[string]time.Duration
}

func NewServerTiming() *ServerTiming {
	return &ServerTiming{dur: map[string]time.Duration{}}
}

func WithServerTiming(ctx context.Context, st *ServerTiming) context.Context {
	return context.WithValue(ctx, serverTimingKey{}, st)
}

func ServerTimingFrom(ctx context.Context) *ServerTiming {
	st, _ := ctx.Value(serverTimingKey{}).(*ServerTiming)
	return st
}

func (st *ServerTiming) Add(name string, d time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.dur[name]; !ok {
		st.order = append(st.order, name)
	}
	st.dur[name] += d
}

// Header renders the metrics as `name;dur=<ms>` entries in first-seen order.
func (st *ServerTiming) Header() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	parts := make([]string, 0, len(st.order))
	for _, name := range st.order {
		parts = append(parts, fmt.Sprintf("%s;dur=%.3f", name, float64(st.dur[name].Microseconds())/1000))
	}
	return strings.Join(parts, ", ")
}
