package forward

import (
	"container/heap"
	"fmt"
	"sync"
)

// ResultWriter consumes finished traces. WriteTrace is called from a
// single goroutine in strictly ascending (il, xl) order.
type ResultWriter interface {
	WriteTrace(res *TraceResult) error
}

// assignment is one unit of work: a trace position with its labels.
type assignment struct {
	seq    int
	il, xl int
	i, j   int
	x, y   float64
}

// resultHeap orders finished traces by their sequence number so the
// writer can emit them in (il, xl) order regardless of which worker
// finishes first.
type resultHeap []*TraceResult

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(a, b int) bool  { return h[a].seq() < h[b].seq() }
func (h resultHeap) Swap(a, b int)       { h[a], h[b] = h[b], h[a] }
func (h *resultHeap) Push(x interface{}) { *h = append(*h, x.(*TraceResult)) }
func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// seq recovers the ordering key stored on the result.
func (r *TraceResult) seq() int { return r.order }

// runScheduler fans the assignments out over nWorkers producers and
// drains their results through a min-heap into the writer, preserving
// assignment order. The first producer or writer error aborts the
// batch.
func runScheduler(assignments []assignment, nWorkers int,
	produce func(asg assignment) *TraceResult, writer ResultWriter, progress *monitor) error {

	if nWorkers < 1 {
		nWorkers = 1
	}
	jobs := make(chan assignment)
	results := make(chan *TraceResult, 2*nWorkers)
	done := make(chan struct{})

	var wg sync.WaitGroup
	for w := 0; w < nWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for asg := range jobs {
				res := produce(asg)
				res.order = asg.seq
				select {
				case results <- res:
				case <-done:
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, asg := range assignments {
			select {
			case jobs <- asg:
			case <-done:
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var pending resultHeap
	heap.Init(&pending)
	next := 0
	var firstErr error
	for res := range results {
		if res.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("trace (%d, %d): %w", res.I, res.J, res.Err)
			close(done)
			break
		}
		heap.Push(&pending, res)
		for pending.Len() > 0 && pending[0].seq() == next {
			out := heap.Pop(&pending).(*TraceResult)
			if err := writer.WriteTrace(out); err != nil {
				firstErr = fmt.Errorf("writing trace (%d, %d): %w", out.I, out.J, err)
				close(done)
				break
			}
			next++
			progress.tick()
		}
		if firstErr != nil {
			break
		}
	}
	if firstErr != nil {
		// Unblock and drop whatever the workers still produce.
		go func() {
			for range results {
			}
		}()
		wg.Wait()
		return firstErr
	}
	return nil
}

// monitor draws the 50-tick progress bar of a batch.
type monitor struct {
	total     int
	completed int
	ticks     int
}

func newMonitor(total int) *monitor {
	fmt.Println("\n  0%       20%       40%       60%       80%      100%")
	fmt.Println("  |    |    |    |    |    |    |    |    |    |    |  ")
	fmt.Print("  ")
	return &monitor{total: total}
}

func (m *monitor) tick() {
	m.completed++
	want := m.completed * 50 / m.total
	for m.ticks < want {
		fmt.Print("^")
		m.ticks++
	}
	if m.completed == m.total {
		fmt.Println()
	}
}
