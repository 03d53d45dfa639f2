package waves

import "sync"

// rowPool runs a per-row task on persistent worker goroutines. Each worker
// owns a fixed round-robin share of the rows; run broadcasts a new step and
// waits until every worker has reported back.
type rowPool struct {
	mu   sync.Mutex
	cond *sync.Cond

	rows    [][]int
	task    func(row int)
	step    int
	pending int
	closed  bool

	wg sync.WaitGroup
}

// newRowPool starts workers for rows first..last inclusive.
func newRowPool(workers, first, last int) *rowPool {
	count := last - first + 1
	if workers > count {
		workers = count
	}
	if workers < 1 {
		workers = 1
	}
	p := &rowPool{rows: assignRows(workers, first, last)}
	p.cond = sync.NewCond(&p.mu)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.loop(i)
	}
	logger().Debug("wave row workers started", "workers", workers, "rows", count)
	return p
}

// assignRows distributes rows across workers in round robin fashion.
func assignRows(workers, first, last int) [][]int {
	rows := make([][]int, workers)
	for r := first; r <= last; r++ {
		idx := (r - first) % workers
		rows[idx] = append(rows[idx], r)
	}
	return rows
}

func (p *rowPool) loop(index int) {
	defer p.wg.Done()
	lastStep := 0
	p.mu.Lock()
	for {
		for p.step == lastStep && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		lastStep = p.step
		task := p.task
		rows := p.rows[index]
		p.mu.Unlock()

		for _, r := range rows {
			task(r)
		}

		p.mu.Lock()
		p.pending--
		if p.pending == 0 {
			p.cond.Broadcast()
		}
	}
}

// run executes task for every assigned row and returns once all workers are done.
func (p *rowPool) run(task func(row int)) {
	p.mu.Lock()
	p.task = task
	p.pending = len(p.rows)
	p.step++
	p.cond.Broadcast()
	for p.pending > 0 {
		p.cond.Wait()
	}
	p.task = nil
	p.mu.Unlock()
}

func (p *rowPool) close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}
