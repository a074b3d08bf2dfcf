package crawler

// Frontier owns the queue of pending URLs and the set of visited URLs.
// URLs must be normalized before they reach the frontier; it compares
// them by plain string equality. The reference crawl runs a single
// logical flow, so the frontier is deliberately unsynchronized.
type Frontier struct {
	visited map[string]struct{}
	queued  map[string]struct{}
	queue   []string
}

// NewFrontier creates an empty frontier
func NewFrontier() *Frontier {
	return &Frontier{
		visited: make(map[string]struct{}),
		queued:  make(map[string]struct{}),
	}
}

// Enqueue appends url to the tail of the queue. It is a no-op when the
// URL was already visited or is already pending; it reports whether the
// URL was added.
func (f *Frontier) Enqueue(url string) bool {
	if _, ok := f.visited[url]; ok {
		return false
	}
	if _, ok := f.queued[url]; ok {
		return false
	}

	f.queued[url] = struct{}{}
	f.queue = append(f.queue, url)
	return true
}

// Dequeue removes and returns the head of the queue
func (f *Frontier) Dequeue() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}

	url := f.queue[0]
	f.queue = f.queue[1:]
	delete(f.queued, url)
	return url, true
}

// MarkVisited moves url into the visited set permanently, regardless of
// whether its fetch succeeded.
func (f *Frontier) MarkVisited(url string) {
	f.visited[url] = struct{}{}
	delete(f.queued, url)
}

// IsVisited reports whether url has been visited
func (f *Frontier) IsVisited(url string) bool {
	_, ok := f.visited[url]
	return ok
}

// QueueLen returns the number of pending URLs
func (f *Frontier) QueueLen() int {
	return len(f.queue)
}

// VisitedCount returns the number of visited URLs
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}

// Seed enqueues the priority paths resolved against the crawl root.
// Seeding is idempotent: paths already visited or pending are skipped.
func (f *Frontier) Seed(norm *Normalizer, root string, paths []string) int {
	added := 0
	for _, p := range paths {
		u, err := norm.Normalize(p, root)
		if err != nil {
			continue
		}
		if f.Enqueue(u) {
			added++
		}
	}
	return added
}

// Snapshot copies the frontier into a serializable state
func (f *Frontier) Snapshot() FrontierState {
	visited := make([]string, 0, len(f.visited))
	for u := range f.visited {
		visited = append(visited, u)
	}

	queue := make([]string, len(f.queue))
	copy(queue, f.queue)

	return FrontierState{Visited: visited, Queue: queue}
}

// Restore loads a previously saved state into the frontier. Queue order
// is preserved; entries that would violate the visited/queue disjointness
// invariant are dropped.
func (f *Frontier) Restore(state FrontierState) {
	for _, u := range state.Visited {
		f.visited[u] = struct{}{}
	}
	for _, u := range state.Queue {
		f.Enqueue(u)
	}
}
