package engine

// Pool lends engines to goroutines, one goroutine per engine at a time.
// Engines are created lazily, up to the pool size, and live as long as the
// pool. Each keeps its own bootstrap result.
type Pool struct {
	opts  Options
	slots chan *Engine
}

// NewPool returns a pool of at most size engines.
func NewPool(size int, opts Options) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{opts: opts, slots: make(chan *Engine, size)}
	for i := 0; i < size; i++ {
		p.slots <- nil
	}
	return p
}

// Size returns the maximum number of engines.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Do runs fn with an engine that no other goroutine holds until fn returns.
// It blocks while every engine is in use.
func (p *Pool) Do(fn func(*Engine) error) error {
	e := <-p.slots
	if e == nil {
		e = New(p.opts)
	}
	defer func() { p.slots <- e }()
	return fn(e)
}
