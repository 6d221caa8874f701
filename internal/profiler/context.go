package profiler

import "sync/atomic"

// Context is an immutable snapshot of diagnostic state: the callbacks
// observing scope boundaries and the labels attributing them. Deriving
// methods return a new Context, so a captured value stays valid no
// matter what is installed later.
type Context struct {
	callbacks []Callback
	labels    map[string]string
}

var installed atomic.Pointer[Context]

func init() {
	installed.Store(&Context{})
}

// Current returns the installed diagnostic context.
func Current() *Context {
	return installed.Load()
}

// Install makes ctx the installed context and returns the previous
// one, so callers can restore it when their window of execution ends.
// A nil ctx installs an empty context.
func Install(ctx *Context) *Context {
	if ctx == nil {
		ctx = &Context{}
	}
	return installed.Swap(ctx)
}

// WithCallback returns a context that additionally notifies cb.
func (c *Context) WithCallback(cb Callback) *Context {
	callbacks := make([]Callback, len(c.callbacks), len(c.callbacks)+1)
	copy(callbacks, c.callbacks)
	return &Context{
		callbacks: append(callbacks, cb),
		labels:    c.labels,
	}
}

// WithLabel returns a context carrying an additional attribution
// label.
func (c *Context) WithLabel(key, value string) *Context {
	labels := make(map[string]string, len(c.labels)+1)
	for k, v := range c.labels {
		labels[k] = v
	}
	labels[key] = value
	return &Context{
		callbacks: c.callbacks,
		labels:    labels,
	}
}

// Labels returns the context's attribution labels. Callers must not
// mutate the result.
func (c *Context) Labels() map[string]string {
	return c.labels
}

func (c *Context) begin(ev Event) {
	ev.Labels = c.labels
	for _, cb := range c.callbacks {
		cb.Begin(ev)
	}
}

func (c *Context) end(ev Event) {
	ev.Labels = c.labels
	for _, cb := range c.callbacks {
		cb.End(ev)
	}
}
