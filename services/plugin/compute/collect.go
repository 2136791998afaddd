package compute

// Namespace is a named group of collected or computed values
type Namespace struct {
	Name  string
	Items map[string]Result
}

// NewNamespace creates an empty namespace
func NewNamespace(name string) Namespace {
	return Namespace{
		Name:  name,
		Items: make(map[string]Result),
	}
}

// Collect is the ordered, append-only sequence of namespaces expressions are evaluated
// against. Lookups scan the sealed namespaces in order and then the open one, if any; the
// first namespace defining the name wins. Sealed namespaces are never modified.
//
// A Collect belongs to a single check run and is not safe for concurrent use.
type Collect struct {
	namespaces []Namespace
	open       *Namespace
}

// NewCollect creates a collect sequence holding the provided namespaces, in order
func NewCollect(namespaces ...Namespace) *Collect {
	c := &Collect{}
	for _, ns := range namespaces {
		c.Append(ns)
	}

	return c
}

// Append seals a namespace at the end of the sequence
func (c *Collect) Append(ns Namespace) {
	if ns.Items == nil {
		ns.Items = make(map[string]Result)
	}
	c.namespaces = append(c.namespaces, ns)
}

// Begin opens a namespace that Publish writes into. A namespace still open is sealed first.
func (c *Collect) Begin(name string) {
	c.Seal()

	ns := NewNamespace(name)
	c.open = &ns
}

// Publish stores a value into the open namespace, opening an unnamed one if needed
func (c *Collect) Publish(key string, value Result) {
	if c.open == nil {
		c.Begin("")
	}
	if _, exists := c.open.Items[key]; exists {
		log.Warn("overwriting published value", "namespace", c.open.Name, "key", key)
	}

	c.open.Items[key] = value
}

// Seal appends the open namespace to the sequence. It is a no-op when none is open.
func (c *Collect) Seal() {
	if c.open == nil {
		return
	}

	c.namespaces = append(c.namespaces, *c.open)
	c.open = nil
}

// Lookup returns the first value stored under name
func (c *Collect) Lookup(name string) (Result, bool) {
	for _, ns := range c.namespaces {
		if value, ok := ns.Items[name]; ok {
			return value, true
		}
	}
	if c.open != nil {
		if value, ok := c.open.Items[name]; ok {
			return value, true
		}
	}

	return nil, false
}

// Namespaces returns the sealed namespaces, in order
func (c *Collect) Namespaces() []Namespace {
	out := make([]Namespace, len(c.namespaces))
	copy(out, c.namespaces)

	return out
}

// Len returns the number of sealed namespaces
func (c *Collect) Len() int {
	return len(c.namespaces)
}
