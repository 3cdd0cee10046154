package policy

import "sync"

// Cache memoizes compiled policies by document identity. Two documents
// with identical content compile and cache independently. Concurrent
// misses on the same handle may both compile; compilation is pure and
// idempotent, so the race is benign and the first stored result wins.
type Cache struct {
	entries sync.Map // *Document -> *DecisionPolicy
}

// NewCache returns an empty policy cache.
func NewCache() *Cache {
	return &Cache{}
}

// GetOrCompile returns the compiled policy for doc, compiling on first
// use. A nil document compiles to the all-defaults policy and is not
// cached.
func (c *Cache) GetOrCompile(doc *Document) *DecisionPolicy {
	if doc == nil {
		return Compile(nil)
	}
	if v, ok := c.entries.Load(doc); ok {
		return v.(*DecisionPolicy)
	}
	compiled := Compile(doc.Raw())
	actual, _ := c.entries.LoadOrStore(doc, compiled)
	return actual.(*DecisionPolicy)
}

// Len reports how many documents have been compiled so far.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
