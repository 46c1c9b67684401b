package layout

type cacheEntry struct {
	Layout Struct
	Err    *LayoutError
}

type cache struct {
	byName map[string]*cacheEntry
}

func newCache() *cache {
	return &cache{byName: make(map[string]*cacheEntry, 16)}
}

func (c *cache) get(name string) (*cacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.byName[name]
	return e, ok
}

func (c *cache) put(name string, e *cacheEntry) {
	if c == nil {
		return
	}
	if e == nil {
		delete(c.byName, name)
		return
	}
	c.byName[name] = e
}
