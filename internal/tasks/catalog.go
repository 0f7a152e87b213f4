package tasks

// Catalog holds uploaded image bytes keyed by display name, preserving upload
// order so that ad hoc sessions present items deterministically.
type Catalog struct {
	names []string
	data  map[string][]byte
}

func NewCatalog() *Catalog {
	return &Catalog{
		data: make(map[string][]byte),
	}
}

// Add registers an upload. Re-adding a name replaces the bytes but keeps the
// original position.
func (c *Catalog) Add(name string, data []byte) {
	if _, ok := c.data[name]; !ok {
		c.names = append(c.names, name)
	}
	c.data[name] = data
}

func (c *Catalog) Get(name string) ([]byte, bool) {
	data, ok := c.data[name]
	return data, ok
}

// Names returns the display names in upload order.
func (c *Catalog) Names() []string {
	return c.names
}

func (c *Catalog) Len() int {
	return len(c.names)
}
