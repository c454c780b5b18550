package alias

import "github.com/jbweber/corral/api/v1alpha1"

// Definition is what an alias runs: a command inside an instance.
type Definition struct {
	Instance string
	Command  string
}

// Entry is a named Definition.
type Entry struct {
	Name string
	Definition
}

// Dict is an insertion-ordered set of aliases keyed by name.
type Dict struct {
	names []string
	defs  map[string]Definition
}

// NewDict returns an empty Dict.
func NewDict() *Dict {
	return &Dict{defs: map[string]Definition{}}
}

// Add appends name unless it already exists. It reports whether it was added.
func (d *Dict) Add(name string, def Definition) bool {
	if _, ok := d.defs[name]; ok {
		return false
	}
	d.names = append(d.names, name)
	d.defs[name] = def
	return true
}

// Remove deletes name and reports whether it existed.
func (d *Dict) Remove(name string) bool {
	if _, ok := d.defs[name]; !ok {
		return false
	}
	delete(d.defs, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i:i], d.names[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the definition for name.
func (d *Dict) Get(name string) (Definition, bool) {
	def, ok := d.defs[name]
	return def, ok
}

// Len returns the number of aliases.
func (d *Dict) Len() int {
	return len(d.names)
}

// Entries returns the aliases in definition order.
func (d *Dict) Entries() []Entry {
	out := make([]Entry, 0, len(d.names))
	for _, n := range d.names {
		out = append(out, Entry{Name: n, Definition: d.defs[n]})
	}
	return out
}

// Clone returns an independent copy.
func (d *Dict) Clone() *Dict {
	c := NewDict()
	for _, e := range d.Entries() {
		c.Add(e.Name, e.Definition)
	}
	return c
}

func dictFromList(list *v1alpha1.AliasList) *Dict {
	d := NewDict()
	for _, a := range list.Aliases {
		d.Add(a.Name, Definition{Instance: a.Instance, Command: a.Command})
	}
	return d
}

// Specs returns the aliases in definition order.
func (d *Dict) Specs() []v1alpha1.AliasSpec {
	out := make([]v1alpha1.AliasSpec, 0, len(d.names))
	for _, e := range d.Entries() {
		out = append(out, v1alpha1.AliasSpec{
			Name:     e.Name,
			Instance: e.Instance,
			Command:  e.Command,
		})
	}
	return out
}

func (d *Dict) toList() *v1alpha1.AliasList {
	list := v1alpha1.NewAliasList()
	list.Aliases = d.Specs()
	return list
}
