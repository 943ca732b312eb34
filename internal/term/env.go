package term

// Domain is the static value range of a term. Unbounded domains are the
// zero value.
type Domain struct {
	Lo, Hi  uint64
	Bounded bool
}

func Exact(v uint64) Domain { return Domain{Lo: v, Hi: v, Bounded: true} }

func Range(lo, hi uint64) Domain { return Domain{Lo: lo, Hi: hi, Bounded: true} }

// Size returns the number of values in a bounded domain, saturating at
// the maximum int.
func (d Domain) Size() int {
	if !d.Bounded || d.Hi < d.Lo {
		return 0
	}
	n := d.Hi - d.Lo
	if n >= uint64(^uint(0)>>1) {
		return int(^uint(0) >> 1)
	}
	return int(n) + 1
}

// Binding is one parameter known to the resolver.
type Binding struct {
	Name     string
	Level    int // loop depth that declared the parameter
	Slot     int // runtime tuple index; -1 for known values
	Value    uint64
	Dom      Domain
	Known    bool
	Adaptive bool
}

// Env is an ordered, persistent parameter environment. With never mutates
// the receiver, so analysis branches can extend one environment
// independently.
type Env struct {
	bindings []Binding
}

// With returns a copy of the environment with b declared last.
func (e Env) With(b Binding) Env {
	next := make([]Binding, len(e.bindings)+1)
	copy(next, e.bindings)
	next[len(e.bindings)] = b
	return Env{bindings: next}
}

// Lookup returns the most recently declared binding with the given name.
func (e Env) Lookup(name string) (Binding, bool) {
	for i := len(e.bindings) - 1; i >= 0; i-- {
		if e.bindings[i].Name == name {
			return e.bindings[i], true
		}
	}
	return Binding{}, false
}

