package fdlc

// Env maps source identifiers to signed frame slots. Positive slots
// are locals (addressed [EBP - 4*i]); negative slots are parameters
// or the self-closure (addressed [EBP + 4*j]) — see spec §4.2.
//
// Env is immutable: Push returns a new Env holding a fresh copy of the
// old one's bindings, so that compiling the two arms of an If, or the
// sibling productions of a Let chain, can each extend a common base
// environment without clobbering each other's bindings.
type Env struct {
	bindings []envBinding
}

type envBinding struct {
	id   string
	slot int
}

// EmptyEnv is the environment with no bindings.
func EmptyEnv() Env {
	return Env{}
}

// EnvPair is one (identifier, slot) binding, used by FromList to seed
// a custom layout.
type EnvPair struct {
	ID   string
	Slot int
}

// FromList seeds an environment directly with possibly-negative
// slots, used to lay out a closure's parameters (negative) and
// captures (positive) in one shot (spec §4.2, §4.8).
func FromList(pairs []EnvPair) Env {
	e := Env{bindings: make([]envBinding, 0, len(pairs))}
	for _, p := range pairs {
		e.bindings = append(e.bindings, envBinding{id: p.ID, slot: p.Slot})
	}
	return e
}

// Push allocates the next positive slot — one greater than the
// current maximum positive slot, starting at 1 — and returns the new
// environment together with the slot assigned.
func (e Env) Push(id string) (int, Env) {
	slot := e.envMaxPositive() + 1
	next := Env{bindings: make([]envBinding, len(e.bindings)+1)}
	copy(next.bindings, e.bindings)
	next.bindings[len(e.bindings)] = envBinding{id: id, slot: slot}
	return slot, next
}

// Lookup returns the slot bound to id, most-recent binding wins.
func (e Env) Lookup(id string) (int, bool) {
	for i := len(e.bindings) - 1; i >= 0; i-- {
		if e.bindings[i].id == id {
			return e.bindings[i].slot, true
		}
	}
	return 0, false
}

func (e Env) envMaxPositive() int {
	max := 0
	for _, b := range e.bindings {
		if b.slot > max {
			max = b.slot
		}
	}
	return max
}

// EnvMax is the maximum positive slot ever assigned in env, used to
// size a closure prologue's frame (spec §4.2, §4.8).
func EnvMax(e Env) int {
	return e.envMaxPositive()
}

// slotAddr turns a slot index into the indirect operand addressing
// it, per the mapping in spec §4.2: positive i -> [EBP - 4i], negative
// -j -> [EBP + 4j].
func slotAddr(slot int) Indirect {
	if slot >= 0 {
		return Indirect{Base: RegEBP, Disp: -4 * slot}
	}
	return Indirect{Base: RegEBP, Disp: 4 * -slot}
}
