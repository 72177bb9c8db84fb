package calc

import (
	"math/big"
	"sync"
)

// Letters is the number of variables, one per letter A through Z.
const Letters = 26

// Snapshot is the value of every variable at one time. A nil entry is a
// variable that has not been assigned. Index 0 is A.
type Snapshot [Letters]*big.Float

// Persister stores variables between sessions.
type Persister interface {
	// Load reads stored variables. Letters that are missing or unreadable in
	// storage are nil.
	Load() (Snapshot, error)
	// Save replaces stored variables with s.
	Save(s Snapshot) error
}

// Vars is the table of variables A through Z. It is safe to use concurrently.
type Vars struct {
	mu    sync.RWMutex
	slots [Letters]slot
	p     Persister

	// io serializes loading and saving so that a reload can't land between
	// an assignment and the save that records it.
	io sync.Mutex
	// stored is what the persister last held as far as v knows. Guarded by
	// io.
	stored Snapshot
}

type slot struct {
	val *big.Float
	set bool
}

// NewVars creates an empty variable table. If p is not nil, Hydrate loads from
// it and Persist saves to it.
func NewVars(p Persister) *Vars {
	return &Vars{p: p}
}

func index(letter byte) (int, bool) {
	if letter < 'A' || letter > 'Z' {
		return 0, false
	}
	return int(letter - 'A'), true
}

func mustIndex(letter byte) int {
	k, ok := index(letter)
	if !ok {
		panic("calc: invalid variable " + string(rune(letter)))
	}
	return k
}

// Get returns a copy of the value of a variable. If the variable is not set,
// or letter is not A through Z, the result is nil, false.
func (v *Vars) Get(letter byte) (*big.Float, bool) {
	k, ok := index(letter)
	if !ok {
		return nil, false
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	s := v.slots[k]
	if !s.set {
		return nil, false
	}
	return new(big.Float).Copy(s.val), true
}

// IsSet returns whether a variable has a value.
func (v *Vars) IsSet(letter byte) bool {
	k, ok := index(letter)
	if !ok {
		return false
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.slots[k].set
}

// Set sets the value of a variable to a copy of x. Panics if letter is not A
// through Z.
func (v *Vars) Set(letter byte, x *big.Float) {
	k := mustIndex(letter)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.slots[k] = slot{val: new(big.Float).Copy(x), set: true}
}

// Clear unsets a variable.
func (v *Vars) Clear(letter byte) {
	k := mustIndex(letter)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.slots[k] = slot{}
}

// Reset unsets every variable.
func (v *Vars) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.slots = [Letters]slot{}
}

// Snapshot copies the values of all variables.
func (v *Vars) Snapshot() Snapshot {
	var r Snapshot
	v.mu.RLock()
	defer v.mu.RUnlock()
	for i, s := range v.slots {
		if s.set {
			r[i] = new(big.Float).Copy(s.val)
		}
	}
	return r
}

// Restore replaces all variables with the contents of s.
func (v *Vars) Restore(s Snapshot) {
	var slots [Letters]slot
	for i, x := range s {
		if x != nil {
			slots[i] = slot{val: new(big.Float).Copy(x), set: true}
		}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.slots = slots
}

// Hydrate replaces all variables with those loaded from the persister. Does
// nothing if v has no persister. On error, v is unchanged.
func (v *Vars) Hydrate() error {
	if v.p == nil {
		return nil
	}
	v.io.Lock()
	defer v.io.Unlock()
	s, err := v.p.Load()
	if err != nil {
		return err
	}
	v.Restore(s)
	v.stored = s
	return nil
}

// Reload is like Hydrate, but leaves v alone when the persister holds the same
// values v last loaded or saved, as after v's own saves. It reports whether
// the variables were replaced.
func (v *Vars) Reload() (bool, error) {
	if v.p == nil {
		return false, nil
	}
	v.io.Lock()
	defer v.io.Unlock()
	s, err := v.p.Load()
	if err != nil {
		return false, err
	}
	if s.Equal(&v.stored) {
		return false, nil
	}
	v.Restore(s)
	v.stored = s
	return true, nil
}

// Persist saves all variables to the persister. Does nothing if v has no
// persister.
func (v *Vars) Persist() error {
	if v.p == nil {
		return nil
	}
	v.io.Lock()
	defer v.io.Unlock()
	return v.save()
}

func (v *Vars) save() error {
	s := v.Snapshot()
	if err := v.p.Save(s); err != nil {
		return err
	}
	v.stored = s
	return nil
}

// commit assigns x to dst and then saves all variables, with no reload in
// between. A failed save is reported in saveErr and does not undo the
// assignment.
func (v *Vars) commit(dst byte, x operand, prec uint) (val *big.Float, saveErr, err error) {
	if v.p == nil {
		val, err = v.assign(dst, x, prec)
		return val, nil, err
	}
	v.io.Lock()
	defer v.io.Unlock()
	val, err = v.assign(dst, x, prec)
	if err != nil {
		return nil, nil, err
	}
	return val, v.save(), nil
}

// assign stores the value of x into the variable dst and returns the stored
// value. Reading x and writing dst happen under one lock.
func (v *Vars) assign(dst byte, x operand, prec uint) (*big.Float, error) {
	k := mustIndex(dst)
	v.mu.Lock()
	defer v.mu.Unlock()
	val := x.num
	if val == nil {
		j := mustIndex(x.name)
		if !v.slots[j].set {
			return nil, &NameError{Col: x.col, Name: x.name}
		}
		val = v.slots[j].val
	}
	r := newNum(prec).Set(val)
	v.slots[k] = slot{val: r, set: true}
	return new(big.Float).Copy(r), nil
}

// Equal reports whether s and t have the same letters set to equal values.
func (s *Snapshot) Equal(t *Snapshot) bool {
	for i, x := range s {
		y := t[i]
		switch {
		case x == nil && y == nil:
		case x == nil || y == nil || x.Cmp(y) != 0:
			return false
		}
	}
	return true
}
