package cache

// Null is the disabled cache used when capacity is zero.
type Null struct{}

func (Null) Get(key uint64) ([]byte, bool) { return nil, false }

func (Null) Add(key uint64, payload []byte) bool { return false }

func (Null) Remove(key uint64) {}

func (Null) Purge() {}

func (Null) Count() int { return 0 }

func (Null) Stats() Stats { return Stats{} }
