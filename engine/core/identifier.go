package core

// IDAllocator hands out asset IDs. IDs start at 0 and are never reused within a run,
// so after N calls to Next the issued set is exactly [0, N).
type IDAllocator struct {
	next uint32
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns the next free ID.
func (a *IDAllocator) Next() uint32 {
	id := a.next
	a.next++
	return id
}

// Count is the number of IDs issued so far.
func (a *IDAllocator) Count() uint32 {
	return a.next
}
