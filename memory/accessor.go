package memory

// An Accessor reads and writes words by address. A Memory is an Accessor.
// Components that share a Memory between goroutines hand out Accessors that
// serialize the calls instead of the Memory itself.
type Accessor interface {
	Read(address uint32) (uint32, error)
	Write(address, value uint32) error
}

var _ Accessor = (*Memory)(nil)
