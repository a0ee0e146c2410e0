// Package memory implements the main memory of MIMA, a minimal von Neumann
// machine with a 20-bit address space and 24-bit words.
package memory

const (
	// AddressBits is the width of a MIMA address.
	AddressBits = 20

	// WordBits is the width of a MIMA word.
	WordBits = 24

	// AddressSpaceSize is the number of addressable words.
	AddressSpaceSize = 1 << AddressBits

	// MaxAddress is the highest valid address.
	MaxAddress = AddressSpaceSize - 1

	// MaxWord is the highest value a word can hold.
	MaxWord = 1<<WordBits - 1
)

// A Memory keeps the words of a MIMA machine.
//
// All 2^20 words are allocated when the memory is created and every word
// starts at 0. Addresses and values are validated on every access, so the
// content of a Memory is always within the 24-bit word range.
//
// A Memory is not safe for concurrent use. An embedder that shares it
// between goroutines must serialize all accesses.
type Memory struct {
	HookableBase

	cells [AddressSpaceSize]uint32
}

// NewMemory creates a zero-initialized memory.
func NewMemory() *Memory {
	return new(Memory)
}

// Read returns the word stored at address.
func (m *Memory) Read(address uint32) (uint32, error) {
	if err := checkAddress(address); err != nil {
		return 0, err
	}

	value := m.cells[address]

	m.InvokeHook(HookCtx{
		Domain: m,
		Pos:    HookPosRead,
		Item:   Access{Address: address, Value: value},
	})

	return value, nil
}

// Write stores value at address. Nothing is written if either the address or
// the value is out of range.
func (m *Memory) Write(address, value uint32) error {
	if err := checkAddress(address); err != nil {
		return err
	}

	if !Fits(uint64(value), WordBits) {
		return &OutOfRangeError{
			Role:   RoleValue,
			Number: uint64(value),
			Bits:   WordBits,
		}
	}

	previous := m.cells[address]
	m.cells[address] = value

	m.InvokeHook(HookCtx{
		Domain: m,
		Pos:    HookPosWrite,
		Item:   Access{Address: address, Value: value},
		Detail: previous,
	})

	return nil
}

func checkAddress(address uint32) error {
	if Fits(uint64(address), AddressBits) {
		return nil
	}

	return &OutOfRangeError{
		Role:   RoleAddress,
		Number: uint64(address),
		Bits:   AddressBits,
	}
}

// NonZeroWords counts the words that hold a value other than 0. It does not
// invoke read hooks.
func (m *Memory) NonZeroWords() int {
	count := 0

	for _, value := range m.cells[:] {
		if value != 0 {
			count++
		}
	}

	return count
}
