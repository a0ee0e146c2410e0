package memory

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// FieldSeparator separates the address and the value of a dump line.
	FieldSeparator = " : "

	// LineSeparator terminates every dump line except the last one.
	LineSeparator = "\n"

	lineLength = AddressBits + len(FieldSeparator) + WordBits
)

// Fits tells if number can be represented with the given number of bits.
func Fits(number uint64, bits uint) bool {
	if bits >= 64 {
		return true
	}

	return number < 1<<bits
}

// EncodeFixedWidthBinary renders number in binary, left-padded with zeros to
// exactly width digits.
func EncodeFixedWidthBinary(number uint64, width uint) (string, error) {
	if !Fits(number, width) {
		return "", &OutOfRangeError{
			Role:   RoleNumber,
			Number: number,
			Bits:   width,
		}
	}

	return string(appendBinary(make([]byte, 0, width), number, width)), nil
}

// appendBinary assumes number fits in width bits.
func appendBinary(dst []byte, number uint64, width uint) []byte {
	for i := width; i > 0; i-- {
		dst = append(dst, '0'+byte(number>>(i-1)&1))
	}

	return dst
}

// FormatAll renders every word of the memory, one line per address. Lines
// are in ascending address order, or descending if reverse is set.
func (m *Memory) FormatAll(reverse bool) string {
	buf := make([]byte, 0, AddressSpaceSize*(lineLength+len(LineSeparator)))

	for i := uint32(0); i < AddressSpaceSize; i++ {
		address := i
		if reverse {
			address = MaxAddress - i
		}

		if i > 0 {
			buf = append(buf, LineSeparator...)
		}

		buf = m.appendLine(buf, address)
	}

	return string(buf)
}

// FormatRange renders the words in [start, end). Both bounds must be valid
// addresses. The result is empty if start is not below end.
func (m *Memory) FormatRange(start, end uint32) (string, error) {
	if err := checkAddress(start); err != nil {
		return "", err
	}

	if err := checkAddress(end); err != nil {
		return "", err
	}

	if start >= end {
		return "", nil
	}

	count := int(end - start)
	buf := make([]byte, 0, count*(lineLength+len(LineSeparator)))

	for address := start; address < end; address++ {
		if address > start {
			buf = append(buf, LineSeparator...)
		}

		buf = m.appendLine(buf, address)
	}

	return string(buf), nil
}

func (m *Memory) appendLine(dst []byte, address uint32) []byte {
	dst = appendBinary(dst, uint64(address), AddressBits)
	dst = append(dst, FieldSeparator...)
	dst = appendBinary(dst, uint64(m.cells[address]), WordBits)

	return dst
}

// DecodeLine parses one line of dump text.
func DecodeLine(line string) (address, value uint32, err error) {
	addressField, valueField, ok := strings.Cut(line, FieldSeparator)
	if !ok {
		return 0, 0, fmt.Errorf("missing %q separator", FieldSeparator)
	}

	address, err = parseBinaryField(addressField, AddressBits)
	if err != nil {
		return 0, 0, fmt.Errorf("address: %w", err)
	}

	value, err = parseBinaryField(valueField, WordBits)
	if err != nil {
		return 0, 0, fmt.Errorf("value: %w", err)
	}

	return address, value, nil
}

func parseBinaryField(field string, width int) (uint32, error) {
	if len(field) != width {
		return 0, fmt.Errorf("expected %d binary digits but got %q",
			width, field)
	}

	n, err := strconv.ParseUint(field, 2, 32)
	if err != nil {
		return 0, err
	}

	return uint32(n), nil
}

// Load reads dump text and writes every listed word into the memory. Lines
// may come in any order and may cover any subset of the address space.
// Blank lines are skipped. Words that are not listed keep their value.
func (m *Memory) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++

		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		address, value, err := DecodeLine(line)
		if err != nil {
			return &ParseError{Line: lineNumber, Err: err}
		}

		err = m.Write(address, value)
		if err != nil {
			return &ParseError{Line: lineNumber, Err: err}
		}
	}

	return scanner.Err()
}
