package memory_test

import (
	"errors"
	"slices"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mimavm/mima/memory"
)

var _ = Describe("EncodeFixedWidthBinary", func() {
	It("should pad with leading zeros", func() {
		Expect(memory.EncodeFixedWidthBinary(5, 4)).To(Equal("0101"))
		Expect(memory.EncodeFixedWidthBinary(0, 4)).To(Equal("0000"))
		Expect(memory.EncodeFixedWidthBinary(15, 4)).To(Equal("1111"))
		Expect(memory.EncodeFixedWidthBinary(42, 24)).
			To(Equal("000000000000000000101010"))
	})

	It("should render width zero as empty text", func() {
		Expect(memory.EncodeFixedWidthBinary(0, 0)).To(Equal(""))
	})

	It("should render any number in 64 bits", func() {
		s, err := memory.EncodeFixedWidthBinary(^uint64(0), 64)

		Expect(err).ToNot(HaveOccurred())
		Expect(s).To(Equal(strings.Repeat("1", 64)))
	})

	It("should reject numbers wider than the width", func() {
		_, err := memory.EncodeFixedWidthBinary(16, 4)

		var rangeErr *memory.OutOfRangeError
		Expect(errors.As(err, &rangeErr)).To(BeTrue())
		Expect(rangeErr.Role).To(Equal(memory.RoleNumber))
		Expect(rangeErr.Max()).To(Equal(uint64(15)))

		_, err = memory.EncodeFixedWidthBinary(1, 0)
		Expect(err).To(MatchError(memory.ErrOutOfRange))
	})
})

var _ = Describe("Fits", func() {
	It("should check the upper bound", func() {
		Expect(memory.Fits(15, 4)).To(BeTrue())
		Expect(memory.Fits(16, 4)).To(BeFalse())
		Expect(memory.Fits(0, 0)).To(BeTrue())
		Expect(memory.Fits(^uint64(0), 64)).To(BeTrue())
		Expect(memory.Fits(^uint64(0), 100)).To(BeTrue())
	})
})

var _ = Describe("Formatting", func() {
	var m *memory.Memory

	BeforeEach(func() {
		m = memory.NewMemory()
	})

	It("should pair the address and the value of a line", func() {
		Expect(m.Write(3, 42)).To(Succeed())

		text, err := m.FormatRange(3, 4)
		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(Equal(
			"00000000000000000011 : 000000000000000000101010"))

		address, value, err := memory.DecodeLine(text)
		Expect(err).ToNot(HaveOccurred())
		Expect(address).To(Equal(uint32(3)))
		Expect(value).To(Equal(uint32(42)))
	})

	It("should format a range without a trailing separator", func() {
		Expect(m.Write(1, 1)).To(Succeed())

		text, err := m.FormatRange(0, 3)

		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(Equal(
			"00000000000000000000 : 000000000000000000000000\n" +
				"00000000000000000001 : 000000000000000000000001\n" +
				"00000000000000000010 : 000000000000000000000000"))
	})

	It("should return empty text for an empty range", func() {
		text, err := m.FormatRange(5, 5)
		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(BeEmpty())

		text, err = m.FormatRange(9, 2)
		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(BeEmpty())
	})

	It("should reject range bounds outside the address space", func() {
		_, err := m.FormatRange(0, memory.AddressSpaceSize)
		Expect(err).To(MatchError(memory.ErrOutOfRange))

		_, err = m.FormatRange(memory.AddressSpaceSize, 0)
		Expect(err).To(MatchError(memory.ErrOutOfRange))
	})

	It("should format up to the last address", func() {
		Expect(m.Write(memory.MaxAddress-1, memory.MaxWord)).To(Succeed())

		text, err := m.FormatRange(memory.MaxAddress-1, memory.MaxAddress)

		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(Equal(
			"11111111111111111110 : 111111111111111111111111"))
	})

	Context("when dumping the whole memory", func() {
		BeforeEach(func() {
			for address := uint32(0); address < memory.AddressSpaceSize; address += 97 {
				Expect(m.Write(address, (address*7919)&memory.MaxWord)).
					To(Succeed())
			}
		})

		It("should list every address in ascending order", func() {
			lines := strings.Split(m.FormatAll(false), memory.LineSeparator)

			Expect(lines).To(HaveLen(memory.AddressSpaceSize))
			Expect(lines[0]).To(Equal(
				"00000000000000000000 : 000000000000000000000000"))
			Expect(lines[97]).To(HavePrefix("00000000000001100001 : "))
			Expect(lines[memory.MaxAddress]).To(HavePrefix(
				"11111111111111111111 : "))

			for _, i := range []int{0, 97, 194, 1000 * 97} {
				address, value, err := memory.DecodeLine(lines[i])
				Expect(err).ToNot(HaveOccurred())
				Expect(address).To(Equal(uint32(i)))
				Expect(value).To(Equal((uint32(i) * 7919) & memory.MaxWord))
			}
		})

		It("should keep address and value paired in reverse order", func() {
			forward := strings.Split(m.FormatAll(false), memory.LineSeparator)
			reverse := strings.Split(m.FormatAll(true), memory.LineSeparator)

			address, value, err := memory.DecodeLine(reverse[memory.MaxAddress-97])
			Expect(err).ToNot(HaveOccurred())
			Expect(address).To(Equal(uint32(97)))
			Expect(value).To(Equal(uint32(97 * 7919)))

			slices.Reverse(reverse)
			Expect(reverse).To(Equal(forward))
		})

		It("should produce the same text twice", func() {
			Expect(m.FormatAll(false)).To(Equal(m.FormatAll(false)))
		})

		It("should not end with a line separator", func() {
			text := m.FormatAll(true)

			Expect(text).ToNot(HaveSuffix(memory.LineSeparator))
			Expect(text).ToNot(HavePrefix(memory.LineSeparator))
			Expect(text).To(HaveSuffix(
				"00000000000000000000 : 000000000000000000000000"))
		})
	})
})

var _ = Describe("Load", func() {
	var m *memory.Memory

	BeforeEach(func() {
		m = memory.NewMemory()
	})

	It("should restore a dumped range", func() {
		Expect(m.Write(3, 42)).To(Succeed())
		Expect(m.Write(4, memory.MaxWord)).To(Succeed())
		text, err := m.FormatRange(2, 6)
		Expect(err).ToNot(HaveOccurred())

		restored := memory.NewMemory()
		Expect(restored.Load(strings.NewReader(text))).To(Succeed())

		Expect(restored.Read(3)).To(Equal(uint32(42)))
		Expect(restored.Read(4)).To(Equal(uint32(memory.MaxWord)))
		want, err := m.FormatRange(0, 10)
		Expect(err).ToNot(HaveOccurred())
		Expect(restored.FormatRange(0, 10)).To(Equal(want))
	})

	It("should accept lines in any order, blank lines and CRLF", func() {
		text := "00000000000000000101 : 000000000000000000000111\r\n" +
			"\n" +
			"00000000000000000001 : 000000000000000000000001\r\n"

		Expect(m.Load(strings.NewReader(text))).To(Succeed())

		Expect(m.Read(5)).To(Equal(uint32(7)))
		Expect(m.Read(1)).To(Equal(uint32(1)))
	})

	It("should report the line of a malformed entry", func() {
		text := "00000000000000000001 : 000000000000000000000001\n" +
			"0000000000000000001 : 000000000000000000000001\n"

		err := m.Load(strings.NewReader(text))

		var parseErr *memory.ParseError
		Expect(errors.As(err, &parseErr)).To(BeTrue())
		Expect(parseErr.Line).To(Equal(2))
		Expect(m.Read(1)).To(Equal(uint32(1)))
	})

	It("should reject non-binary digits and missing separators", func() {
		_, _, err := memory.DecodeLine(
			"0000000000000000000a : 000000000000000000000001")
		Expect(err).To(HaveOccurred())

		_, _, err = memory.DecodeLine(
			"00000000000000000000:000000000000000000000001")
		Expect(err).To(MatchError(ContainSubstring("separator")))

		_, _, err = memory.DecodeLine(
			"00000000000000000000 : 00000000000000000000000")
		Expect(err).To(MatchError(ContainSubstring("value")))
	})
})
