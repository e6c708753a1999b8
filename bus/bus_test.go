package bus_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/remu/bus"
)

// stubDevice is a minimal MmioDevice for exercising Bus dispatch in
// isolation from any real device package.
type stubDevice struct {
	reads  []uint32
	writes []uint32
	value  uint32
}

func (s *stubDevice) ReadMMIO(off uint32, width uint8) (uint32, bool) {
	s.reads = append(s.reads, off)
	return s.value, true
}

func (s *stubDevice) WriteMMIO(off uint32, width uint8, v uint32) bool {
	s.writes = append(s.writes, off)
	s.value = v
	return true
}

var _ = Describe("Bus", func() {
	var b *bus.Bus

	BeforeEach(func() {
		b = bus.NewBus()
	})

	It("routes RAM accesses to the mapped region", func() {
		ram := bus.NewMemory(0x8000_0000, 0x1000)
		b.MapRAM(0x8000_0000, ram)

		Expect(b.Write32(0x8000_0004, 7)).To(BeTrue())
		v, ok := b.Read32(0x8000_0004)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(uint32(7)))
	})

	It("routes MMIO accesses with a region-relative offset", func() {
		dev := &stubDevice{}
		b.MapMMIO(0x1000_0000, 0x100, dev)

		b.Write32(0x1000_0008, 0xAB)
		Expect(dev.writes).To(ConsistOf(uint32(0x08)))

		b.Read32(0x1000_0010)
		Expect(dev.reads).To(ConsistOf(uint32(0x10)))
	})

	It("fails an access that lands in no region", func() {
		_, ok := b.Read32(0xDEAD_0000)
		Expect(ok).To(BeFalse())
	})

	It("picks the first matching region when none is supposed to overlap", func() {
		ram1 := bus.NewMemory(0x8000_0000, 0x10)
		ram2 := bus.NewMemory(0x9000_0000, 0x10)
		b.MapRAM(0x8000_0000, ram1)
		b.MapRAM(0x9000_0000, ram2)

		b.Write8(0x9000_0000, 0x5)
		v, ok := b.Read8(0x9000_0000)
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(uint8(0x5)))
	})
})
