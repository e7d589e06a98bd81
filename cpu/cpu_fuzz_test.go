package cpu

import (
	"testing"
)

func FuzzAddSub(f *testing.F) {
	f.Add(uint16(0), uint16(0))
	f.Add(uint16(0xffff), uint16(1))
	f.Add(uint16(3), uint16(5))
	f.Add(uint16(0x8000), uint16(0x8000))

	f.Fuzz(func(t *testing.T, a, b uint16) {
		cpu := newTestCpu(MakeCodeAlu(OP_ADD, 3, 1, 2), MakeCodeAlu(OP_SUB, 4, 1, 2))
		cpu.Register[1] = a
		cpu.Register[2] = b

		if err := cpu.Tick(); err != nil {
			t.Fatal(err)
		}
		sum := uint32(a) + uint32(b)
		if cpu.Carry != (sum > 0xffff) {
			t.Errorf("ADD %#x+%#x carry %v", a, b, cpu.Carry)
		}
		if cpu.Zero != (uint16(sum) == 0) {
			t.Errorf("ADD %#x+%#x zero %v", a, b, cpu.Zero)
		}
		if cpu.Register[3] != uint16(sum) {
			t.Errorf("ADD %#x+%#x = %#x", a, b, cpu.Register[3])
		}

		if err := cpu.Tick(); err != nil {
			t.Fatal(err)
		}
		if cpu.Carry != (a < b) {
			t.Errorf("SUB %#x-%#x carry %v", a, b, cpu.Carry)
		}
		if cpu.Zero != (a == b) {
			t.Errorf("SUB %#x-%#x zero %v", a, b, cpu.Zero)
		}
		if cpu.Register[4] != a-b {
			t.Errorf("SUB %#x-%#x = %#x", a, b, cpu.Register[4])
		}
	})
}

func FuzzCmp(f *testing.F) {
	f.Add(uint16(1), uint16(2), uint16(0x1234))
	f.Add(uint16(2), uint16(2), uint16(0))

	f.Fuzz(func(t *testing.T, a, b, other uint16) {
		cpu := newTestCpu(MakeCodeCmp(1, 2))
		for n := range REG_SP {
			cpu.Register[n] = other + uint16(n)
		}
		cpu.Register[1] = a
		cpu.Register[2] = b
		before := cpu.Register

		if err := cpu.Tick(); err != nil {
			t.Fatal(err)
		}

		for n := range REG_PC {
			if cpu.Register[n] != before[n] {
				t.Errorf("CMP changed R%d", n)
			}
		}
		switch {
		case a == b:
			if !cpu.Zero || cpu.Carry {
				t.Errorf("CMP %#x == %#x: z=%v c=%v", a, b, cpu.Zero, cpu.Carry)
			}
		case a < b:
			if cpu.Zero || !cpu.Carry {
				t.Errorf("CMP %#x < %#x: z=%v c=%v", a, b, cpu.Zero, cpu.Carry)
			}
		default:
			if cpu.Zero || cpu.Carry {
				t.Errorf("CMP %#x > %#x: z=%v c=%v", a, b, cpu.Zero, cpu.Carry)
			}
		}
	})
}

func FuzzPushPop(f *testing.F) {
	f.Add(uint16(0x1234), 3, 7)
	f.Add(uint16(0), 0, 13)

	f.Fuzz(func(t *testing.T, value uint16, rn, rd int) {
		rn &= 0xf
		rd &= 0xf
		if rn == REG_SP || rn == REG_PC || rd == REG_SP || rd == REG_PC {
			t.Skip()
		}

		cpu := newTestCpu(MakeCodePush(rn), MakeCodePop(rd))
		cpu.Register[rn] = value

		for range 2 {
			if err := cpu.Tick(); err != nil {
				t.Fatal(err)
			}
		}

		if cpu.Sp() != STACK_TOP {
			t.Errorf("SP %#x", cpu.Sp())
		}
		if cpu.Register[rd] != value {
			t.Errorf("R%d = %#x, want %#x", rd, cpu.Register[rd], value)
		}
	})
}
