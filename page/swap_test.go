package page

import (
	"bytes"
	"testing"

	"github.com/eduos-dev/kernel/abi"
)

func pattern(seed byte) []byte {
	buf := make([]byte, abi.PageSize)
	for i := range buf {
		buf[i] = seed + byte(i)
	}
	return buf
}

func TestSwapTableRoundTripRestoresExactContent(t *testing.T) {
	st, err := NewSwapTable(memDeviceForTest(t, 4))
	if err != nil {
		t.Fatalf("NewSwapTable: %v", err)
	}
	want := pattern(0x11)

	slot, err := st.SwapOut(want)
	if err != nil {
		t.Fatalf("SwapOut: %v", err)
	}

	got := make([]byte, abi.PageSize)
	if err := st.SwapIn(slot, got); err != nil {
		t.Fatalf("SwapIn: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("SwapIn did not restore the exact bytes written by SwapOut")
	}
}

func TestSwapTableFreesSlotAfterSwapIn(t *testing.T) {
	st, err := NewSwapTable(memDeviceForTest(t, 1))
	if err != nil {
		t.Fatalf("NewSwapTable: %v", err)
	}
	slot, err := st.SwapOut(pattern(1))
	if err != nil {
		t.Fatalf("SwapOut: %v", err)
	}
	if err := st.SwapIn(slot, make([]byte, abi.PageSize)); err != nil {
		t.Fatalf("SwapIn: %v", err)
	}
	// The single slot should be free again: a second SwapOut must succeed
	// and reuse it rather than reporting exhaustion.
	if _, err := st.SwapOut(pattern(2)); err != nil {
		t.Fatalf("SwapOut after SwapIn freed the slot: %v", err)
	}
}

func TestSwapTableExhaustionReportsSwapExhausted(t *testing.T) {
	st, err := NewSwapTable(memDeviceForTest(t, 2))
	if err != nil {
		t.Fatalf("NewSwapTable: %v", err)
	}
	if _, err := st.SwapOut(pattern(1)); err != nil {
		t.Fatalf("SwapOut 1: %v", err)
	}
	if _, err := st.SwapOut(pattern(2)); err != nil {
		t.Fatalf("SwapOut 2: %v", err)
	}
	if _, err := st.SwapOut(pattern(3)); !IsSwapExhausted(err) {
		t.Errorf("SwapOut beyond capacity: got %v, want IsSwapExhausted", err)
	}
}

func TestSwapTableSwapOutRejectsWrongSize(t *testing.T) {
	st, err := NewSwapTable(memDeviceForTest(t, 1))
	if err != nil {
		t.Fatalf("NewSwapTable: %v", err)
	}
	if _, err := st.SwapOut(make([]byte, abi.PageSize-1)); err == nil {
		t.Error("expected error for undersized buffer")
	}
}
