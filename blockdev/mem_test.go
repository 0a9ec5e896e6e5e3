package blockdev

import (
	"bytes"
	"testing"

	"github.com/eduos-dev/kernel/abi"
)

func TestMemDeviceSizeSectors(t *testing.T) {
	dev := NewMemDevice(16)
	got, err := dev.SizeSectors()
	if err != nil {
		t.Fatalf("SizeSectors: %v", err)
	}
	if got != 16 {
		t.Errorf("SizeSectors() = %d, want 16", got)
	}
}

func TestMemDeviceWriteThenReadRoundTrips(t *testing.T) {
	dev := NewMemDevice(4)
	want := bytes.Repeat([]byte{0xab}, abi.SectorSize)
	if err := dev.WriteSector(2, want); err != nil {
		t.Fatalf("WriteSector: %v", err)
	}

	got := make([]byte, abi.SectorSize)
	if err := dev.ReadSector(2, got); err != nil {
		t.Fatalf("ReadSector: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Error("ReadSector did not return the bytes written by WriteSector")
	}

	other := make([]byte, abi.SectorSize)
	if err := dev.ReadSector(0, other); err != nil {
		t.Fatalf("ReadSector: %v", err)
	}
	if !bytes.Equal(other, make([]byte, abi.SectorSize)) {
		t.Error("an untouched sector should read back as zeroed")
	}
}

func TestMemDeviceRejectsWrongSizedBuffer(t *testing.T) {
	dev := NewMemDevice(2)
	if err := dev.ReadSector(0, make([]byte, abi.SectorSize-1)); err == nil {
		t.Error("ReadSector with an undersized buffer should fail")
	}
	if err := dev.WriteSector(0, make([]byte, abi.SectorSize+1)); err == nil {
		t.Error("WriteSector with an oversized buffer should fail")
	}
}

func TestMemDeviceRejectsOutOfRangeSector(t *testing.T) {
	dev := NewMemDevice(1)
	buf := make([]byte, abi.SectorSize)
	if err := dev.ReadSector(1, buf); err == nil {
		t.Error("ReadSector past the device's sector count should fail")
	}
	if err := dev.WriteSector(5, buf); err == nil {
		t.Error("WriteSector past the device's sector count should fail")
	}
}
