//go:build linux && !tinygo

// Package spi adapts a raw SPI character device into the single-byte
// full-duplex sdep.Bus the Framer drives. The Linux build talks to
// /dev/spidevX.Y via the standard spidev ioctls.
package spi

import (
	"reflect"
	"syscall"
	"unsafe"

	ioctl "github.com/daedaluz/goioctl"
)

const spiIOCMagic = 'k'

type spiIOCTransfer struct {
	txBuf uint64
	rxBuf uint64

	length  uint32
	speedHz uint32

	delayUsecs     uint16
	bitsPerWord    uint8
	csChange       uint8
	txNBits        uint8
	rxNBits        uint8
	wordDelayUsecs uint8
	pad            uint8
}

var (
	spiIOCWrMaxSpeedHz   = ioctl.IOW(spiIOCMagic, 4, 4)
	spiIOCWrBitsPerWord  = ioctl.IOW(spiIOCMagic, 3, 1)
	spiIOCWrMode32       = ioctl.IOW(spiIOCMagic, 5, 4)
	spiIOCMessage        = ioctl.IOW(spiIOCMagic, 0, unsafe.Sizeof(spiIOCTransfer{}))
)

// BusSpeedHz matches the bus speed the BLE co-processor's sample
// driver uses (the SDEP.md spec lists 2MHz, the reference driver and
// this one run at 4MHz).
const BusSpeedHz = 4_000_000

// Device is a spidev-backed sdep.Bus: every Transfer is one full
// SPI_IOC_MESSAGE ioctl exchanging a single byte.
type Device struct {
	fd int
}

// Open configures path (e.g. "/dev/spidev0.0") for SPI mode 0,
// 8 bits per word, at BusSpeedHz.
func Open(path string) (*Device, error) {
	fd, err := syscall.Open(path, syscall.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	speed := uint32(BusSpeedHz)
	if err := ioctl.Ioctl(fd, spiIOCWrMaxSpeedHz, uintptr(unsafe.Pointer(&speed))); err != nil {
		syscall.Close(fd)
		return nil, err
	}
	bits := uint8(8)
	if err := ioctl.Ioctl(fd, spiIOCWrBitsPerWord, uintptr(unsafe.Pointer(&bits))); err != nil {
		syscall.Close(fd)
		return nil, err
	}
	mode := uint32(0)
	if err := ioctl.Ioctl(fd, spiIOCWrMode32, uintptr(unsafe.Pointer(&mode))); err != nil {
		syscall.Close(fd)
		return nil, err
	}
	return &Device{fd: fd}, nil
}

// Transfer implements sdep.Bus.
func (d *Device) Transfer(tx byte) (byte, error) {
	txData := []byte{tx}
	rxData := make([]byte, 1)

	txHeader := (*reflect.SliceHeader)(unsafe.Pointer(&txData))
	rxHeader := (*reflect.SliceHeader)(unsafe.Pointer(&rxData))

	xfer := &spiIOCTransfer{
		txBuf:       uint64(txHeader.Data),
		rxBuf:       uint64(rxHeader.Data),
		length:      1,
		speedHz:     BusSpeedHz,
		bitsPerWord: 8,
	}
	if err := ioctl.Ioctl(d.fd, spiIOCMessage, uintptr(unsafe.Pointer(xfer))); err != nil {
		return 0, err
	}
	return rxData[0], nil
}

// Close releases the underlying file descriptor.
func (d *Device) Close() error {
	return syscall.Close(d.fd)
}
