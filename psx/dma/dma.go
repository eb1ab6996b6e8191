// Package dma implements the 7-channel DMA engine: block and linked-list
// transfers between RAM and the GPU/CD-ROM/etc. ports, IRQ aggregation, and
// the OTC ordering-table-clear synthesis. Grounded on
// original_source/src/DMA.cpp and src/Channel.cpp, restructured around the
// teacher's single-threaded step-one-device-per-tick model
// (jeebie/memory.MMU.Tick / jeebie/video.GPU.Tick).
package dma

import (
	"fmt"
	"log/slog"
)

// GPUPort is the narrow interface DMA needs onto the GPU command processor.
type GPUPort interface {
	ExecuteGP0(value uint32)
}

// CDROMPort is the narrow interface DMA needs onto the CD-ROM read buffer.
type CDROMPort interface {
	PullReadWord() uint32
}

// RAMPort is the narrow interface DMA needs onto main RAM.
type RAMPort interface {
	ReadWord(offset uint32) uint32
	WriteWord(offset uint32, v uint32)
}

// Controller is the DMA engine: 7 channels plus the global control/interrupt
// registers (spec.md §3).
type Controller struct {
	channels [numPorts]*Channel
	control  uint32 // DPCR: channel priority nibbles (enable bits are stored but not read back by Step; see pickActiveChannel)
	irq      uint32 // global DMA interrupt register

	ram         RAMPort
	gpu         GPUPort
	cdrom       CDROMPort
	raiseCPUIRQ func()

	logger *slog.Logger
}

// New creates a DMA controller wired to RAM and the GPU/CD-ROM ports, and a
// callback to raise the DMA line on the Interrupt Controller.
func New(ram RAMPort, gpu GPUPort, cdrom CDROMPort, raiseCPUIRQ func(), logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		ram:         ram,
		gpu:         gpu,
		cdrom:       cdrom,
		raiseCPUIRQ: raiseCPUIRQ,
		control:     0x07654321, // power-on priority assignment, matches real BIOS expectations
		logger:      logger,
	}
	for i := range c.channels {
		c.channels[i] = newChannel(Port(i))
	}
	return c
}

// Channel returns the channel for port, for register access from the
// interconnect.
func (c *Controller) Channel(port Port) *Channel {
	return c.channels[port]
}

// ControlRegister returns the global DMA control register (DPCR).
func (c *Controller) ControlRegister() uint32 { return c.control }

// SetControlRegister writes DPCR.
func (c *Controller) SetControlRegister(v uint32) { c.control = v }

// InterruptRegister returns DICR, with masterFlag (bit 31) computed live
// per spec.md §4.4.
func (c *Controller) InterruptRegister() uint32 {
	return (c.irq &^ (1 << 31)) | boolBit(c.masterFlag(), 31)
}

// SetInterruptRegister writes DICR. Bits 0-5 (unknown/reserved) are
// masked off; bit 15 (force IRQ) is sticky; bits 16-22 are per-channel
// enables (writable); bits 24-30 are per-channel flags (write-1-to-clear);
// bit 23 is the master enable (writable).
//
// Ported from original_source/src/DMA.cpp setInterruptRegister.
func (c *Controller) SetInterruptRegister(v uint32) {
	const forceIRQ = 1 << 15
	const enableMask = 0x7F << 16
	const masterEnable = 1 << 23
	const flagsMask = 0x7F << 24

	ack := v & flagsMask
	newFlags := (c.irq & flagsMask) &^ ack

	c.irq = (v & (forceIRQ | enableMask | masterEnable)) | newFlags
}

func (c *Controller) masterFlag() bool {
	const forceIRQ = 1 << 15
	const masterEnable = 1 << 23
	force := c.irq&forceIRQ != 0
	if force {
		return true
	}
	if c.irq&masterEnable == 0 {
		return false
	}
	channelFlags := (c.irq >> 24) & 0x7F
	channelEnables := (c.irq >> 16) & 0x7F
	return channelFlags&channelEnables != 0
}

func boolBit(b bool, pos uint) uint32 {
	if b {
		return 1 << pos
	}
	return 0
}

// raiseChannelIRQ sets the channel's flag bit in DICR and, if the master
// flag transitions the IRQ line, notifies the Interrupt Controller.
func (c *Controller) raiseChannelIRQ(port Port) {
	c.irq |= 1 << (24 + uint(port))
	if c.masterFlag() && c.raiseCPUIRQ != nil {
		c.raiseCPUIRQ()
	}
}

// Step services one active channel, picked by the lowest-priority-first
// rule of the global control register (spec.md §4.4). It is a no-op when
// no channel is active.
func (c *Controller) Step() {
	port, ch, ok := c.pickActiveChannel()
	if !ok {
		return
	}

	if ch.SyncMode() == SyncLinkedList {
		c.executeLinkedList(port, ch)
	} else {
		c.executeBlock(port, ch)
	}
}

// pickActiveChannel finds the active channel of highest priority. A
// channel runs purely off its own CHCR activity (original_source/src/
// DMA.cpp execute(), lines 54-62); DPCR's per-channel nibble is used only
// to order channels relative to each other, lower value wins, ties broken
// by channel index, never to gate whether a channel may run at all.
func (c *Controller) pickActiveChannel() (Port, *Channel, bool) {
	bestPort := Port(0)
	bestPriority := -1
	found := false
	for i, ch := range c.channels {
		port := Port(i)
		if !ch.Active() {
			continue
		}
		priority := int((c.control >> (4 * uint(port))) & 0x7)
		if !found || priority < bestPriority {
			bestPort, bestPriority, found = port, priority, true
		}
	}
	if !found {
		return 0, nil, false
	}
	return bestPort, c.channels[bestPort], true
}

// executeLinkedList walks a GPU command-packet list (spec.md §4.4, GPU
// FromRam only). Ported from original_source/src/DMA.cpp executeLinkedList.
func (c *Controller) executeLinkedList(port Port, ch *Channel) {
	if port != GPUPort {
		panic(fmt.Sprintf("dma: unhandled linked-list transfer on port %s", port))
	}
	if ch.Direction() != FromRam {
		panic("dma: unhandled linked-list transfer to RAM")
	}

	address := ch.BaseAddress() & 0x001FFFFC
	for {
		header := c.ram.ReadWord(address)
		remaining := header >> 24
		for remaining > 0 {
			address = (address + 4) & 0x001FFFFC
			command := c.ram.ReadWord(address)
			c.gpu.ExecuteGP0(command)
			remaining--
		}
		if header&0x00800000 != 0 {
			break
		}
		address = header & 0x001FFFFC
	}
	ch.Done()
	c.raiseChannelIRQ(port)
}

// executeBlock transfers N words between RAM and a device port (spec.md
// §4.4). Ported from original_source/src/DMA.cpp executeBlock.
func (c *Controller) executeBlock(port Port, ch *Channel) {
	step := int32(4)
	if ch.StepMode() == Decrement {
		step = -4
	}

	size, ok := ch.TransferSize()
	if !ok {
		panic("dma: unknown transfer size for block sync")
	}

	address := ch.BaseAddress()
	for remaining := size; remaining > 0; remaining-- {
		current := address & 0x001FFFFC
		switch ch.Direction() {
		case FromRam:
			word := c.ram.ReadWord(current)
			switch port {
			case GPUPort:
				c.gpu.ExecuteGP0(word)
			default:
				panic(fmt.Sprintf("dma: unhandled block transfer FromRam on port %s", port))
			}
		case ToRam:
			var word uint32
			switch port {
			case OTC:
				if remaining == 1 {
					word = 0x00FFFFFF
				} else {
					word = (address - 4) & 0x001FFFFF
				}
			case CDROMPort:
				word = c.cdrom.PullReadWord()
			default:
				panic(fmt.Sprintf("dma: unhandled block transfer ToRam on port %s", port))
			}
			c.ram.WriteWord(current, word)
		}
		address = uint32(int64(address) + int64(step))
	}

	ch.Done()
	c.raiseChannelIRQ(port)
}
