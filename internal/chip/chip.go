// Package chip models the register state of the WonderSwan sound unit.
package chip

import "github.com/retroenv/vgm2midi/internal/waveform"

const (
	// RegisterCount is the size of the I/O register bank.
	RegisterCount = 0x100
	// WaveRAMSize is the size of the internal RAM that holds waveforms and PCM data.
	WaveRAMSize = 0x4000
	// Channels is the number of sound channels.
	Channels = 4

	// ClockRate is the master clock of the console in Hz.
	ClockRate = 3072000
	// SampleRate is the rate of the sample clock that time advances are expressed in.
	SampleRate = 44100

	// SilentPeriod is the period value that denotes an undefined pitch.
	SilentPeriod = 2048
)

// Channel indexes with special functions.
const (
	PCMChannel   = 1
	SweepChannel = 2
	NoiseChannel = 3
)

// I/O register addresses.
const (
	RegPeriod     = 0x80 // 2 bytes per channel, 11 bit
	RegVolume     = 0x88 // 1 byte per channel, left in high nibble
	RegSweepStep  = 0x8C
	RegSweepTime  = 0x8D
	RegNoise      = 0x8E
	RegWaveBase   = 0x8F
	RegControl    = 0x90
	RegOutput     = 0x91
	RegPCMVolume  = 0x94
	RegDMASource  = 0x4A // 3 bytes, little endian
	RegDMACount   = 0x4E // 2 bytes, little endian
	RegDMAControl = 0x52
)

// Control register bits.
const (
	ControlPCM   = 0x20
	ControlSweep = 0x40
	ControlNoise = 0x80

	outputHeadphone = 0x80
	dmaStart        = 0x80
	noiseResetBit   = 0x08
	noiseModeMask   = 0x07
	periodMask      = 0x7FF
	periodAlias     = 0x7FF
)

// ChannelRegs contains the decoded register values of one channel.
type ChannelRegs struct {
	Period  uint16 // 0-2047, SilentPeriod for undefined pitch
	Left    uint8  // 0-15
	Right   uint8  // 0-15
	Enabled bool
}

// Chip is the register bank and wave RAM of the sound unit together with
// all values derived from them.
type Chip struct {
	regs [RegisterCount]uint8
	ram  [WaveRAMSize]uint8

	channels   [Channels]ChannelRegs
	sweep      Sweep
	dma        DMA
	noiseMode  uint8
	noiseReset bool
	waveBase   uint16
	pcmLeft    uint8
	pcmRight   uint8
}

// decoder re-derives the state that depends on a range of register addresses.
type decoder struct {
	first  uint8
	last   uint8
	decode func(c *Chip, address uint8)
}

var decoders = []decoder{
	{RegPeriod, RegPeriod + 2*Channels - 1, (*Chip).decodePeriod},
	{RegVolume, RegVolume + Channels - 1, (*Chip).decodeVolume},
	{RegSweepStep, RegSweepStep, (*Chip).decodeSweepStep},
	{RegSweepTime, RegSweepTime, (*Chip).decodeSweepTime},
	{RegNoise, RegNoise, (*Chip).decodeNoise},
	{RegWaveBase, RegWaveBase, (*Chip).decodeWaveBase},
	{RegControl, RegControl, (*Chip).decodeControl},
	{RegOutput, RegOutput, (*Chip).decodeOutput},
	{RegPCMVolume, RegPCMVolume, (*Chip).decodePCMVolume},
	{RegDMASource, RegDMASource + 2, (*Chip).decodeDMASource},
	{RegDMACount, RegDMACount + 1, (*Chip).decodeDMACount},
	{RegDMAControl, RegDMAControl, (*Chip).decodeDMAControl},
}

// New returns a chip with all registers and RAM cleared.
func New() *Chip {
	return &Chip{}
}

// WriteRegister stores the value and updates all state derived from the address.
// Addresses without a function are stored only.
func (c *Chip) WriteRegister(address, value uint8) {
	c.regs[address] = value
	for _, d := range decoders {
		if address >= d.first && address <= d.last {
			d.decode(c, address)
			return
		}
	}
}

// WriteWaveRAM writes a byte of the internal RAM, the address wraps at the RAM size.
func (c *Chip) WriteWaveRAM(address uint16, value uint8) {
	c.ram[address&(WaveRAMSize-1)] = value
}

// Advance runs the clocked processes for the given number of samples.
// Sound DMA runs before the frequency sweep.
func (c *Chip) Advance(samples uint32) {
	c.processDMA(int(samples))
	c.processSweep(int(samples))
}

// Register returns the raw value of a register.
func (c *Chip) Register(address uint8) uint8 {
	return c.regs[address]
}

// WaveRAM returns a byte of the internal RAM.
func (c *Chip) WaveRAM(address uint16) uint8 {
	return c.ram[address&(WaveRAMSize-1)]
}

// Channel returns the decoded registers of a channel.
func (c *Chip) Channel(index int) ChannelRegs {
	return c.channels[index]
}

// PCMMode returns whether the PCM channel plays streamed samples.
func (c *Chip) PCMMode() bool {
	return c.regs[RegControl]&ControlPCM != 0
}

// SweepEnabled returns whether the sweep channel has the frequency sweep enabled.
func (c *Chip) SweepEnabled() bool {
	return c.regs[RegControl]&ControlSweep != 0
}

// NoiseMode returns whether the noise channel outputs noise instead of its waveform.
func (c *Chip) NoiseMode() bool {
	return c.regs[RegControl]&ControlNoise != 0
}

// Noise returns the noise generator tap mode and whether a reset was requested.
func (c *Chip) Noise() (mode uint8, reset bool) {
	return c.noiseMode, c.noiseReset
}

// PCMVolume returns the left and right volume of the PCM channel, each 0-15.
func (c *Chip) PCMVolume() (left, right uint8) {
	return c.pcmLeft, c.pcmRight
}

// WaveBase returns the RAM address of the waveform of the first channel.
func (c *Chip) WaveBase() uint16 {
	return c.waveBase
}

// Waveform returns the current waveform of a channel.
func (c *Chip) Waveform(index int) waveform.Waveform {
	start := c.waveBase + uint16(index*waveform.PackedSize)
	var packed [waveform.PackedSize]byte
	for i := range packed {
		packed[i] = c.WaveRAM(start + uint16(i))
	}
	return waveform.Unpack(packed[:])
}

// Sweep returns the state of the frequency sweep.
func (c *Chip) Sweep() Sweep {
	return c.sweep
}

// DMA returns the state of the sound DMA.
func (c *Chip) DMA() DMA {
	return c.dma
}

func (c *Chip) decodePeriod(address uint8) {
	index := int(address-RegPeriod) / 2
	lo := RegPeriod + uint8(index*2)
	c.channels[index].Period = periodValue(c.regs[lo], c.regs[lo+1])
}

func (c *Chip) decodeVolume(address uint8) {
	index := int(address - RegVolume)
	c.channels[index].Left, c.channels[index].Right = volumeNibbles(c.regs[address])
}

func (c *Chip) decodeSweepStep(address uint8) {
	c.sweep.Step = int8(c.regs[address])
}

func (c *Chip) decodeSweepTime(address uint8) {
	c.sweep.Interval = sweepInterval(c.regs[address])
	c.sweep.Countdown = c.sweep.Interval
}

func (c *Chip) decodeNoise(address uint8) {
	value := c.regs[address]
	c.noiseMode = value & noiseModeMask
	if value&noiseResetBit != 0 {
		c.noiseReset = true
	}
}

func (c *Chip) decodeWaveBase(address uint8) {
	c.waveBase = uint16(c.regs[address]) << 6
}

func (c *Chip) decodeControl(address uint8) {
	value := c.regs[address]
	for i := range c.channels {
		c.channels[i].Enabled = value&(1<<i) != 0
	}
}

// decodeOutput keeps the headphone bit set, the capture is always rendered
// as if headphones are connected.
func (c *Chip) decodeOutput(address uint8) {
	c.regs[address] |= outputHeadphone
}

func (c *Chip) decodePCMVolume(address uint8) {
	c.pcmLeft, c.pcmRight = pcmVolume(c.regs[address])
}

func (c *Chip) decodeDMASource(uint8) {
	c.dma.Source = uint32(c.regs[RegDMASource+2])<<16 |
		uint32(c.regs[RegDMASource+1])<<8 |
		uint32(c.regs[RegDMASource])
}

func (c *Chip) decodeDMACount(uint8) {
	c.dma.Count = uint32(c.regs[RegDMACount+1])<<8 | uint32(c.regs[RegDMACount])
}

func (c *Chip) decodeDMAControl(address uint8) {
	value := c.regs[address]
	if value&dmaStart == 0 {
		return
	}
	c.dma.Period = dmaPeriod(value)
	c.dma.Timer = c.dma.Period
}

// periodValue combines the low byte and the low 3 bits of the high byte.
// The highest period has no audible pitch and maps to SilentPeriod.
func periodValue(lo, hi uint8) uint16 {
	period := uint16(hi&0x07)<<8 | uint16(lo)
	if period == periodAlias {
		return SilentPeriod
	}
	return period
}

func volumeNibbles(value uint8) (left, right uint8) {
	return value >> 4, value & 0x0F
}

// sweepInterval converts the sweep time register into samples. The sweep
// is clocked every 32 horizontal blanks per register step.
func sweepInterval(value uint8) int {
	const hblankRate = float64(ClockRate) / 256.0
	seconds := 32.0 * (float64(value) + 1.0) / hblankRate
	return int(seconds * SampleRate)
}

// pcmVolume scales the 2 bit PCM volumes to the 0-15 range of the other channels.
func pcmVolume(value uint8) (left, right uint8) {
	return ((value >> 2) & 0x03) * 5, (value & 0x03) * 5
}

var dmaCycles = [4]float64{256, 192, 154, 128}

// dmaPeriod returns the number of samples between two DMA transfers, at least 1.
func dmaPeriod(control uint8) int {
	period := int(dmaCycles[control&0x03] / ClockRate * SampleRate)
	return max(period, 1)
}
