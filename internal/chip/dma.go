package chip

// DMA is the state of the sound DMA that streams RAM bytes into the
// volume register of the PCM channel.
type DMA struct {
	Source uint32 // RAM address of the next byte
	Count  uint32 // bytes left to transfer
	Period int    // samples between two transfers, 0 when stopped
	Timer  int    // samples until the next transfer
}

// Active returns whether transfers are pending.
func (d DMA) Active() bool {
	return d.Period > 0 && d.Count > 0
}

// processDMA performs all transfers that fall into the elapsed samples.
// Every transfer goes through the regular register write path.
func (c *Chip) processDMA(samples int) {
	if !c.dma.Active() {
		return
	}

	c.dma.Timer -= samples
	for c.dma.Timer <= 0 {
		value := c.WaveRAM(uint16(c.dma.Source))
		c.WriteRegister(RegVolume+PCMChannel, value)
		c.dma.Source++
		c.dma.Count--

		if c.dma.Count == 0 {
			c.dma.Period = 0
			c.regs[RegDMAControl] &^= dmaStart
			return
		}
		c.dma.Timer += c.dma.Period
	}
}
