package chip

// Sweep is the state of the hardware frequency sweep of the sweep channel.
type Sweep struct {
	Step      int8 // period change per sweep clock
	Interval  int  // samples between two sweep clocks
	Countdown int  // samples until the next sweep clock
}

// processSweep applies all sweep clocks that fall into the elapsed samples.
// The sweep runs only with a non zero step while the control register enables it.
func (c *Chip) processSweep(samples int) {
	if c.sweep.Step == 0 || !c.SweepEnabled() {
		return
	}

	c.sweep.Countdown -= samples
	for c.sweep.Countdown <= 0 {
		if c.sweep.Interval <= 0 {
			return
		}
		c.sweep.Countdown += c.sweep.Interval
		c.stepSweep()
	}
}

// stepSweep adds the step to the raw period of the sweep channel and writes
// the result back to the period registers.
func (c *Chip) stepSweep() {
	lo := uint8(RegPeriod + 2*SweepChannel)
	raw := uint16(c.regs[lo+1]&0x07)<<8 | uint16(c.regs[lo])
	period := uint16(int(raw)+int(c.sweep.Step)) & periodMask

	c.regs[lo] = uint8(period)
	c.regs[lo+1] = c.regs[lo+1]&0xF8 | uint8(period>>8)
	c.decodePeriod(lo)
}
