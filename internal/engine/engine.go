// Package engine turns register writes and time advances of the sound chip
// into musical events.
package engine

import (
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vgm2midi/internal/chip"
	"github.com/retroenv/vgm2midi/internal/waveform"
)

// Fixed programs and usage labels of the streamed sources.
const (
	ProgramPCM   uint8 = 119
	ProgramNoise uint8 = 127

	LabelPCM   = "PCM_SOUND"
	LabelNoise = "NOISE_SOUND"

	pcmBaseNote = 60
)

// Resolver returns the program for a waveform.
type Resolver interface {
	Resolve(w waveform.Waveform, source string) uint8
}

// UsageRecorder counts the notes started per channel and sound.
type UsageRecorder interface {
	Record(channel int, label string)
}

// Options control the conversion.
type Options struct {
	Source           string  // name of the capture, stored with new instruments
	LoudnessExponent float64 // exponent of the volume to expression curve, 0 means linear
}

// Engine owns the chip state and the note state of all channels.
type Engine struct {
	logger   *log.Logger
	chip     *chip.Chip
	resolver Resolver
	usage    UsageRecorder
	sink     Sink
	opts     Options

	channels  [chip.Channels]ChannelState
	samples   uint64
	finalized bool
}

// New returns a new engine. The usage recorder is optional.
func New(logger *log.Logger, resolver Resolver, usage UsageRecorder, sink Sink, opts Options) *Engine {
	if opts.LoudnessExponent <= 0 {
		opts.LoudnessExponent = 1
	}

	e := &Engine{
		logger:   logger,
		chip:     chip.New(),
		resolver: resolver,
		usage:    usage,
		sink:     sink,
		opts:     opts,
	}
	for i := range e.channels {
		e.channels[i] = NewChannelState()
	}
	return e
}

// WriteRegister writes a sound register. Events are only emitted when time advances.
func (e *Engine) WriteRegister(address, value uint8) {
	e.chip.WriteRegister(address, value)
}

// WriteWaveRAM writes a byte of the internal RAM.
func (e *Engine) WriteWaveRAM(address uint16, value uint8) {
	e.chip.WriteWaveRAM(address, value)
}

// Advance runs the clocked chip processes, evaluates all channels at the
// current tick and then moves the time forward.
func (e *Engine) Advance(samples uint16) {
	if e.finalized {
		return
	}

	e.chip.Advance(uint32(samples))

	tick := e.Tick()
	for i := range e.channels {
		obs := e.observe(i)
		state, events := e.channels[i].Step(obs, tick)
		e.channels[i] = state
		e.emit(i, obs, events)
	}

	e.samples += uint64(samples)
}

// Finalize ends all sounding notes at the final tick. Later calls and
// advances have no effect.
func (e *Engine) Finalize() {
	if e.finalized {
		return
	}
	e.finalized = true

	tick := e.Tick()
	for i := range e.channels {
		state, events := e.channels[i].Close(tick)
		e.channels[i] = state
		for _, ev := range events {
			e.sink.Emit(i, ev)
		}
	}
}

// Samples returns the number of samples elapsed so far.
func (e *Engine) Samples() uint64 {
	return e.samples
}

// Tick returns the output time of the elapsed samples.
func (e *Engine) Tick() uint32 {
	return Ticks(e.samples)
}

// Channel returns the note state of a channel.
func (e *Engine) Channel(index int) ChannelState {
	return e.channels[index]
}

// Chip returns the chip state for inspection.
func (e *Engine) Chip() *chip.Chip {
	return e.chip
}

func (e *Engine) emit(channel int, obs Observation, events []Event) {
	for _, ev := range events {
		switch ev.Kind {
		case NoteOn:
			if e.usage != nil {
				e.usage.Record(channel, obs.Label)
			}
		case ProgramChange:
			e.logger.Debug("Program change",
				log.Int("channel", channel),
				log.Uint8("program", ev.Program),
				log.String("sound", obs.Label))
		default:
		}
		e.sink.Emit(channel, ev)
	}
}

// observe derives what the channel should play from the chip state.
// A disabled channel has no source and never sounds. Waveforms are only
// resolved for channels that sound or are about to sound.
func (e *Engine) observe(index int) Observation {
	regs := e.chip.Channel(index)
	if !regs.Enabled {
		return Observation{}
	}

	obs := Observation{TrackPitch: true}
	left, right := regs.Left, regs.Right

	switch {
	case index == chip.PCMChannel && e.chip.PCMMode():
		obs.Source = SourcePCM
		obs.Program = ProgramPCM
		obs.Label = LabelPCM
		obs.TrackPitch = false
		left, right = e.chip.PCMVolume()
		obs.Note = pcmBaseNote + e.chip.Register(chip.RegVolume+chip.PCMChannel)&0x0F
		obs.Eligible = left > 0 || right > 0

	case index == chip.NoiseChannel && e.chip.NoiseMode():
		obs.Source = SourceNoise
		obs.Program = ProgramNoise
		obs.Label = LabelNoise

	default:
		obs.Source = SourceWave
	}

	if obs.Source != SourcePCM {
		note, ok := Note(regs.Period)
		obs.Note = note
		obs.Frequency = Frequency(regs.Period)
		obs.Eligible = ok && (left > 0 || right > 0)
	}

	if obs.Source == SourceWave && (obs.Eligible || e.channels[index].Sounding) {
		w := e.chip.Waveform(index)
		obs.Program = e.resolver.Resolve(w, e.opts.Source)
		obs.Label = w.Fingerprint()
	}

	obs.Expression, obs.Pan = levels(left, right, e.opts.LoudnessExponent)
	return obs
}
