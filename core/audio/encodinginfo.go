package audio

import (
	"fmt"
	"time"
)

const (
	DefaultSampleRate = 16000
	DefaultFormat     = "linear16"
	DefaultChannels   = 1
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Format: EncodingLinear16, Channels: DefaultChannels}
}

// EncodingInfo describes raw PCM or companded audio exchanged between media
// devices, recognizers and synthesizers.
type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
	// Channels defaults to mono when zero.
	Channels int
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

func (e EncodingInfo) ChannelCount() int {
	if e.Channels <= 0 {
		return DefaultChannels
	}
	return e.Channels
}

// BytesPerSecond returns the byte rate of the stream, or zero for unknown
// formats.
func (e EncodingInfo) BytesPerSecond() int {
	size := e.Format.ByteSize()
	if size <= 0 {
		return 0
	}
	return e.SampleRate * size * e.ChannelCount()
}

// ChunkSize returns the number of bytes covering duration d.
func (e EncodingInfo) ChunkSize(d time.Duration) int {
	return int(int64(e.BytesPerSecond()) * int64(d) / int64(time.Second))
}

func (e EncodingInfo) SilenceValue() byte {
	switch e.Format {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	}

	return 0
}

func (e EncodingInfo) String() string {
	return fmt.Sprintf("%s/%dHz/%dch", e.Format.Name(), e.SampleRate, e.ChannelCount())
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
