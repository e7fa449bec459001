package media

// Frame is one decoded video frame in packed interleaved layout. Channels is
// 3 for BGR color frames (the decode pipe's native order) or 1 for grayscale.
// Pix holds Width*Height*Channels bytes, rows top to bottom.
type Frame struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
}

// NewFrame allocates a zeroed frame.
func NewFrame(width, height, channels int) Frame {
	return Frame{
		Pix:      make([]byte, width*height*channels),
		Width:    width,
		Height:   height,
		Channels: channels,
	}
}

// at returns the index of the first channel of pixel (x, y).
func (f *Frame) at(x, y int) int {
	return (y*f.Width + x) * f.Channels
}

// clampByte saturates v into the 8-bit channel range.
func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}

// clampInt keeps a coordinate inside [0, max-1]; used for replicated borders
// and resampling.
func clampInt(v, max int) int {
	if v < 0 {
		return 0
	}
	if v >= max {
		return max - 1
	}
	return v
}
