package wave

// SampleFormat identifies how raw samples are stored in a pending buffer.
type SampleFormat uint8

const (
	FormatInt16 SampleFormat = iota
	FormatFloat32
)

func (f SampleFormat) String() string {
	switch f {
	case FormatInt16:
		return "int16"
	case FormatFloat32:
		return "float32"
	}
	return "unknown"
}

// Int16ToFloat32 converts signed 16-bit samples to [-1, 1) floats.
// dst and src must have the same length.
func Int16ToFloat32(dst []float32, src []int16) {
	for i, s := range src {
		dst[i] = float32(s) / 32768.0
	}
}

// Float32ToInt16 converts float samples to signed 16-bit, clamping to full scale.
// dst and src must have the same length.
func Float32ToInt16(dst []int16, src []float32) {
	for i, s := range src {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		dst[i] = int16(s * 32767)
	}
}
