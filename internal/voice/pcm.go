package voice

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var ErrOddChunk = errors.New("audio chunk has an odd number of bytes")

// Frame is one capture buffer, one slice of samples per channel.
type Frame [][]float32

// EncodeFrame downmixes f to mono, quantizes it to 16-bit PCM and returns
// the little-endian bytes base64 encoded.
func EncodeFrame(f Frame) string {
	if len(f) == 0 {
		return ""
	}
	n := len(f[0])
	for _, ch := range f[1:] {
		n = min(n, len(ch))
	}

	buf := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		var sum float32
		for _, ch := range f {
			sum += ch[i]
		}
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(quantize(sum/float32(len(f)))))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func quantize(v float32) int16 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	v = max(-1, min(1, v))
	if v < 0 {
		return int16(v * 32768)
	}
	return int16(v * 32767)
}

// DecodeChunk turns a base64 16-bit little-endian PCM chunk into samples in
// [-1, 1).
func DecodeChunk(b64 string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio chunk: %w", err)
	}
	if len(raw)%2 != 0 {
		return nil, ErrOddChunk
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / 32768
	}
	return samples, nil
}
