package player

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// stereoConverter presents any audioDecoder as 44.1kHz stereo. Rate changes
// drop or repeat whole frames (nearest neighbour), channels are duplicated
// from mono or cut down to the first two.
type stereoConverter struct {
	src      audioDecoder
	br       *bufio.Reader
	srcFrame int     // bytes per source frame
	step     float64 // source frames per output frame
	frame    []byte  // current source frame
	have     bool
	acc      float64
	pos      int64
	total    int64
}

// toOutputFormat wraps dec unless it already matches the output format.
func toOutputFormat(dec audioDecoder) audioDecoder {
	if dec.SampleRate() == sampleRate && dec.ChannelCount() == channelCount {
		return dec
	}
	return newStereoConverter(dec)
}

func newStereoConverter(src audioDecoder) *stereoConverter {
	srcFrame := max(1, src.ChannelCount()) * 2
	step := float64(src.SampleRate()) / sampleRate
	if step <= 0 {
		step = 1
	}
	srcFrames := src.Length() / int64(srcFrame)
	return &stereoConverter{
		src:      src,
		br:       bufio.NewReaderSize(src, 16*1024),
		srcFrame: srcFrame,
		step:     step,
		frame:    make([]byte, srcFrame),
		total:    int64(float64(srcFrames)/step) * frameSize,
	}
}

func (c *stereoConverter) Read(p []byte) (int, error) {
	written := 0
	for written+frameSize <= len(p) {
		if !c.have {
			if _, err := io.ReadFull(c.br, c.frame); err != nil {
				if written > 0 {
					return written, nil
				}
				if err == io.ErrUnexpectedEOF {
					err = io.EOF
				}
				return 0, err
			}
			c.have = true
		}
		if c.acc >= 1 {
			c.acc--
			c.have = false
			continue
		}
		left := binary.LittleEndian.Uint16(c.frame)
		right := left
		if c.srcFrame >= 4 {
			right = binary.LittleEndian.Uint16(c.frame[2:])
		}
		binary.LittleEndian.PutUint16(p[written:], left)
		binary.LittleEndian.PutUint16(p[written+2:], right)
		written += frameSize
		c.pos += frameSize
		c.acc += c.step
	}
	if written == 0 && len(p) > 0 {
		return 0, io.ErrShortBuffer
	}
	return written, nil
}

func (c *stereoConverter) Seek(offset int64, whence int) (int64, error) {
	pos := offset
	switch whence {
	case io.SeekCurrent:
		pos += c.pos
	case io.SeekEnd:
		pos += c.total
	}
	pos = max(0, min(pos, c.total))
	pos -= pos % frameSize

	exact := float64(pos/frameSize) * c.step
	whole := math.Floor(exact)
	if _, err := c.src.Seek(int64(whole)*int64(c.srcFrame), io.SeekStart); err != nil {
		return c.pos, err
	}
	c.br.Reset(c.src)
	c.have = false
	c.acc = exact - whole
	c.pos = pos
	return pos, nil
}

func (c *stereoConverter) Length() int64     { return c.total }
func (c *stereoConverter) SampleRate() int   { return sampleRate }
func (c *stereoConverter) ChannelCount() int { return channelCount }
