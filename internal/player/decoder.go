package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// audioDecoder yields signed 16-bit little-endian interleaved PCM.
// Length and Seek offsets are in output bytes.
type audioDecoder interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
	ChannelCount() int
}

// newDecoder picks a decoder from the file extension. Downloaded audio keeps
// the server file's extension.
func newDecoder(f *os.File) (audioDecoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		dec, err := mp3.NewDecoder(f)
		if err != nil {
			return nil, fmt.Errorf("decoding MP3: %w", err)
		}
		return mp3Decoder{dec}, nil
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("unsupported format: %s", ext)
	}
}

// go-mp3 always decodes to stereo at the stream's own sample rate.
type mp3Decoder struct {
	*mp3.Decoder
}

func (mp3Decoder) ChannelCount() int { return 2 }

// pcmBuffer holds converted samples that did not fit the caller's slice and
// the output position. It is shared by the formats that decode in chunks.
type pcmBuffer struct {
	pending  []byte
	pos      int64
	total    int64
	channels int
	rate     int
}

func (b *pcmBuffer) drain(p []byte) (int, bool) {
	if len(b.pending) == 0 {
		return 0, false
	}
	n := copy(p, b.pending)
	b.pending = b.pending[n:]
	b.pos += int64(n)
	return n, true
}

func (b *pcmBuffer) emit(p, raw []byte) int {
	n := copy(p, raw)
	if n < len(raw) {
		b.pending = raw[n:]
	}
	b.pos += int64(n)
	return n
}

// target resolves a Seek request to a clamped output byte offset and the
// source sample frame it corresponds to.
func (b *pcmBuffer) target(offset int64, whence int) (int64, int64) {
	pos := offset
	switch whence {
	case io.SeekCurrent:
		pos += b.pos
	case io.SeekEnd:
		pos += b.total
	}
	pos = max(0, min(pos, b.total))
	return pos, pos / int64(b.channels*2)
}

func (b *pcmBuffer) Length() int64     { return b.total }
func (b *pcmBuffer) SampleRate() int   { return b.rate }
func (b *pcmBuffer) ChannelCount() int { return b.channels }

func putSample(dst []byte, s int) {
	binary.LittleEndian.PutUint16(dst, uint16(int16(max(-32768, min(32767, s)))))
}

type wavDecoder struct {
	pcmBuffer
	file      *os.File
	dataStart int64
	srcDepth  int
	srcFrame  int64
}

func newWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	depth := int(dec.BitDepth)
	switch depth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("unsupported WAV bit depth %d", depth)
	}
	channels := int(dec.NumChans)
	srcFrame := int64(channels * depth / 8)
	start, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locating WAV PCM data: %w", err)
	}
	return &wavDecoder{
		pcmBuffer: pcmBuffer{
			total:    dec.PCMLen() / srcFrame * int64(channels) * 2,
			channels: channels,
			rate:     int(dec.SampleRate),
		},
		file:      f,
		dataStart: start,
		srcDepth:  depth,
		srcFrame:  srcFrame,
	}, nil
}

func (d *wavDecoder) Read(p []byte) (int, error) {
	if n, ok := d.drain(p); ok {
		return n, nil
	}
	width := d.srcDepth / 8
	src := make([]byte, max(1, len(p)/2)*width)
	n, err := io.ReadFull(d.file, src)
	samples := n / width
	if samples == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	raw := make([]byte, samples*2)
	for i := range samples {
		s := src[i*width:]
		var v int
		switch d.srcDepth {
		case 8:
			v = (int(s[0]) - 128) << 8
		case 16:
			v = int(int16(binary.LittleEndian.Uint16(s)))
		case 24:
			v = int(int32(uint32(s[0])<<8|uint32(s[1])<<16|uint32(s[2])<<24) >> 16)
		case 32:
			v = int(int32(binary.LittleEndian.Uint32(s)) >> 16)
		}
		putSample(raw[i*2:], v)
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return d.emit(p, raw), err
}

func (d *wavDecoder) Seek(offset int64, whence int) (int64, error) {
	pos, frame := d.target(offset, whence)
	if _, err := d.file.Seek(d.dataStart+frame*d.srcFrame, io.SeekStart); err != nil {
		return d.pos, err
	}
	d.pending = nil
	d.pos = pos
	return pos, nil
}

type flacDecoder struct {
	pcmBuffer
	stream *flac.Stream
	bps    int
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	return &flacDecoder{
		pcmBuffer: pcmBuffer{
			total:    int64(info.NSamples) * int64(info.NChannels) * 2,
			channels: int(info.NChannels),
			rate:     int(info.SampleRate),
		},
		stream: stream,
		bps:    int(info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) Read(p []byte) (int, error) {
	if n, ok := d.drain(p); ok {
		return n, nil
	}
	frame, err := d.stream.ParseNext()
	if err != nil {
		return 0, err
	}
	samples := int(frame.Subframes[0].NSamples)
	raw := make([]byte, samples*d.channels*2)
	for i := range samples {
		for ch := range d.channels {
			v := int(frame.Subframes[ch].Samples[i])
			if d.bps > 16 {
				v >>= d.bps - 16
			} else {
				v <<= 16 - d.bps
			}
			putSample(raw[(i*d.channels+ch)*2:], v)
		}
	}
	return d.emit(p, raw), nil
}

func (d *flacDecoder) Seek(offset int64, whence int) (int64, error) {
	pos, frame := d.target(offset, whence)
	if _, err := d.stream.Seek(uint64(frame)); err != nil {
		return d.pos, err
	}
	d.pending = nil
	d.pos = pos
	return pos, nil
}

type oggDecoder struct {
	pcmBuffer
	reader *oggvorbis.Reader
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	r, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{
		pcmBuffer: pcmBuffer{
			total:    r.Length() * int64(r.Channels()) * 2,
			channels: r.Channels(),
			rate:     r.SampleRate(),
		},
		reader: r,
	}, nil
}

func (d *oggDecoder) Read(p []byte) (int, error) {
	if n, ok := d.drain(p); ok {
		return n, nil
	}
	samples := make([]float32, max(1, len(p)/2))
	n, err := d.reader.Read(samples)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	raw := make([]byte, n*2)
	for i, s := range samples[:n] {
		putSample(raw[i*2:], int(max(-1, min(1, s))*32767))
	}
	return d.emit(p, raw), err
}

func (d *oggDecoder) Seek(offset int64, whence int) (int64, error) {
	pos, frame := d.target(offset, whence)
	if err := d.reader.SetPosition(frame); err != nil {
		return d.pos, err
	}
	d.pending = nil
	d.pos = pos
	return pos, nil
}
