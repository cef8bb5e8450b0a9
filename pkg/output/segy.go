// Package output adapts the engine's products to their on-disk forms:
// SEG-Y trace files written in strict (inline, crossline) order, STORM
// cubes accumulated in memory and flushed once, and plain-text surface
// rasters.
package output

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

const (
	segyTextHeaderSize   = 3200
	segyBinaryHeaderSize = 400
	segyTraceHeaderSize  = 240

	// Data sample format 5: 4-byte IEEE float.
	segyFormatIEEE = 5

	segyScalco = -100
)

// SegyFile writes one SEG-Y file: IEEE-float traces with (il, xl, x, y)
// headers. Traces must arrive in ascending (il, xl) order; out-of-order
// writes are rejected.
type SegyFile struct {
	f        *os.File
	w        *bufio.Writer
	nSamples int
	dtMs     float64

	lastIL, lastXL int
	haveLast       bool
}

// CreateSegyFile opens a SEG-Y file for nSamples samples per trace at
// dt milliseconds and writes the file headers.
func CreateSegyFile(path string, nSamples int, dtMs float64) (*SegyFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating segy file: %w", err)
	}
	s := &SegyFile{
		f:        f,
		w:        bufio.NewWriterSize(f, 1<<20),
		nSamples: nSamples,
		dtMs:     dtMs,
	}
	if err := s.writeFileHeaders(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *SegyFile) writeFileHeaders() error {
	text := make([]byte, segyTextHeaderSize)
	copy(text, []byte("C 1 seisforward synthetic seismic"))
	if _, err := s.w.Write(text); err != nil {
		return fmt.Errorf("writing segy text header: %w", err)
	}

	bin := make([]byte, segyBinaryHeaderSize)
	// Sample interval in microseconds at bytes 17-18, sample count at
	// 21-22, format code at 25-26 (1-based byte positions).
	binary.BigEndian.PutUint16(bin[16:], uint16(s.dtMs*1000))
	binary.BigEndian.PutUint16(bin[20:], uint16(s.nSamples))
	binary.BigEndian.PutUint16(bin[24:], segyFormatIEEE)
	if _, err := s.w.Write(bin); err != nil {
		return fmt.Errorf("writing segy binary header: %w", err)
	}
	return nil
}

// WriteTrace appends one trace. offset goes to the offset header word;
// world coordinates are stored with a fixed coordinate scalar.
func (s *SegyFile) WriteTrace(x, y float64, il, xl int, offset float64, samples []float64) error {
	if len(samples) != s.nSamples {
		return fmt.Errorf("trace has %d samples, file expects %d", len(samples), s.nSamples)
	}
	if s.haveLast && (il < s.lastIL || (il == s.lastIL && xl < s.lastXL)) {
		return fmt.Errorf("trace (%d, %d) arrived after (%d, %d): segy requires ascending order",
			il, xl, s.lastIL, s.lastXL)
	}

	hdr := make([]byte, segyTraceHeaderSize)
	binary.BigEndian.PutUint32(hdr[36:], uint32(int32(offset)))
	scalco := int16(segyScalco)
	binary.BigEndian.PutUint16(hdr[70:], uint16(scalco))
	putCoord := func(pos int, v float64) {
		binary.BigEndian.PutUint32(hdr[pos:], uint32(int32(math.Round(v*100))))
	}
	putCoord(72, x)
	putCoord(76, y)
	binary.BigEndian.PutUint16(hdr[114:], uint16(s.nSamples))
	binary.BigEndian.PutUint16(hdr[116:], uint16(s.dtMs*1000))
	putCoord(180, x)
	putCoord(184, y)
	binary.BigEndian.PutUint32(hdr[188:], uint32(int32(il)))
	binary.BigEndian.PutUint32(hdr[192:], uint32(int32(xl)))
	if _, err := s.w.Write(hdr); err != nil {
		return fmt.Errorf("writing trace header: %w", err)
	}

	buf := make([]byte, 4*len(samples))
	for i, v := range samples {
		binary.BigEndian.PutUint32(buf[4*i:], math.Float32bits(float32(v)))
	}
	if _, err := s.w.Write(buf); err != nil {
		return fmt.Errorf("writing trace samples: %w", err)
	}

	s.lastIL, s.lastXL = il, xl
	s.haveLast = true
	return nil
}

// Close flushes and closes the file.
func (s *SegyFile) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return fmt.Errorf("flushing segy file: %w", err)
	}
	return s.f.Close()
}
