package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// EncodeWAVPCM16LE wraps raw PCM16LE mono audio bytes in a WAV container.
func EncodeWAVPCM16LE(pcm []byte, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteWAVPCM16LETo(&buf, pcm, sampleRate); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWAVPCM16LETo writes raw PCM16LE mono audio bytes to out as a WAV stream.
func WriteWAVPCM16LETo(out io.Writer, pcm []byte, sampleRate int) error {
	const (
		numChannels   = 1
		bitsPerSample = 16
		audioFormat   = 1 // PCM
	)
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	dataSize := uint32(len(pcm))
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)

	w := bufio.NewWriter(out)

	if _, err := w.WriteString("RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := w.WriteString("WAVE"); err != nil {
		return err
	}

	if _, err := w.WriteString("fmt "); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(audioFormat)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(numChannels)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(sampleRate)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, byteRate); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, blockAlign); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(bitsPerSample)); err != nil {
		return err
	}

	if _, err := w.WriteString("data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	if _, err := w.Write(pcm); err != nil {
		return err
	}
	return w.Flush()
}

// PCMData extracts the raw PCM payload and sample rate from a WAV buffer by
// walking its RIFF chunks. Only 16-bit PCM is supported; that is the format
// every synthesizer in this repo emits.
func PCMData(wav []byte) ([]byte, int, error) {
	if len(wav) < 44 {
		return nil, 0, fmt.Errorf("wav too small: %d bytes", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("invalid wav header")
	}

	var (
		format     uint16
		sampleRate int
		bits       uint16
	)
	offset := 12
	for offset+8 <= len(wav) {
		id := string(wav[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(wav[offset+4 : offset+8]))
		dataStart := offset + 8

		switch id {
		case "fmt ":
			if dataStart+16 > len(wav) {
				return nil, 0, fmt.Errorf("truncated fmt chunk")
			}
			format = binary.LittleEndian.Uint16(wav[dataStart:])
			sampleRate = int(binary.LittleEndian.Uint32(wav[dataStart+4:]))
			bits = binary.LittleEndian.Uint16(wav[dataStart+14:])
		case "data":
			if format != 1 {
				return nil, 0, fmt.Errorf("unsupported wav format %d", format)
			}
			if bits != 16 {
				return nil, 0, fmt.Errorf("unsupported wav bit depth %d", bits)
			}
			end := dataStart + size
			if end > len(wav) {
				end = len(wav)
			}
			return wav[dataStart:end], sampleRate, nil
		}
		offset = dataStart + size + (size % 2)
	}
	return nil, 0, fmt.Errorf("wav data chunk not found")
}
