package audio

import (
	"bytes"
	"testing"
)

func TestEncodeAndParseRoundTrip(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}

	wav, err := EncodeWAVPCM16LE(pcm, 24000)
	if err != nil {
		t.Fatalf("EncodeWAVPCM16LE() error = %v", err)
	}

	got, rate, err := PCMData(wav)
	if err != nil {
		t.Fatalf("PCMData() error = %v", err)
	}
	if rate != 24000 {
		t.Fatalf("sample rate = %d, want 24000", rate)
	}
	if !bytes.Equal(got, pcm) {
		t.Fatalf("PCMData() = %v, want original payload", got)
	}
}

func TestPCMDataRejectsGarbage(t *testing.T) {
	if _, _, err := PCMData([]byte("not a wav file at all, definitely not one")); err == nil {
		t.Fatalf("PCMData() should reject a non-RIFF buffer")
	}
	if _, _, err := PCMData([]byte("tiny")); err == nil {
		t.Fatalf("PCMData() should reject a truncated buffer")
	}
}
