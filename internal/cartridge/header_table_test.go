package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRomBankCountTable(t *testing.T) {
	cases := []struct {
		code      uint8
		wantBanks int
	}{
		{0x00, 2},
		{0x01, 4},
		{0x02, 8},
		{0x05, 64},
		{0x08, 512},
		{0x52, 72},
		{0x53, 72},
		{0x54, 96},
	}

	for _, tc := range cases {
		banks, err := romBankCount(tc.code)
		require.NoError(t, err)
		assert.Equal(t, tc.wantBanks, banks)
	}
}

func TestRomBankCountRejectsUnknownCode(t *testing.T) {
	_, err := romBankCount(0xFE)
	require.Error(t, err)
}

func TestRamSizeBytesTable(t *testing.T) {
	cases := []struct {
		code     uint8
		wantSize int
	}{
		{0x00, 0},
		{0x02, 8192},
		{0x03, 32768},
		{0x04, 131072},
	}

	for _, tc := range cases {
		size, err := ramSizeBytes(tc.code)
		require.NoError(t, err)
		assert.Equal(t, tc.wantSize, size)
	}
}

func TestParseHeaderExtractsTitleAndType(t *testing.T) {
	data := make([]byte, 0x0150)
	copy(data[0x0134:], []byte("POKEMON"))
	data[0x0147] = 0x03 // MBC1+RAM+BATTERY
	data[0x0148] = 0x01
	data[0x0149] = 0x02

	h, err := parseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, "POKEMON", h.Title)
	assert.Equal(t, uint8(0x03), h.CartType)
	assert.Equal(t, uint8(0x01), h.ROMSizeCode)
	assert.Equal(t, uint8(0x02), h.RAMSizeCode)
}
