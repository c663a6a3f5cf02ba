package cartridge

import "fmt"

// Header is the parsed cartridge header living at 0x0100-0x014F.
type Header struct {
	Title        string
	CGBFlag      uint8
	CartType     uint8
	ROMSizeCode  uint8
	RAMSizeCode  uint8
	HeaderChecksum uint8
}

// romBankCounts maps the ROM size header byte (0x0148) to a bank count.
// 0x52/0x53/0x54 are the legacy codes a few early cartridges used before
// the 0x00-0x08 power-of-two scheme was standardized; the reference
// implementation maps 0x53 to 72 banks, same as 0x52, not 80.
var romBankCounts = map[uint8]int{
	0x00: 2, 0x01: 4, 0x02: 8, 0x03: 16,
	0x04: 32, 0x05: 64, 0x06: 128, 0x07: 256, 0x08: 512,
	0x52: 72, 0x53: 72, 0x54: 96,
}

// ramBankSizes maps the RAM size header byte (0x0149) to a total byte count.
var ramBankSizes = map[uint8]int{
	0x00: 0, 0x01: 2048, 0x02: 8192, 0x03: 32768, 0x04: 131072, 0x05: 65536,
}

// parseHeader reads the header fields out of a raw ROM image.
func parseHeader(data []byte) (Header, error) {
	if len(data) < 0x0150 {
		return Header{}, fmt.Errorf("cartridge: ROM too small to contain a header: %d bytes", len(data))
	}

	title := make([]byte, 0, 16)
	for i := 0x0134; i <= 0x0143; i++ {
		if data[i] == 0 {
			break
		}
		title = append(title, data[i])
	}

	return Header{
		Title:          string(title),
		CGBFlag:        data[0x0143],
		CartType:       data[0x0147],
		ROMSizeCode:    data[0x0148],
		RAMSizeCode:    data[0x0149],
		HeaderChecksum: data[0x014D],
	}, nil
}

// romBankCount returns the number of 16 KiB ROM banks the header declares.
func romBankCount(code uint8) (int, error) {
	banks, ok := romBankCounts[code]
	if !ok {
		return 0, fmt.Errorf("cartridge: unrecognized ROM size code 0x%02X", code)
	}
	return banks, nil
}

// ramSizeBytes returns the total external RAM size the header declares.
func ramSizeBytes(code uint8) (int, error) {
	size, ok := ramBankSizes[code]
	if !ok {
		return 0, fmt.Errorf("cartridge: unrecognized RAM size code 0x%02X", code)
	}
	return size, nil
}
