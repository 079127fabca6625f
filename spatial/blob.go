package spatial

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/wkb"
	"github.com/go-spatial/geom/encoding/wkt"
)

// SpatiaLite BLOB geometry layout, per the gaia BLOB-Geometry format:
//
//	byte  0      start marker 0x00
//	byte  1      byte order (0 big endian, 1 little endian)
//	bytes 2-5    SRID
//	bytes 6-37   MBR (min x, min y, max x, max y as float64)
//	byte  38     MBR end marker 0x7C
//	bytes 39..   geometry body, WKB minus the leading byte-order marker
//	last byte    end marker 0xFE
const (
	blobStartMarker  = 0x00
	blobMBREndMarker = 0x7C
	blobEndMarker    = 0xFE
	blobHeaderSize   = 39
)

var ErrInvalidBlob = errors.New("invalid SpatiaLite BLOB geometry")

// BlobElement is a decoded SpatiaLite BLOB geometry: the spatial reference
// it was stored with, its bounding envelope, and the re-assembled WKB.
type BlobElement struct {
	SRID     int
	Envelope [4]float64 // min x, min y, max x, max y
	WKB      []byte
}

// DecodeBlob parses a SpatiaLite BLOB geometry. The geometry body inside the
// BLOB is standard WKB with the byte-order marker stripped, so prepending
// the envelope's byte-order byte restores a decodable WKB value.
func DecodeBlob(blob []byte) (*BlobElement, error) {
	if len(blob) < blobHeaderSize+2 {
		return nil, fmt.Errorf("%w: %d bytes is too short", ErrInvalidBlob, len(blob))
	}
	if blob[0] != blobStartMarker {
		return nil, fmt.Errorf("%w: bad start marker 0x%02X", ErrInvalidBlob, blob[0])
	}

	var order binary.ByteOrder
	switch blob[1] {
	case 0:
		order = binary.BigEndian
	case 1:
		order = binary.LittleEndian
	default:
		return nil, fmt.Errorf("%w: bad byte order 0x%02X", ErrInvalidBlob, blob[1])
	}

	if blob[38] != blobMBREndMarker {
		return nil, fmt.Errorf("%w: bad MBR end marker 0x%02X", ErrInvalidBlob, blob[38])
	}
	if blob[len(blob)-1] != blobEndMarker {
		return nil, fmt.Errorf("%w: bad end marker 0x%02X", ErrInvalidBlob, blob[len(blob)-1])
	}

	element := &BlobElement{
		SRID: int(int32(order.Uint32(blob[2:6]))),
	}
	for i := range element.Envelope {
		offset := 6 + i*8
		element.Envelope[i] = math.Float64frombits(order.Uint64(blob[offset : offset+8]))
	}

	element.WKB = make([]byte, 0, len(blob)-blobHeaderSize)
	element.WKB = append(element.WKB, blob[1])
	element.WKB = append(element.WKB, blob[blobHeaderSize:len(blob)-1]...)
	return element, nil
}

// Geometry decodes the element's WKB into a geometry value.
func (e *BlobElement) Geometry() (geom.Geometry, error) {
	g, err := wkb.DecodeBytes(e.WKB)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geometry WKB: %w", err)
	}
	return g, nil
}

// WKT returns the element as Well-Known Text.
func (e *BlobElement) WKT() (string, error) {
	g, err := e.Geometry()
	if err != nil {
		return "", err
	}
	return wkt.EncodeString(g)
}

// EWKT returns the element as Extended Well-Known Text with its SRID.
func (e *BlobElement) EWKT() (string, error) {
	text, err := e.WKT()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SRID=%d;%s", e.SRID, text), nil
}
