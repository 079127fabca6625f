package spatial

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-spatial/geom"
)

// makePointBlob builds a little-endian SpatiaLite BLOB for a 2D point.
func makePointBlob(srid int, x, y float64) []byte {
	blob := make([]byte, 0, 60)
	blob = append(blob, 0x00, 0x01)

	blob = binary.LittleEndian.AppendUint32(blob, uint32(srid))
	for _, v := range []float64{x, y, x, y} {
		blob = binary.LittleEndian.AppendUint64(blob, math.Float64bits(v))
	}
	blob = append(blob, 0x7C)

	// WKB point body without the byte-order marker.
	blob = binary.LittleEndian.AppendUint32(blob, 1)
	blob = binary.LittleEndian.AppendUint64(blob, math.Float64bits(x))
	blob = binary.LittleEndian.AppendUint64(blob, math.Float64bits(y))

	return append(blob, 0xFE)
}

func TestDecodeBlob(t *testing.T) {
	element, err := DecodeBlob(makePointBlob(4326, 105.9, 47.9))
	if err != nil {
		t.Fatalf("DecodeBlob() error: %v", err)
	}
	if element.SRID != 4326 {
		t.Errorf("SRID = %d, want 4326", element.SRID)
	}
	want := [4]float64{105.9, 47.9, 105.9, 47.9}
	if element.Envelope != want {
		t.Errorf("Envelope = %v, want %v", element.Envelope, want)
	}

	g, err := element.Geometry()
	if err != nil {
		t.Fatalf("Geometry() error: %v", err)
	}
	point, ok := g.(geom.Point)
	if !ok {
		t.Fatalf("geometry is %T, want geom.Point", g)
	}
	if point.X() != 105.9 || point.Y() != 47.9 {
		t.Errorf("point = (%v, %v), want (105.9, 47.9)", point.X(), point.Y())
	}
}

func TestBlobWKT(t *testing.T) {
	element, err := DecodeBlob(makePointBlob(4326, 1, 2))
	if err != nil {
		t.Fatal(err)
	}

	text, err := element.WKT()
	if err != nil {
		t.Fatalf("WKT() error: %v", err)
	}
	if !strings.HasPrefix(text, "POINT") {
		t.Errorf("WKT = %q, want a POINT", text)
	}

	ewkt, err := element.EWKT()
	if err != nil {
		t.Fatalf("EWKT() error: %v", err)
	}
	if !strings.HasPrefix(ewkt, "SRID=4326;POINT") {
		t.Errorf("EWKT = %q, want SRID=4326;POINT prefix", ewkt)
	}
}

func TestDecodeBlobInvalid(t *testing.T) {
	valid := makePointBlob(4326, 1, 2)

	corrupt := func(offset int, value byte) []byte {
		blob := append([]byte(nil), valid...)
		blob[offset] = value
		return blob
	}

	tt := []struct {
		name string
		blob []byte
	}{
		{"too short", valid[:20]},
		{"bad start marker", corrupt(0, 0x01)},
		{"bad byte order", corrupt(1, 0x02)},
		{"bad MBR end marker", corrupt(38, 0x00)},
		{"bad end marker", corrupt(len(valid)-1, 0x00)},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeBlob(tc.blob); !errors.Is(err, ErrInvalidBlob) {
				t.Errorf("err = %v, want ErrInvalidBlob", err)
			}
		})
	}
}

func TestDecodeBlobBigEndian(t *testing.T) {
	blob := make([]byte, 0, 60)
	blob = append(blob, 0x00, 0x00)
	blob = binary.BigEndian.AppendUint32(blob, 3857)
	for _, v := range []float64{5, 6, 5, 6} {
		blob = binary.BigEndian.AppendUint64(blob, math.Float64bits(v))
	}
	blob = append(blob, 0x7C)
	blob = binary.BigEndian.AppendUint32(blob, 1)
	blob = binary.BigEndian.AppendUint64(blob, math.Float64bits(5))
	blob = binary.BigEndian.AppendUint64(blob, math.Float64bits(6))
	blob = append(blob, 0xFE)

	element, err := DecodeBlob(blob)
	if err != nil {
		t.Fatalf("DecodeBlob() error: %v", err)
	}
	if element.SRID != 3857 {
		t.Errorf("SRID = %d, want 3857", element.SRID)
	}
	if _, err := element.Geometry(); err != nil {
		t.Fatalf("Geometry() error: %v", err)
	}
}
