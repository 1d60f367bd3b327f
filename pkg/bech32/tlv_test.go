package bech32

import "testing"

func TestKindBytesStripsLeadingZeros(t *testing.T) {
	cases := []struct {
		kind uint32
		want int
	}{
		{0, 1},
		{1, 1},
		{255, 1},
		{256, 2},
		{70000, 3},
	}
	for _, c := range cases {
		got := kindBytes(c.kind)
		if len(got) != c.want {
			t.Errorf("kindBytes(%d) length = %d, want %d", c.kind, len(got), c.want)
		}
		roundTripped, err := kindFromBytes(got)
		if err != nil {
			t.Fatalf("kindFromBytes: %v", err)
		}
		if roundTripped != c.kind {
			t.Errorf("round trip mismatch: got %d want %d", roundTripped, c.kind)
		}
	}
}

func TestParseTLVSkipsUnknownTypes(t *testing.T) {
	var buf []byte
	buf, _ = appendTLV(buf, 99, []byte("unknown"))
	buf, _ = appendTLV(buf, tlvSpecial, []byte("special"))

	records, err := parseTLV(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].typ != tlvSpecial || string(records[1].value) != "special" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestParseTLVRejectsTruncatedValue(t *testing.T) {
	buf := []byte{tlvSpecial, 10, 1, 2}
	if _, err := parseTLV(buf); err == nil {
		t.Fatal("expected error for truncated TLV value")
	}
}
