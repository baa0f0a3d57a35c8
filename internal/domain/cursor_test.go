package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCursorRoundTrip(t *testing.T) {
	orig := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 589000, time.UTC),
		ID:        uuid.New(),
	}

	decoded, err := DecodeCursor(orig.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("created_at = %v, want %v", decoded.CreatedAt, orig.CreatedAt)
	}
	if decoded.ID != orig.ID {
		t.Errorf("id = %v, want %v", decoded.ID, orig.ID)
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	cases := []string{
		"",
		"not base64!!",
		"aGVsbG8",                // no separator
		"MTIzNDU2Om5vdC1hLXV1aWQ", // "123456:not-a-uuid"
		"eDoxMjM",                 // "x:123" bad timestamp
	}
	for _, token := range cases {
		if _, err := DecodeCursor(token); err == nil {
			t.Errorf("DecodeCursor(%q) accepted garbage", token)
		}
	}
}

func TestCursorOrdering(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	id := uuid.MustParse("99999999-0000-0000-0000-000000000000")
	c := Cursor{CreatedAt: ts, ID: id}

	if !c.After(ts.Add(time.Second), uuid.New()) {
		t.Error("newer timestamp should sort after the cursor")
	}
	if c.After(ts.Add(-time.Second), uuid.New()) {
		t.Error("older timestamp should sort before the cursor")
	}

	// Same timestamp: id string decides.
	smaller := uuid.MustParse("11111111-0000-0000-0000-000000000000")
	larger := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	if c.After(ts, smaller) {
		t.Error("smaller id at the same timestamp should sort before the cursor")
	}
	if !c.After(ts, larger) {
		t.Error("larger id at the same timestamp should sort after the cursor")
	}
	if !c.After(ts, id) {
		t.Error("the cursor position itself is not strictly older")
	}
}
