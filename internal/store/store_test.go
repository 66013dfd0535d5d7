package store

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRecordID(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want int64
	}{
		{name: "int64", rec: Record{"id": int64(7)}, want: 7},
		{name: "int", rec: Record{"id": 3}, want: 3},
		{name: "float from json", rec: Record{"id": float64(12)}, want: 12},
		{name: "json number", rec: Record{"id": json.Number("42")}, want: 42},
		{name: "missing", rec: Record{}, want: 0},
		{name: "wrong type", rec: Record{"id": "x"}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.ID(); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	orig := Record{"members": []int64{1, 2}, "tags": []any{"a"}}
	cp := orig.Clone()

	cp["members"].([]int64)[0] = 99
	cp["tags"].([]any)[0] = "b"

	if orig["members"].([]int64)[0] != 1 {
		t.Fatalf("clone shares members slice")
	}
	if orig["tags"].([]any)[0] != "a" {
		t.Fatalf("clone shares tags slice")
	}
}

func TestMergeKeepsID(t *testing.T) {
	orig := Record{"id": int64(1), "name": "old", "members": []int64{1}}
	merged := orig.Merge(Record{"id": int64(5), "name": "new"})

	if merged.ID() != 1 {
		t.Fatalf("expected id 1, got %d", merged.ID())
	}
	if merged["name"] != "new" {
		t.Fatalf("expected name to be patched, got %v", merged["name"])
	}
	if orig["name"] != "old" {
		t.Fatalf("merge mutated the original")
	}
}

type decodedRoom struct {
	ID        int64     `mapstructure:"id"`
	Name      string    `mapstructure:"name"`
	Members   []int64   `mapstructure:"members"`
	CreatedAt time.Time `mapstructure:"createdAt"`
}

func TestDecodeAcceptsAdapterNumberShapes(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  Record
	}{
		{
			name: "native",
			rec:  Record{"id": int64(4), "name": "a", "members": []int64{1, 2}, "createdAt": FormatTime(created)},
		},
		{
			name: "json numbers",
			rec:  Record{"id": json.Number("4"), "name": "a", "members": []any{json.Number("1"), json.Number("2")}, "createdAt": FormatTime(created)},
		},
		{
			name: "floats",
			rec:  Record{"id": float64(4), "name": "a", "members": []any{float64(1), float64(2)}, "createdAt": FormatTime(created)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var room decodedRoom
			if err := Decode(tt.rec, &room); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if room.ID != 4 || room.Name != "a" {
				t.Fatalf("unexpected room: %+v", room)
			}
			if len(room.Members) != 2 || room.Members[0] != 1 || room.Members[1] != 2 {
				t.Fatalf("unexpected members: %v", room.Members)
			}
			if !room.CreatedAt.Equal(created) {
				t.Fatalf("expected %v, got %v", created, room.CreatedAt)
			}
		})
	}
}
