package store

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Decode copies a record into the struct pointed to by out using `mapstructure` tags.
// Numbers may arrive as int64, float64 or json.Number depending on the adapter;
// timestamps are stored as RFC 3339 strings.
func Decode(rec Record, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
		Result: out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(rec)); err != nil {
		return fmt.Errorf("decode record %d: %w", rec.ID(), err)
	}
	return nil
}

// FormatTime renders a timestamp the way Decode expects to read it back.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
