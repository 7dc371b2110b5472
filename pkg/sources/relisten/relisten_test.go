package relisten

import "testing"

const showBody = `{
  "display_date": "2025-07-25",
  "sets": [
    {"name": "Set 1", "tracks": [
      {"title": "Fee", "duration_ms": 310000},
      {"title": "Llama", "duration_ms": 281500}
    ]},
    {"name": "Encore", "tracks": [
      {"title": "Destiny Unbound", "duration_ms": 412000}
    ]}
  ]
}`

func TestParseDurations(t *testing.T) {
	entries := parseDurations(showBody)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	if entries[0].Song != "Fee" || entries[0].Seconds != 310 || entries[0].Set != "1" || entries[0].Position != 1 {
		t.Fatalf("entry 0 wrong: %+v", entries[0])
	}
	// 281500 ms truncates to 281 s.
	if entries[1].Seconds != 281 {
		t.Fatalf("ms truncation wrong: %+v", entries[1])
	}
	if entries[2].Set != "e" || entries[2].Position != 1 {
		t.Fatalf("encore entry wrong: %+v", entries[2])
	}
}

func TestParseDurationsSecondsFallback(t *testing.T) {
	body := `{"sets": [{"name": "1", "tracks": [{"title": "Fee", "duration": 310.4}]}]}`
	entries := parseDurations(body)
	if len(entries) != 1 || entries[0].Seconds != 310 {
		t.Fatalf("seconds fallback wrong: %+v", entries)
	}
}

func TestParseDurationsEmpty(t *testing.T) {
	if entries := parseDurations(`{"sets": []}`); len(entries) != 0 {
		t.Fatalf("expected no entries, got %+v", entries)
	}
}
