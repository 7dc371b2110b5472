package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/gigscope/gigscope/pkg/match"
	"github.com/gigscope/gigscope/pkg/model"
	"github.com/gigscope/gigscope/pkg/sources/relisten"
	"github.com/gigscope/gigscope/pkg/sources/songfish"
)

func main() {
	// Usage: go run main.go -apikey "your_songfish_key" -artist "artist-slug" -date "2025-07-25"

	keyFlag := flag.String("apikey", "", "Songfish API key")
	artistFlag := flag.String("artist", "", "Artist slug on the audio archive")
	dateFlag := flag.String("date", "", "Show date (yyyy-mm-dd)")

	flag.Parse()

	if *keyFlag == "" || *artistFlag == "" || *dateFlag == "" {
		fmt.Println("apikey, artist and date are all required.")
		return
	}

	ctx := context.Background()
	setlists := songfish.New("", *keyFlag, nil)
	audio := relisten.New("", *artistFlag, nil)

	show, entries, err := setlists.FetchSetlist(ctx, *dateFlag)
	if err != nil {
		fmt.Println("setlist fetch failed:", err)
		return
	}
	durations, err := audio.FetchDurations(ctx, *dateFlag)
	if err != nil {
		fmt.Println("duration fetch failed:", err)
		return
	}

	enriched := match.Reconcile(show, entries, durations, nil)
	fmt.Printf("%s — %s\n", enriched.Show.Date, enriched.Show.Venue)
	for _, s := range enriched.Songs {
		dur := "duration unavailable"
		if s.Duration != nil {
			dur = model.FormatDuration(s.Duration.Seconds)
		}
		fmt.Printf("  [%s] %s  %s\n", s.Entry.Set, s.Entry.Song, dur)
	}
}
