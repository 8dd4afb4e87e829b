package motorpool_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aretw0/motorpool"
	"github.com/aretw0/motorpool/pkg/domain"
	"github.com/aretw0/motorpool/pkg/ports"
)

// memoryStore keeps the snapshot in memory. Real hosts use the file or
// Redis adapters shipped with the CLI; any two-method store works.
type memoryStore struct {
	snap  domain.Snapshot
	saved bool
}

func (s *memoryStore) Load(ctx context.Context) (domain.Snapshot, error) {
	if !s.saved {
		return domain.NewSnapshot(), nil
	}
	return s.snap.Clone(), nil
}

func (s *memoryStore) Save(ctx context.Context, snap domain.Snapshot) error {
	s.snap = snap.Clone()
	s.saved = true
	return nil
}

// printTransport renders outbound actions to stdout, one recipient-prefixed
// line per message.
type printTransport struct{}

func (printTransport) SendText(ctx context.Context, to, text string) error {
	fmt.Printf("%s <- %s\n", to, text)
	return nil
}

func (printTransport) SendMedia(ctx context.Context, to string, kind domain.MediaKind, ref string) error {
	fmt.Printf("%s <- %s %s\n", to, kind, ref)
	return nil
}

func (printTransport) ShowMenu(ctx context.Context, to, prompt string, items []ports.MenuItem) error {
	fmt.Printf("%s <- menu: %s\n", to, prompt)
	for _, it := range items {
		fmt.Printf("  [%s] %s\n", it.Token, it.Label)
	}
	return nil
}

func (printTransport) ReplaceMenu(ctx context.Context, to, messageRef, prompt string, items []ports.MenuItem) error {
	return printTransport{}.ShowMenu(ctx, to, prompt, items)
}

// ExampleNew walks the full happy path: an admin registers a car, a driver
// checks it out with one condition photo, and the admin is notified.
func ExampleNew() {
	ctx := context.Background()
	at := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)

	app, err := motorpool.New(ctx, &memoryStore{}, printTransport{},
		[]string{"boss"},
		motorpool.WithClock(func() time.Time { return at }),
	)
	if err != nil {
		log.Fatal(err)
	}

	boss := domain.Identity{ID: "boss", Name: "Boss"}
	dana := domain.Identity{ID: "dana", Name: "Dana"}

	events := []motorpool.Event{
		{From: boss, Kind: motorpool.KindCommand, Command: "addcar"},
		{From: boss, Kind: motorpool.KindText, Text: "Toyota Camry А123БВ"},
		{From: dana, Kind: motorpool.KindCommand, Command: "takecar"},
		{From: dana, Kind: motorpool.KindSelection, Selection: "car:1"},
		{From: dana, Kind: motorpool.KindMedia, Media: &domain.MediaAttachment{Kind: domain.MediaPhoto, Ref: "front.jpg"}},
		{From: dana, Kind: motorpool.KindCommand, Command: "done"},
	}
	for _, ev := range events {
		if err := app.Handle(ctx, ev); err != nil {
			log.Fatal(err)
		}
	}

	// Output:
	// boss <- Enter the car's model and plate (e.g. Toyota Camry А123БВ):
	// boss <- Car #1 added: Toyota Camry А123БВ
	// dana <- menu: Choose a car:
	//   [car:1] #1 Toyota Camry А123БВ
	// dana <- Send photos/videos of the car's condition (as many as you need). Send /done when finished, /cancel to abort.
	// dana <- Attachment 1 received. Send more or /done.
	// dana <- Shift started! Car #1 Toyota Camry А123БВ
	// boss <- New shift
	// Driver: Dana
	// Car: #1 Toyota Camry А123БВ
	// Started: 09:30 17.05.2024
	// boss <- photo front.jpg
}
