package main

import (
	"context"
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"eventdesk/internal/config"
	"eventdesk/internal/guest"
	"eventdesk/internal/store"
)

// seedFile is the YAML shape organizers hand us before the event:
//
//	guests:
//	  - name: A. Visitor
//	    phone: "9876543210"
//	    notes: chief guest
type seedFile struct {
	Guests []guest.BulkInput `yaml:"guests"`
}

// Seed loads the expected-guest list for the day, all pending, so on-site
// staff only have to check people in.
func main() {
	path := flag.String("file", "guests.yaml", "YAML file with the expected guest list")
	flag.Parse()

	cfg := config.Load()

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read seed file: %v", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("parse seed file: %v", err)
	}
	if len(seed.Guests) == 0 {
		log.Fatalf("no guests in %s", *path)
	}

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	svc := guest.NewService(guest.NewPostgresRepository(db.Client))
	created, err := svc.BulkCreate(context.Background(), seed.Guests)
	if err != nil {
		log.Fatalf("seed guests: %v", err)
	}
	log.Printf("seeded %d guests from %s", len(created), *path)
}
