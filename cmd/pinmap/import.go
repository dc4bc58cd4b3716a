package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rendis/pinmap/internal/engine/storage"
)

func runImport(args []string) error {
	var dbPath, placesPath, postsPath string

	fs := flag.NewFlagSet("import", flag.ExitOnError)
	fs.StringVar(&dbPath, "db", "", "Catalog .db file, created if missing (required)")
	fs.StringVar(&placesPath, "places", "", "Places CSV (id,name,lat,lng,country,is_domestic,...)")
	fs.StringVar(&postsPath, "posts", "", "Posts CSV (id,place_id,thumbnail,likes,created_at)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pinmap import [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  pinmap import -db seoul.db -places places.csv -posts posts.csv\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if dbPath == "" {
		return fmt.Errorf("-db is required")
	}
	if placesPath == "" && postsPath == "" {
		return fmt.Errorf("nothing to import: pass -places and/or -posts")
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	if placesPath != "" {
		f, err := os.Open(placesPath)
		if err != nil {
			return fmt.Errorf("opening places: %w", err)
		}
		places, err := storage.ReadPlacesCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("parsing %s: %w", placesPath, err)
		}
		n, err := store.InsertPlaces(ctx, places)
		if err != nil {
			return fmt.Errorf("saving places: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Imported %d places\n", n)
	}

	if postsPath != "" {
		f, err := os.Open(postsPath)
		if err != nil {
			return fmt.Errorf("opening posts: %w", err)
		}
		posts, err := storage.ReadPostsCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("parsing %s: %w", postsPath, err)
		}
		n, err := store.InsertPosts(ctx, posts)
		if err != nil {
			return fmt.Errorf("saving posts: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Imported %d posts\n", n)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Catalog %s now holds %d places\n", dbPath, total)
	return nil
}
