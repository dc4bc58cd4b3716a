package main

import (
	"fmt"
	"strings"

	"github.com/rendis/pinmap/internal/engine/geo"
)

func runCountries(args []string) error {
	store, err := geo.NewCountryStore()
	if err != nil {
		return err
	}

	list := store.List()
	if q := strings.TrimSpace(strings.Join(args, " ")); q != "" {
		list = store.Match(q, len(list))
	}
	if len(list) == 0 {
		return fmt.Errorf("no country matches %q", strings.Join(args, " "))
	}
	for _, c := range list {
		fmt.Printf("%-12s zoom %-2d  %8.4f,%9.4f  %s\n",
			c.Name, c.Zoom, c.Center.Lat(), c.Center.Lon(), strings.Join(c.Aliases, ", "))
	}
	return nil
}
