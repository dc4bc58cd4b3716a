package model

import (
	"fmt"
	"strings"
)

// Region splits the catalog into home-country and abroad.
type Region int

const (
	RegionDomestic Region = iota
	RegionInternational
)

func (r Region) String() string {
	if r == RegionInternational {
		return "international"
	}
	return "domestic"
}

// ParseRegion accepts "domestic"/"international" (and the short forms "dom"/"intl").
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "domestic", "dom":
		return RegionDomestic, nil
	case "international", "intl":
		return RegionInternational, nil
	}
	return RegionDomestic, fmt.Errorf("unknown region %q", s)
}

// SortMode orders the place list.
type SortMode int

const (
	SortNearest SortMode = iota
	SortNewest
	SortPopular
)

func (s SortMode) String() string {
	switch s {
	case SortNewest:
		return "newest"
	case SortPopular:
		return "popular"
	default:
		return "nearest"
	}
}

// Next cycles nearest → newest → popular → nearest.
func (s SortMode) Next() SortMode {
	return (s + 1) % 3
}

func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nearest":
		return SortNearest, nil
	case "newest":
		return SortNewest, nil
	case "popular":
		return SortPopular, nil
	}
	return SortNearest, fmt.Errorf("unknown sort mode %q", s)
}
