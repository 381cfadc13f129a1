// Package route orders a rider's drop points by a fixed walking sequence
// out of the cafeteria.
package route

import (
	"fmt"
	"sort"
	"strings"
)

const (
	Start     = "Cafeteria"
	separator = " -> "
	unknown   = 99
)

// Default is returned when there is nothing to order.
const Default = "Cafeteria -> Admin Block -> Library -> Hostels"

var sequence = map[string]int{
	"Main Cafeteria":    0,
	"Admin Block":       1,
	"CS Dept Block B":   2,
	"Girls Hostel 1":    3,
	"Boys Hostel 2":     4,
	"Library Main Gate": 5,
}

func rank(loc string) int {
	if r, ok := sequence[loc]; ok {
		return r
	}
	return unknown
}

// Optimize groups repeated locations, sorts them by sequence (ties keep
// first-seen order) and renders the path starting at the cafeteria.
func Optimize(locations []string) string {
	if len(locations) == 0 {
		return Default
	}
	counts := map[string]int{}
	var unique []string
	for _, loc := range locations {
		if counts[loc] == 0 {
			unique = append(unique, loc)
		}
		counts[loc]++
	}
	sort.SliceStable(unique, func(i, j int) bool { return rank(unique[i]) < rank(unique[j]) })

	stops := make([]string, 0, len(unique)+1)
	stops = append(stops, Start)
	for _, loc := range unique {
		if n := counts[loc]; n > 1 {
			stops = append(stops, fmt.Sprintf("%s (%d)", loc, n))
			continue
		}
		stops = append(stops, loc)
	}
	return strings.Join(stops, separator)
}

// Stops splits a rendered path back into its stops.
func Stops(path string) []string {
	var out []string
	for _, s := range strings.Split(path, strings.TrimSpace(separator)) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
