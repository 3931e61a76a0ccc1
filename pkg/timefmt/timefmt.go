// Package timefmt renders post timestamps for feed cards.
package timefmt

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// Relative renders the compact age shown on feed cards: "now", "5m", "3h",
// "2d", "4w". Anything older than a year, or in the future, falls back to
// the date.
func Relative(t time.Time, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 0:
		return t.Format("Jan 2, 2006")
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return strconv.Itoa(int(d/time.Minute)) + "m"
	case d < day:
		return strconv.Itoa(int(d/time.Hour)) + "h"
	case d < week:
		return strconv.Itoa(int(d/day)) + "d"
	case d < 52*week:
		return strconv.Itoa(int(d/week)) + "w"
	default:
		return t.Format("Jan 2, 2006")
	}
}

// Ago is the long form used in notifications ("3 minutes ago").
func Ago(t time.Time, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
