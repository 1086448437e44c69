// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"path/filepath"
	"time"
)

const weekLayout = "20060102"

// WeekRange returns the Monday and Sunday of the week containing day.
func WeekRange(day time.Time) (monday, sunday time.Time) {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	monday = day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// WeekName returns "YYYYMMDD-YYYYMMDD" for the week containing day.
func WeekName(day time.Time) string {
	monday, sunday := WeekRange(day)
	return monday.Format(weekLayout) + "-" + sunday.Format(weekLayout)
}

// WeekFile returns the path of the weekly report for day inside dir.
func WeekFile(dir string, day time.Time) string {
	return filepath.Join(dir, WeekName(day)+".md")
}

// weekHeader is the content of a freshly created weekly file.
func weekHeader(day time.Time) string {
	return fmt.Sprintf("# %s\n\n", WeekName(day))
}
