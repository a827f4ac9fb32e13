package report

import "time"

// timestampFormat is the display format for snapshot times.
const timestampFormat = "2006-01-02 15:04"

// timeRounding trims run durations to a readable precision.
const timeRounding = time.Millisecond
