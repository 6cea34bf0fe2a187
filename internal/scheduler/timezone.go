package scheduler

import "time"

// ViewerLocation returns the *time.Location for a viewer timezone string.
// Falls back to UTC if the timezone is invalid or empty.
func ViewerLocation(timezone string) *time.Location {
	if timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ResolveLocal converts a wall-clock time meant as experienced in loc into
// the corresponding instant. A naive guess that treats the fields as UTC
// can land on the wrong side of a DST transition and be off by the full
// offset change, so the guess is rendered back into loc and shifted by the
// wall-clock delta, twice; two passes converge for real-world offset rules.
//
// Known limitation: a wall-clock time that does not exist (spring-forward
// gap) or exists twice (fall-back) is not detected; the result is some
// valid instant near the requested time.
func ResolveLocal(loc *time.Location, year int, month time.Month, day, hour, minute int) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	want := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	guess := want
	for i := 0; i < 2; i++ {
		rendered := guess.In(loc)
		got := time.Date(rendered.Year(), rendered.Month(), rendered.Day(),
			rendered.Hour(), rendered.Minute(), 0, 0, time.UTC)
		guess = guess.Add(want.Sub(got))
	}
	return guess
}
