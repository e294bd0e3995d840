package market

// ResampleWeekly collapses daily bars into weekly bars using ISO weeks
// (Monday start). Open is the first open of the week, High the max, Low the
// min, Close the last close, Volume the sum. The weekly bar carries the Date
// and Symbol of the first daily bar in its week.
func ResampleWeekly(daily []Bar) []Bar {
	if len(daily) == 0 {
		return nil
	}

	bars := make([]Bar, len(daily))
	copy(bars, daily)
	SortBars(bars)

	var (
		out      []Bar
		cur      Bar
		curYear  int
		curWeek  int
		haveOpen bool
	)

	flush := func() {
		if haveOpen {
			out = append(out, cur)
			haveOpen = false
		}
	}

	for _, b := range bars {
		year, week := b.Date.ISOWeek()
		if !haveOpen || year != curYear || week != curWeek {
			flush()
			cur = b
			curYear, curWeek = year, week
			haveOpen = true
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	flush()

	return out
}
