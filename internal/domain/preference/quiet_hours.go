package preference

// IsQuiet reports whether now falls inside the quiet-hours window
// [start, end). The window is absent when either bound is nil.
//
// The start bound is inclusive and the end bound exclusive, so at the exact
// end of the window delivery resumes. A window whose start is later than its
// end wraps across midnight ("22:00"–"08:00" silences the late evening and
// the early morning). Equal bounds describe an empty window, never a full
// day.
func IsQuiet(now TimeOfDay, start, end *TimeOfDay) bool {
	if start == nil || end == nil {
		return false
	}
	s, e := *start, *end
	if s <= e {
		return now >= s && now < e
	}
	// Overnight wrap.
	return now >= s || now < e
}
