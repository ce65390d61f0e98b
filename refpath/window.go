package refpath

// Window is a cached local slice of a full reference path around the vehicle's
// current arc length. It is rebuilt only when the vehicle travels beyond its span or
// a new raw-waypoint set arrives, saving the per-cycle cost of re-slicing.
type Window struct {
	ref      *ReferencePath
	from, to float64
}

// NewWindow cuts the sub-path whose arc lengths lie in [s-behind, s+ahead] out of
// full. Arc lengths of the full path are retained, so s values remain comparable
// across window rebuilds. If the requested span exceeds the full path, the window is
// clipped to it.
func NewWindow(full *ReferencePath, s, behind, ahead float64) *Window {
	lo, hi := s-behind, s+ahead
	startIdx, endIdx := 0, len(full.Path)-1
	for startIdx < endIdx && full.S[startIdx+1] <= lo {
		startIdx++
	}
	for endIdx > startIdx && full.S[endIdx-1] >= hi {
		endIdx--
	}
	sub := &ReferencePath{
		Path: full.Path[startIdx : endIdx+1],
		S:    full.S[startIdx : endIdx+1],
	}
	return &Window{ref: sub, from: sub.StartS(), to: sub.EndS()}
}

// Ref returns the windowed reference path.
func (w *Window) Ref() *ReferencePath {
	return w.ref
}

// Covers reports whether the window still spans [s, s+lookahead], i.e. whether the
// cached window can be reused for a vehicle at arc length s.
func (w *Window) Covers(s, lookahead float64) bool {
	if w == nil {
		return false
	}
	return s >= w.from && s+lookahead <= w.to
}
