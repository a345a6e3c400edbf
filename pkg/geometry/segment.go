package geometry

// DistanceToSegment returns the shortest distance from p to the segment a-b.
// Used for stroke hit-testing with a pixel tolerance.
func DistanceToSegment(p, a, b Point2D) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := a.Add(ab.Scale(t))
	return p.Distance(closest)
}

// ProjectOntoLine projects p onto the infinite line through origin with the
// given direction, returning the signed scalar offset along dir.
// dir must be a unit vector.
func ProjectOntoLine(p, origin, dir Point2D) float64 {
	return p.Sub(origin).Dot(dir)
}

// OffsetAlong returns origin displaced by dist along the unit vector dir.
func OffsetAlong(origin, dir Point2D, dist float64) Point2D {
	return origin.Add(dir.Scale(dist))
}
