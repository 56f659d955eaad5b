package reversi

// FindBoundary - returns the pawns of the line that must take the trigger's color.
//
// The line is cut into runs of occupied cells. Each run is split again every time
// a pawn of the trigger color closes a segment of at least two pawns; that pawn
// also opens the next segment, so the trigger bounds segments on both of its sides.
// A segment is kept when it has an interior, both ends have the trigger color and
// it holds the trigger itself.
func FindBoundary(line []*Pawn, trigger *Pawn) []*Pawn {
	if trigger == nil {
		return nil
	}

	color := trigger.Color
	segments := [][]*Pawn{{}}

	for _, pawn := range line {
		if pawn == nil {
			segments = append(segments, []*Pawn{})
			continue
		}

		current := append(segments[len(segments)-1], pawn)
		segments[len(segments)-1] = current

		if len(current) > 1 && pawn.Color == color {
			segments = append(segments, []*Pawn{pawn})
		}
	}

	var bounded []*Pawn
	seen := make(map[string]struct{})

	for _, segment := range segments {
		if !isBounded(segment, color, trigger) {
			continue
		}

		for _, pawn := range segment {
			if _, ok := seen[pawn.ID]; ok {
				continue
			}

			seen[pawn.ID] = struct{}{}
			bounded = append(bounded, pawn)
		}
	}

	return bounded
}

func isBounded(segment []*Pawn, color Color, trigger *Pawn) bool {
	if len(segment) <= 2 {
		return false
	}

	if segment[0].Color != color || segment[len(segment)-1].Color != color {
		return false
	}

	for _, pawn := range segment {
		if pawn.Is(trigger) {
			return true
		}
	}

	return false
}

// Reverse - sets the trigger's color on every bounded pawn of the line and
// returns how many pawns actually changed color.
func Reverse(line []*Pawn, trigger *Pawn) int {
	reversed := 0

	for _, pawn := range FindBoundary(line, trigger) {
		if pawn.Color != trigger.Color {
			pawn.Color = trigger.Color
			reversed++
		}
	}

	return reversed
}
