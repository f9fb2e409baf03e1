package grid

import "math"

// MaxRowPieces bounds the number of pieces ConsolidateRow lays in one row.
const MaxRowPieces = 50

// Piece is one element of a consolidated row. Offset is measured from the
// start of the row.
type Piece struct {
	Offset  float64 `json:"offset"`
	Width   float64 `json:"width"`
	Nominal float64 `json:"nominal"`
}

// ConsolidateRow fills a row of the given width with pieces drawn from
// next, separated by joint. A piece that would leave less than minPiece
// after itself, or that does not fit, is stretched or cut to take the rest
// of the row, so the widths plus the joints between them always add up to
// width.
//
// A positive leadOffset shortens the first piece by that amount, as running
// bond rows do. A lead shorter than minPiece is merged into the following
// piece.
func ConsolidateRow(width, minPiece, joint float64, next func() float64, leadOffset float64) []Piece {
	if width <= 0 {
		return nil
	}
	minPiece = math.Max(minPiece, 0)
	joint = math.Max(joint, 0)
	floor := math.Max(minPiece, eps)

	var pieces []Piece
	pos := 0.0
	for i := 0; len(pieces) < MaxRowPieces; i++ {
		remaining := width - pos
		nominal := next()
		l := math.Max(nominal, minPiece)

		if i == 0 && leadOffset > 0 {
			lead := l - leadOffset
			if lead < floor {
				nominal = next()
				l = math.Max(nominal, minPiece)
				if lead > 0 {
					l += lead + joint
				}
			} else {
				l = lead
			}
		}

		if l >= remaining || remaining-l-joint < floor {
			pieces = append(pieces, Piece{Offset: pos, Width: remaining, Nominal: nominal})
			return pieces
		}
		pieces = append(pieces, Piece{Offset: pos, Width: l, Nominal: nominal})
		pos += l + joint
	}

	last := &pieces[len(pieces)-1]
	last.Width = width - last.Offset
	return pieces
}
