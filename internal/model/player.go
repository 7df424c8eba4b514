package model

// Player owns the pieces of one color. Material only grows, except for the
// pawn handed back on promotion; captured pieces stay listed.
type Player struct {
	Name     string
	Color    Color
	Material []*Piece
}

func NewPlayer(name string, color Color) *Player {
	return &Player{Name: name, Color: color}
}

func (p *Player) giveMaterial(piece *Piece) {
	p.Material = append(p.Material, piece)
}

// replaceMaterial swaps old for replacement in the material list.
func (p *Player) replaceMaterial(old, replacement *Piece) bool {
	for i, piece := range p.Material {
		if piece == old {
			p.Material[i] = replacement
			return true
		}
	}
	return false
}

// TotalMaterial sums the values of the player's uncaptured pieces.
func (p *Player) TotalMaterial() int {
	total := 0
	for _, piece := range p.Material {
		if piece != nil && !piece.Captured {
			total += piece.Type.Value()
		}
	}
	return total
}

func (p *Player) String() string {
	return p.Name
}
