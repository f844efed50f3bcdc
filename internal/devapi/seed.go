package devapi

import "github.com/DoyleJ11/bgg-shelf-mapper/pkg/types"

type sampleGame struct {
	bggID int
	name  string
	year  int
}

var sampleGames = []sampleGame{
	{68448, "7 Wonders", 2010},
	{199042, "Harry Potter: Hogwarts Battle", 2016},
	{206931, "Encore!", 2016},
	{40692, "Small World", 2009},
	{92415, "Skull", 2011},
	{204583, "Kingdomino", 2016},
}

// Seed fills an empty store with one 2x5 fixture and the sample games: the
// first five across the top row, the sixth bottom-left.
func Seed(s *Store) error {
	if len(s.Fixtures()) > 0 {
		return nil
	}
	f := s.AddFixture("Office Cubes (2x5)", 2, 5)

	for i, sg := range sampleGames {
		year := sg.year
		g := s.AddGame(types.Game{BGGID: sg.bggID, Name: sg.name, YearPublished: &year})

		slot := SlotName(0, i)
		if i >= f.Cols {
			slot = SlotName(1, i-f.Cols)
		}
		if _, err := s.Place(types.PlacementUpsert{FixtureID: f.ID, Slot: slot, GameID: g.ID}); err != nil {
			return err
		}
	}
	return nil
}
