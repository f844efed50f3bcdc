package types

// Wire shapes of the shelf API. Optional fields are pointers so that JSON
// null and a missing key both decode to nil.

type Fixture struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

type Game struct {
	ID            int     `json:"id"`
	BGGID         int     `json:"bgg_id"`
	Name          string  `json:"name"`
	YearPublished *int    `json:"year_published,omitempty"`
	ThumbnailURL  *string `json:"thumbnail_url,omitempty"`
	ImageURL      *string `json:"image_url,omitempty"`
}

// GameWithPlacement is a search result: the game plus where it sits, if anywhere.
type GameWithPlacement struct {
	Game
	FixtureID *int    `json:"fixture_id,omitempty"`
	Slot      *string `json:"slot,omitempty"`
}

// Placed reports whether the game currently occupies a slot.
func (g GameWithPlacement) Placed() bool {
	return g.Slot != nil && *g.Slot != ""
}

type GridCell struct {
	Slot string `json:"slot"`
	Game *Game  `json:"game"`
}

// FixtureGrid is composed by the server: cells arrive in row-major order.
type FixtureGrid struct {
	Fixture Fixture    `json:"fixture"`
	Cells   []GridCell `json:"cells"`
}

// HasSlot reports whether slot addresses one of the grid's cells.
func (g *FixtureGrid) HasSlot(slot string) bool {
	if g == nil {
		return false
	}
	for _, c := range g.Cells {
		if c.Slot == slot {
			return true
		}
	}
	return false
}

type PlacementUpsert struct {
	FixtureID int    `json:"fixture_id"`
	Slot      string `json:"slot"`
	GameID    int    `json:"game_id"`
}

type Placement struct {
	ID        int    `json:"id"`
	FixtureID int    `json:"fixture_id"`
	Slot      string `json:"slot"`
	GameID    int    `json:"game_id"`
}
