package devapi

import (
	"testing"

	"github.com/DoyleJ11/bgg-shelf-mapper/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	s := NewStore()
	require.NoError(t, Seed(s))

	fixtures := s.Fixtures()
	require.Len(t, fixtures, 1)
	assert.Equal(t, "Office Cubes (2x5)", fixtures[0].Name)

	grid, err := s.Grid(fixtures[0].ID)
	require.NoError(t, err)
	require.Len(t, grid.Cells, 10)
	assert.Equal(t, "r0c0", grid.Cells[0].Slot)
	assert.Equal(t, "7 Wonders", grid.Cells[0].Game.Name)
	assert.Equal(t, "r1c0", grid.Cells[5].Slot)
	assert.Equal(t, "Kingdomino", grid.Cells[5].Game.Name)
	assert.Nil(t, grid.Cells[9].Game)

	// second call does nothing
	require.NoError(t, Seed(s))
	assert.Len(t, s.Fixtures(), 1)
}

func TestGrid_RowMajor(t *testing.T) {
	s := NewStore()
	f := s.AddFixture("Hall", 2, 3)

	grid, err := s.Grid(f.ID)
	require.NoError(t, err)

	var slots []string
	for _, c := range grid.Cells {
		slots = append(slots, c.Slot)
	}
	assert.Equal(t, []string{"r0c0", "r0c1", "r0c2", "r1c0", "r1c1", "r1c2"}, slots)

	_, err = s.Grid(99)
	assert.ErrorIs(t, err, ErrFixtureNotFound)
}

func TestPlace_Uniqueness(t *testing.T) {
	s := NewStore()
	f := s.AddFixture("Hall", 1, 3)
	catan := s.AddGame(types.Game{BGGID: 13, Name: "Catan"})
	skull := s.AddGame(types.Game{BGGID: 92415, Name: "Skull"})

	_, err := s.Place(types.PlacementUpsert{FixtureID: f.ID, Slot: "r0c0", GameID: catan.ID})
	require.NoError(t, err)

	// moving catan frees r0c0
	_, err = s.Place(types.PlacementUpsert{FixtureID: f.ID, Slot: "r0c2", GameID: catan.ID})
	require.NoError(t, err)

	// skull takes r0c2 and evicts catan
	_, err = s.Place(types.PlacementUpsert{FixtureID: f.ID, Slot: "r0c2", GameID: skull.ID})
	require.NoError(t, err)

	grid, err := s.Grid(f.ID)
	require.NoError(t, err)
	assert.Nil(t, grid.Cells[0].Game)
	require.NotNil(t, grid.Cells[2].Game)
	assert.Equal(t, "Skull", grid.Cells[2].Game.Name)

	games := s.Games("")
	require.Len(t, games, 2)
	assert.Equal(t, "Catan", games[0].Name)
	assert.False(t, games[0].Placed())
	assert.Equal(t, "r0c2", *games[1].Slot)
}

func TestPlace_Rejections(t *testing.T) {
	s := NewStore()
	f := s.AddFixture("Hall", 2, 2)
	g := s.AddGame(types.Game{Name: "Catan"})

	tests := []struct {
		name string
		in   types.PlacementUpsert
		want error
	}{
		{"unknown fixture", types.PlacementUpsert{FixtureID: 42, Slot: "r0c0", GameID: g.ID}, ErrFixtureNotFound},
		{"unknown game", types.PlacementUpsert{FixtureID: f.ID, Slot: "r0c0", GameID: 42}, ErrGameNotFound},
		{"malformed slot", types.PlacementUpsert{FixtureID: f.ID, Slot: "top-left", GameID: g.ID}, ErrBadSlot},
		{"row out of bounds", types.PlacementUpsert{FixtureID: f.ID, Slot: "r2c0", GameID: g.ID}, ErrSlotOutOfBounds},
		{"col out of bounds", types.PlacementUpsert{FixtureID: f.ID, Slot: "r0c9", GameID: g.ID}, ErrSlotOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Place(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGames_SearchIsCaseInsensitive(t *testing.T) {
	s := NewStore()
	require.NoError(t, Seed(s))

	games := s.Games("WORLD")
	require.Len(t, games, 1)
	assert.Equal(t, "Small World", games[0].Name)

	all := s.Games("")
	require.Len(t, all, 6)
	assert.Equal(t, "7 Wonders", all[0].Name)
	assert.Equal(t, "Small World", all[len(all)-1].Name)
}

func TestClear(t *testing.T) {
	s := NewStore()
	require.NoError(t, Seed(s))

	n, err := s.Clear(1, "r0c0")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Clear(1, "r0c0")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = s.Clear(7, "r0c0")
	assert.ErrorIs(t, err, ErrFixtureNotFound)
}
