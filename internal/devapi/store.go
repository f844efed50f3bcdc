package devapi

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/DoyleJ11/bgg-shelf-mapper/pkg/types"
)

var (
	ErrFixtureNotFound = errors.New("Fixture not found")
	ErrGameNotFound    = errors.New("Game not found")
	ErrBadSlot         = errors.New("slot must look like r0c0")
	ErrSlotOutOfBounds = errors.New("slot is out of bounds for this fixture")
)

var slotRe = regexp.MustCompile(`^r(\d+)c(\d+)$`)

func SlotName(row, col int) string {
	return fmt.Sprintf("r%dc%d", row, col)
}

func parseSlot(slot string) (row, col int, err error) {
	m := slotRe.FindStringSubmatch(slot)
	if m == nil {
		return 0, 0, ErrBadSlot
	}
	row, _ = strconv.Atoi(m[1])
	col, _ = strconv.Atoi(m[2])
	return row, col, nil
}

type slotKey struct {
	fixtureID int
	slot      string
}

// Store keeps fixtures, games and placements in memory. A game sits in at
// most one slot and a slot holds at most one game.
type Store struct {
	mu        sync.Mutex
	fixtures  []types.Fixture
	games     map[int]types.Game
	bySlot    map[slotKey]int // -> game id
	nextID    int
	nextGame  int
	nextPlace int
}

func NewStore() *Store {
	return &Store{
		games:  make(map[int]types.Game),
		bySlot: make(map[slotKey]int),
	}
}

func (s *Store) AddFixture(name string, rows, cols int) types.Fixture {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	f := types.Fixture{ID: s.nextID, Name: name, Rows: rows, Cols: cols}
	s.fixtures = append(s.fixtures, f)
	return f
}

func (s *Store) AddGame(g types.Game) types.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGame++
	g.ID = s.nextGame
	s.games[g.ID] = g
	return g
}

func (s *Store) Fixtures() []types.Fixture {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.fixtures)
}

func (s *Store) fixture(id int) (types.Fixture, bool) {
	for _, f := range s.fixtures {
		if f.ID == id {
			return f, true
		}
	}
	return types.Fixture{}, false
}

// Grid composes the fixture's cells in row-major order.
func (s *Store) Grid(fixtureID int) (*types.FixtureGrid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fixture(fixtureID)
	if !ok {
		return nil, ErrFixtureNotFound
	}
	grid := &types.FixtureGrid{Fixture: f, Cells: make([]types.GridCell, 0, f.Rows*f.Cols)}
	for r := 0; r < f.Rows; r++ {
		for c := 0; c < f.Cols; c++ {
			cell := types.GridCell{Slot: SlotName(r, c)}
			if gameID, ok := s.bySlot[slotKey{f.ID, cell.Slot}]; ok {
				g := s.games[gameID]
				cell.Game = &g
			}
			grid.Cells = append(grid.Cells, cell)
		}
	}
	return grid, nil
}

// Games matches q case-insensitively against names; results are sorted by name.
func (s *Store) Games(q string) []types.GameWithPlacement {
	s.mu.Lock()
	defer s.mu.Unlock()

	where := make(map[int]slotKey, len(s.bySlot))
	for k, gameID := range s.bySlot {
		where[gameID] = k
	}

	needle := strings.ToLower(q)
	out := make([]types.GameWithPlacement, 0, len(s.games))
	for _, g := range s.games {
		if needle != "" && !strings.Contains(strings.ToLower(g.Name), needle) {
			continue
		}
		gp := types.GameWithPlacement{Game: g}
		if k, ok := where[g.ID]; ok {
			fixtureID, slot := k.fixtureID, k.slot
			gp.FixtureID = &fixtureID
			gp.Slot = &slot
		}
		out = append(out, gp)
	}
	slices.SortFunc(out, func(a, b types.GameWithPlacement) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
	return out
}

// Place moves the game into the slot, evicting whatever was there and
// removing the game from its previous slot.
func (s *Store) Place(p types.PlacementUpsert) (types.Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.fixture(p.FixtureID)
	if !ok {
		return types.Placement{}, ErrFixtureNotFound
	}
	if _, ok := s.games[p.GameID]; !ok {
		return types.Placement{}, ErrGameNotFound
	}
	row, col, err := parseSlot(p.Slot)
	if err != nil {
		return types.Placement{}, err
	}
	if row >= f.Rows || col >= f.Cols {
		return types.Placement{}, ErrSlotOutOfBounds
	}

	for k, gameID := range s.bySlot {
		if gameID == p.GameID {
			delete(s.bySlot, k)
		}
	}
	s.bySlot[slotKey{f.ID, p.Slot}] = p.GameID
	s.nextPlace++
	return types.Placement{ID: s.nextPlace, FixtureID: f.ID, Slot: p.Slot, GameID: p.GameID}, nil
}

// Clear empties the slot and reports how many placements were removed.
func (s *Store) Clear(fixtureID int, slot string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fixture(fixtureID); !ok {
		return 0, ErrFixtureNotFound
	}
	k := slotKey{fixtureID, slot}
	if _, ok := s.bySlot[k]; !ok {
		return 0, nil
	}
	delete(s.bySlot, k)
	return 1, nil
}
