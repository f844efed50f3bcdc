package view

import (
	"fmt"
	"strconv"

	"github.com/DoyleJ11/bgg-shelf-mapper/internal/engine"
	"github.com/DoyleJ11/bgg-shelf-mapper/pkg/types"
)

const EmptyMarker = "— empty —"

type CellModel struct {
	Slot     string
	Label    string // game name or EmptyMarker
	Empty    bool
	Selected bool
}

type GridModel struct {
	Title string
	Cols  int
	Cells []CellModel
}

// NewGridModel produces one cell per grid cell, in the order the server sent them.
func NewGridModel(grid *types.FixtureGrid, selectedSlot string) GridModel {
	if grid == nil {
		return GridModel{}
	}
	f := grid.Fixture
	m := GridModel{
		Title: fmt.Sprintf("%s — %d rows × %d cols", f.Name, f.Rows, f.Cols),
		Cols:  max(f.Cols, 1),
		Cells: make([]CellModel, 0, len(grid.Cells)),
	}
	for _, c := range grid.Cells {
		cell := CellModel{Slot: c.Slot, Label: EmptyMarker, Empty: true, Selected: c.Slot == selectedSlot}
		if c.Game != nil {
			cell.Label = c.Game.Name
			cell.Empty = false
		}
		m.Cells = append(m.Cells, cell)
	}
	return m
}

type ResultModel struct {
	GameID    int
	Title     string // "Name (2016)"
	Meta      string // "BGG #123 • placed: r0c1"
	Placed    bool
	AssignTo  string
	CanAssign bool
}

type SearchModel struct {
	Query     string
	Loading   bool
	Error     string
	Hint      string
	Selected  string
	CanAssign bool
	Results   []ResultModel
}

func NewSearchModel(s engine.SearchState, selectedSlot string) SearchModel {
	m := SearchModel{
		Query:     s.Query,
		Loading:   s.Loading,
		Error:     s.Error,
		Hint:      "Select a cube to assign a game",
		Selected:  selectedSlot,
		CanAssign: selectedSlot != "",
		Results:   make([]ResultModel, 0, len(s.Results)),
	}
	if selectedSlot != "" {
		m.Hint = "Selected cube: " + selectedSlot
	}
	assignTo := selectedSlot
	if assignTo == "" {
		assignTo = "…"
	}
	for _, g := range s.Results {
		r := ResultModel{
			GameID:    g.ID,
			Title:     g.Name,
			Placed:    g.Placed(),
			AssignTo:  assignTo,
			CanAssign: m.CanAssign,
		}
		if g.YearPublished != nil {
			r.Title += " (" + strconv.Itoa(*g.YearPublished) + ")"
		}
		r.Meta = "BGG #" + strconv.Itoa(g.BGGID)
		if r.Placed {
			r.Meta += " • placed: " + *g.Slot
		} else {
			r.Meta += " • unplaced"
		}
		m.Results = append(m.Results, r)
	}
	return m
}

type FixtureOption struct {
	ID       int
	Name     string
	Selected bool
}

type ShellModel struct {
	Error       string
	Fixtures    []FixtureOption
	CanReload   bool
	Ready       bool
	LoadingText string
	Grid        GridModel
	Search      SearchModel
}

// NewShellModel shows the grid and the panel only once the active fixture's
// grid is present.
func NewShellModel(st engine.State, apiBaseURL string) ShellModel {
	m := ShellModel{
		Error:     st.Error,
		CanReload: st.ActiveFixtureID != engine.NoFixture,
		Ready:     st.Ready() && st.Search.Mounted,
		LoadingText: fmt.Sprintf(
			"Loading fixture… (If this hangs, make sure the API is running at %s.)", apiBaseURL),
	}
	for _, f := range st.Fixtures {
		m.Fixtures = append(m.Fixtures, FixtureOption{ID: f.ID, Name: f.Name, Selected: f.ID == st.ActiveFixtureID})
	}
	if m.Ready {
		m.Grid = NewGridModel(st.Grid, st.SelectedSlot)
		m.Search = NewSearchModel(st.Search, st.SelectedSlot)
	}
	return m
}
