package engine

import (
	"errors"
	"slices"
	"strings"

	"github.com/DoyleJ11/bgg-shelf-mapper/pkg/types"
)

var ErrUnknownFixture = errors.New("unknown fixture")
var ErrUnknownSlot = errors.New("slot is not part of the current grid")
var ErrPanelNotReady = errors.New("search panel is not mounted yet")
var ErrStaleResult = errors.New("stale result")
var ErrUnsupportedCommand = errors.New("unsupported command")

// ErrNoSlotSelected is not returned from Apply: assign/clear without a
// selection is a valid transition that puts this message in the panel.
var ErrNoSlotSelected = errors.New(MsgPickCube)

const MsgPickCube = "Pick a cube first (click one in the grid)."

// NoFixture is the zero fixture id. The backend numbers fixtures from 1.
const NoFixture = 0

type State struct {
	Fixtures        []types.Fixture
	ActiveFixtureID int
	Grid            *types.FixtureGrid
	SelectedSlot    string
	Error           string
	Search          SearchState

	// GridSeq is the generation of the latest grid fetch. Results for older
	// generations are dropped.
	GridSeq uint64
}

type SearchState struct {
	Mounted bool
	Query   string
	Results []types.GameWithPlacement
	Loading bool
	Error   string
	Seq     uint64
}

type CommandType string

const (
	// user intents
	CmdInit          CommandType = "Init"
	CmdSelectFixture CommandType = "SelectFixture"
	CmdSelectSlot    CommandType = "SelectSlot"
	CmdReloadGrid    CommandType = "ReloadGrid"
	CmdSetQuery      CommandType = "SetQuery"
	CmdSearch        CommandType = "Search"
	CmdAssign        CommandType = "Assign"
	CmdClearSlot     CommandType = "ClearSlot"

	// effect results
	CmdFixturesLoaded CommandType = "FixturesLoaded"
	CmdGridLoaded     CommandType = "GridLoaded"
	CmdSearchDone     CommandType = "SearchDone"
	CmdPlacementDone  CommandType = "PlacementDone"
)

type Command struct {
	Type      CommandType
	FixtureID int
	Slot      string
	GameID    int
	Query     string

	// Set on effect results only.
	Seq      uint64
	Notify   bool
	Fixtures []types.Fixture
	Grid     *types.FixtureGrid
	Games    []types.GameWithPlacement
	Err      error
}

type EffectType string

const (
	EffFetchFixtures   EffectType = "FetchFixtures"
	EffFetchGrid       EffectType = "FetchGrid"
	EffSearchGames     EffectType = "SearchGames"
	EffUpsertPlacement EffectType = "UpsertPlacement"
	EffClearPlacement  EffectType = "ClearPlacement"
)

/*
	Init            -> FetchFixtures -> FixturesLoaded -> FetchGrid (first fixture, once)
	SelectFixture   -> FetchGrid -> GridLoaded -> SearchGames (first grid only: the panel mounts)
	Assign          -> UpsertPlacement -> PlacementDone -> SearchGames{Notify} -> SearchDone -> FetchGrid
	ClearSlot       -> ClearPlacement  -> PlacementDone -> SearchGames{Notify} -> SearchDone -> FetchGrid
*/

// Effect is work the caller must run; its outcome comes back as a result Command.
type Effect struct {
	Type      EffectType
	Seq       uint64
	FixtureID int
	Slot      string
	GameID    int
	Query     string
	Notify    bool
}

// Apply is pure. A non-nil error means the command was rejected and the
// returned state is s unchanged. State slices are replaced, never mutated,
// so old snapshots stay valid.
func Apply(s State, cmd Command) ([]Effect, State, error) {
	newState := s

	switch cmd.Type {
	case CmdInit:
		newState.Error = ""
		return []Effect{{Type: EffFetchFixtures}}, newState, nil

	case CmdFixturesLoaded:
		if cmd.Err != nil {
			newState.Error = cmd.Err.Error()
			return nil, newState, nil
		}
		newState.Fixtures = slices.Clone(cmd.Fixtures)
		if newState.ActiveFixtureID == NoFixture && len(newState.Fixtures) > 0 {
			newState.ActiveFixtureID = newState.Fixtures[0].ID
			return []Effect{fetchGrid(&newState)}, newState, nil
		}
		return nil, newState, nil

	case CmdSelectFixture:
		if !hasFixture(s, cmd.FixtureID) {
			return nil, s, ErrUnknownFixture
		}
		// a selection never survives a fixture switch
		newState.SelectedSlot = ""
		if cmd.FixtureID == s.ActiveFixtureID {
			return nil, newState, nil
		}
		newState.ActiveFixtureID = cmd.FixtureID
		return []Effect{fetchGrid(&newState)}, newState, nil

	case CmdReloadGrid:
		if s.ActiveFixtureID == NoFixture {
			return nil, s, nil
		}
		return []Effect{fetchGrid(&newState)}, newState, nil

	case CmdGridLoaded:
		if cmd.Seq != s.GridSeq {
			return nil, s, ErrStaleResult
		}
		if cmd.Err != nil {
			newState.Error = cmd.Err.Error()
			return nil, newState, nil
		}
		newState.Grid = cmd.Grid
		if !newState.Search.Mounted {
			newState.Search.Mounted = true
			return []Effect{search(&newState, false)}, newState, nil
		}
		return nil, newState, nil

	case CmdSelectSlot:
		if !s.Grid.HasSlot(cmd.Slot) {
			return nil, s, ErrUnknownSlot
		}
		newState.SelectedSlot = cmd.Slot
		return nil, newState, nil

	case CmdSetQuery:
		newState.Search.Query = cmd.Query
		return nil, newState, nil

	case CmdSearch:
		if !s.Search.Mounted {
			return nil, s, ErrPanelNotReady
		}
		newState.Search.Query = cmd.Query
		return []Effect{search(&newState, false)}, newState, nil

	case CmdSearchDone:
		var effects []Effect
		// The shell hears about a mutation even if a newer search overtook this one.
		if cmd.Notify && newState.ActiveFixtureID != NoFixture {
			effects = append(effects, fetchGrid(&newState))
		}
		if cmd.Seq != s.Search.Seq {
			if len(effects) == 0 {
				return nil, s, ErrStaleResult
			}
			return effects, newState, nil
		}
		newState.Search.Loading = false
		if cmd.Err != nil {
			newState.Search.Error = cmd.Err.Error()
		} else {
			newState.Search.Results = slices.Clone(cmd.Games)
		}
		return effects, newState, nil

	case CmdAssign, CmdClearSlot:
		if !s.Search.Mounted {
			return nil, s, ErrPanelNotReady
		}
		if s.SelectedSlot == "" {
			newState.Search.Error = ErrNoSlotSelected.Error()
			return nil, newState, nil
		}
		newState.Search.Error = ""
		eff := Effect{Type: EffClearPlacement, FixtureID: s.ActiveFixtureID, Slot: s.SelectedSlot}
		if cmd.Type == CmdAssign {
			eff.Type = EffUpsertPlacement
			eff.GameID = cmd.GameID
		}
		return []Effect{eff}, newState, nil

	case CmdPlacementDone:
		if cmd.Err != nil {
			newState.Search.Error = cmd.Err.Error()
			return nil, newState, nil
		}
		return []Effect{search(&newState, true)}, newState, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func fetchGrid(s *State) Effect {
	s.GridSeq++
	s.Error = ""
	return Effect{Type: EffFetchGrid, Seq: s.GridSeq, FixtureID: s.ActiveFixtureID}
}

func search(s *State, notify bool) Effect {
	s.Search.Seq++
	s.Search.Loading = true
	s.Search.Error = ""
	return Effect{
		Type:   EffSearchGames,
		Seq:    s.Search.Seq,
		Query:  strings.TrimSpace(s.Search.Query),
		Notify: notify,
	}
}

func hasFixture(s State, id int) bool {
	return slices.ContainsFunc(s.Fixtures, func(f types.Fixture) bool { return f.ID == id })
}
