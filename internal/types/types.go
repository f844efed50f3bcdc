package types

import (
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/engine"
	"github.com/go-playground/validator/v10"
)

// Browser -> server. Only the fields relevant to Type are read.
type ClientMessage struct {
	Type      string `json:"type" validate:"required,oneof=SelectFixture SelectSlot ReloadGrid SetQuery Search Assign ClearSlot"`
	FixtureID int    `json:"fixture_id,omitempty" validate:"required_if=Type SelectFixture,gte=0"`
	Slot      string `json:"slot,omitempty" validate:"required_if=Type SelectSlot"`
	GameID    int    `json:"game_id,omitempty" validate:"required_if=Type Assign,gte=0"`
	Query     string `json:"query,omitempty" validate:"max=200"`
}

type ServerMessage struct {
	Type    string `json:"type"` // "Render" | "Error"
	Version int    `json:"version,omitempty"`
	HTML    string `json:"html,omitempty"`
	Error   string `json:"error,omitempty"`
}

var validate = validator.New()

func (m ClientMessage) Validate() error {
	return validate.Struct(m)
}

// Command maps a validated message onto the engine's vocabulary.
func (m ClientMessage) Command() engine.Command {
	switch m.Type {
	case "SelectFixture":
		return engine.Command{Type: engine.CmdSelectFixture, FixtureID: m.FixtureID}
	case "SelectSlot":
		return engine.Command{Type: engine.CmdSelectSlot, Slot: m.Slot}
	case "ReloadGrid":
		return engine.Command{Type: engine.CmdReloadGrid}
	case "SetQuery":
		return engine.Command{Type: engine.CmdSetQuery, Query: m.Query}
	case "Search":
		return engine.Command{Type: engine.CmdSearch, Query: m.Query}
	case "Assign":
		return engine.Command{Type: engine.CmdAssign, GameID: m.GameID}
	case "ClearSlot":
		return engine.Command{Type: engine.CmdClearSlot}
	default:
		return engine.Command{Type: engine.CommandType(m.Type)}
	}
}
