package types

import (
	"strings"
	"testing"

	"github.com/DoyleJ11/bgg-shelf-mapper/internal/engine"
	"github.com/stretchr/testify/assert"
)

func TestClientMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     ClientMessage
		wantErr bool
	}{
		{"select slot", ClientMessage{Type: "SelectSlot", Slot: "r0c0"}, false},
		{"select slot without slot", ClientMessage{Type: "SelectSlot"}, true},
		{"long opaque slot", ClientMessage{Type: "SelectSlot", Slot: "warehouse-7/aisle-12/bay-04/shelf-3/row-10/col-22"}, false},
		{"select fixture", ClientMessage{Type: "SelectFixture", FixtureID: 2}, false},
		{"select fixture without id", ClientMessage{Type: "SelectFixture"}, true},
		{"assign", ClientMessage{Type: "Assign", GameID: 5}, false},
		{"assign without game", ClientMessage{Type: "Assign"}, true},
		{"empty search", ClientMessage{Type: "Search"}, false},
		{"clear", ClientMessage{Type: "ClearSlot"}, false},
		{"reload", ClientMessage{Type: "ReloadGrid"}, false},
		{"unknown type", ClientMessage{Type: "LockPick"}, true},
		{"missing type", ClientMessage{}, true},
		{"negative game", ClientMessage{Type: "Assign", GameID: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClientMessage_Command(t *testing.T) {
	assert.Equal(t,
		engine.Command{Type: engine.CmdSearch, Query: " cat "},
		ClientMessage{Type: "Search", Query: " cat ", Slot: "ignored"}.Command())
	assert.Equal(t,
		engine.Command{Type: engine.CmdAssign, GameID: 3},
		ClientMessage{Type: "Assign", GameID: 3}.Command())
	assert.Equal(t,
		engine.Command{Type: engine.CmdSelectFixture, FixtureID: 2},
		ClientMessage{Type: "SelectFixture", FixtureID: 2}.Command())
}

func TestClientMessage_SlotLengthUncapped(t *testing.T) {
	// slots are backend keys; the grid check in the engine is what rejects unknown ones
	msg := ClientMessage{Type: "SelectSlot", Slot: strings.Repeat("s", 512)}
	assert.NoError(t, msg.Validate())
	assert.Equal(t, msg.Slot, msg.Command().Slot)
}
