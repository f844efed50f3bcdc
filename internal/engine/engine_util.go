package engine

import "github.com/DoyleJ11/bgg-shelf-mapper/pkg/types"

func NewState() State {
	return State{ActiveFixtureID: NoFixture}
}

func ContainsEffect(effects []Effect, effectType EffectType) bool {
	for _, effect := range effects {
		if effect.Type == effectType {
			return true
		}
	}
	return false
}

// ActiveFixture looks the active id up in the fixture list.
func (s State) ActiveFixture() (types.Fixture, bool) {
	for _, f := range s.Fixtures {
		if f.ID == s.ActiveFixtureID {
			return f, true
		}
	}
	return types.Fixture{}, false
}

// Ready mirrors the page's condition for showing the grid and the search
// panel instead of the loading placeholder.
func (s State) Ready() bool {
	_, ok := s.ActiveFixture()
	return s.Grid != nil && ok
}
