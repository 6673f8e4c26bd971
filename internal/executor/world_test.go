package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dmengine/internal/broadcast"
	"github.com/cory-johannsen/dmengine/internal/directive"
	"github.com/cory-johannsen/dmengine/internal/game/bastion"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

func keep() *bastion.Stronghold {
	return &bastion.Stronghold{
		ID: "s1", Name: "Stonekeep", OwnerID: "char-7", Linked: true,
		Treasury:          100,
		TurnFrequencyDays: 7,
		SpecialFacilities: []*bastion.Facility{{ID: "f1", Type: "Smithy", Space: "roomy"}},
		BasicFacilities:   []*bastion.Facility{{ID: "f2", Type: "Bedroom", Space: "cramped"}},
	}
}

func TestAdvanceTime_DayAdvancesLinkedStrongholds(t *testing.T) {
	st := session.New()
	linked := keep()
	unlinked := keep()
	unlinked.Name, unlinked.Linked = "Ruin", false
	st.Strongholds = []*bastion.Stronghold{linked, unlinked}
	h := newHarness(st)

	h.mustRun(t, directive.Raw{"kind": "advance_time", "days": 1})

	assert.Equal(t, 1, linked.CurrentDay)
	assert.Empty(t, linked.Turns)
	assert.Equal(t, 0, unlinked.CurrentDay)
	assert.Equal(t, int64(86400), st.Time.Seconds)
	assert.Equal(t, 2, st.Time.Day())
	assert.Contains(t, h.queue.channels(), broadcast.ChannelTime)
}

func TestAdvanceTime_AnnouncesDueTurn(t *testing.T) {
	st := session.New()
	s := keep()
	s.CurrentDay = 6
	st.Strongholds = []*bastion.Stronghold{s}
	h := newHarness(st)

	h.mustRun(t, directive.Raw{"kind": "advance_time", "days": 1})

	assert.Contains(t, h.chat.lines, "Stonekeep: a bastion turn is due (day 7)")
	assert.Empty(t, s.Turns)
}

func TestAdvanceTime_RejectsNonPositive(t *testing.T) {
	h := newHarness(session.New())
	res := h.run(
		directive.Raw{"kind": "advance_time"},
		directive.Raw{"kind": "advance_time", "hours": 1, "minutes": -90},
	)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "Time advance must be positive", res.Failed[0].Reason)
	assert.Zero(t, h.state.Time.Seconds)
}

func TestAdvanceTime_ExpiresLights(t *testing.T) {
	st := stateWithMap(tok("Fighter", 0, 0, 20))
	h := newHarness(st)
	h.mustRun(t, directive.Raw{"kind": "light_source", "entityLabel": "Fighter", "sourceName": "torch"})
	require.Len(t, st.Lights, 1)

	h.mustRun(t, directive.Raw{"kind": "advance_time", "minutes": 30})
	assert.Len(t, st.Lights, 1)

	h.mustRun(t, directive.Raw{"kind": "advance_time", "minutes": 30})
	assert.Empty(t, st.Lights)
	assert.Contains(t, h.chat.lines, "Fighter's Torch burns out")
}

func TestLights(t *testing.T) {
	st := stateWithMap(tok("Fighter", 0, 0, 20), tok("Fiona", 1, 1, 20))
	h := newHarness(st)
	h.mustRun(t,
		directive.Raw{"kind": "light_source", "entityLabel": "Fighter", "sourceName": "Torch"},
		directive.Raw{"kind": "light_source", "entityLabel": "Fighter", "sourceName": "hooded lantern"},
		directive.Raw{"kind": "light_source", "entityLabel": "Fiona", "sourceName": "candle"},
	)
	require.Len(t, st.Lights, 3)
	assert.Equal(t, "hooded_lantern", st.Lights[1].SourceKey)

	res := h.run(
		directive.Raw{"kind": "light_source", "entityLabel": "Fighter", "sourceName": "sunrod"},
		directive.Raw{"kind": "extinguish_light", "entityLabel": "Fiona", "sourceName": "torch"},
	)
	require.Len(t, res.Failed, 2)
	assert.Contains(t, res.Failed[0].Reason, "Unknown light source: sunrod")
	assert.Equal(t, "No torch carried by Fiona", res.Failed[1].Reason)

	h.mustRun(t, directive.Raw{"kind": "extinguish_light", "entityLabel": "Fighter", "sourceName": "lantern"})
	require.Len(t, st.Lights, 2)
	assert.Equal(t, "torch", st.Lights[0].SourceKey)
	assert.Equal(t, "candle", st.Lights[1].SourceKey)
}

func TestEnvironmentFlags(t *testing.T) {
	h := newHarness(session.New())
	h.mustRun(t,
		directive.Raw{"kind": "set_ambient_light", "level": "Dim"},
		directive.Raw{"kind": "set_weather", "weather": "heavy rain"},
		directive.Raw{"kind": "set_moon_phase", "phase": "full"},
		directive.Raw{"kind": "set_underwater", "underwater": true},
		directive.Raw{"kind": "set_travel_pace", "pace": "SLOW"},
	)
	env := h.state.Environment
	assert.Equal(t, session.Environment{
		AmbientLight: "dim", Weather: "heavy rain", MoonPhase: "full", Underwater: true, TravelPace: "slow",
	}, env)

	res := h.run(
		directive.Raw{"kind": "set_ambient_light", "level": "twilight"},
		directive.Raw{"kind": "set_travel_pace", "pace": "gallop"},
	)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "Invalid light level: twilight (expected bright, dim, or darkness)", res.Failed[0].Reason)
	assert.Equal(t, "dim", h.state.Environment.AmbientLight)
}

func TestFogAndSwitchMap(t *testing.T) {
	st := stateWithMap()
	st.Maps = append(st.Maps, &session.Map{ID: "m2", Name: "Throne Room", Width: 10, Height: 10})
	h := newHarness(st)

	h.mustRun(t, directive.Raw{"kind": "reveal_fog", "cells": []any{
		map[string]any{"x": 1, "y": 1}, map[string]any{"x": 2, "y": 1},
	}})
	assert.Len(t, st.Maps[0].Revealed, 2)

	h.mustRun(t, directive.Raw{"kind": "switch_map", "mapName": "throne"})
	assert.Equal(t, "m2", st.ActiveMapID)
	assert.Contains(t, h.queue.channels(), broadcast.ChannelMap)

	res := h.run(
		directive.Raw{"kind": "switch_map", "mapName": "Dungeon"},
		directive.Raw{"kind": "hide_fog"},
	)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "Map not found: Dungeon", res.Failed[0].Reason)
	assert.Equal(t, "Missing cells", res.Failed[1].Reason)
}

func TestTimers(t *testing.T) {
	st := session.New()
	st.Players = []*session.Player{{PeerID: "peer-1", DisplayName: "Sam", CharacterName: "Mirelle"}}
	h := newHarness(st)

	h.mustRun(t,
		directive.Raw{"kind": "start_timer", "seconds": 30, "label": "Bomb", "targetName": "Mirelle"},
		directive.Raw{"kind": "start_timer", "seconds": 60, "label": "Ritual"},
	)
	require.Len(t, st.Timers, 2)
	assert.Equal(t, "peer-1", st.Timers[0].TargetID)

	res := h.run(
		directive.Raw{"kind": "start_timer", "seconds": 0},
		directive.Raw{"kind": "start_timer", "seconds": 5, "targetName": "Nobody"},
		directive.Raw{"kind": "stop_timer", "label": "Clock"},
	)
	require.Len(t, res.Failed, 3)
	assert.Equal(t, "Player not found: Nobody", res.Failed[1].Reason)
	assert.Equal(t, "Timer not found: Clock", res.Failed[2].Reason)

	h.mustRun(t, directive.Raw{"kind": "stop_timer", "label": "bomb"})
	require.Len(t, st.Timers, 1)
	h.mustRun(t, directive.Raw{"kind": "stop_timer"})
	assert.Empty(t, st.Timers)
}

func TestEffectsAndAfflictions(t *testing.T) {
	st := stateWithMap(tok("Fighter", 0, 0, 20))
	h := newHarness(st)

	h.mustRun(t,
		directive.Raw{"kind": "add_environmental_effect", "name": "Heavy Fog", "description": "Heavily obscured"},
		directive.Raw{"kind": "add_disease", "entityLabel": "Fighter", "name": "Sewer Plague"},
		directive.Raw{"kind": "add_curse", "entityLabel": "Fighter", "name": "Lycanthropy"},
	)
	require.Len(t, st.Effects, 1)
	require.Len(t, st.Diseases, 1)
	require.Len(t, st.Curses, 1)
	assert.Equal(t, "Fighter", st.Diseases[0].TargetName)

	res := h.run(
		directive.Raw{"kind": "remove_curse", "entityLabel": "Fighter", "name": "Mummy Rot"},
		directive.Raw{"kind": "add_disease", "entityLabel": "Ghost", "name": "Cackle Fever"},
		directive.Raw{"kind": "remove_environmental_effect", "name": "Blizzard"},
	)
	require.Len(t, res.Failed, 3)
	assert.Equal(t, "Curse Mummy Rot not found on Fighter", res.Failed[0].Reason)
	assert.Equal(t, "Entity not found: Ghost", res.Failed[1].Reason)
	assert.Equal(t, "Effect not found: Blizzard", res.Failed[2].Reason)

	h.mustRun(t,
		directive.Raw{"kind": "remove_disease", "name": "plague"},
		directive.Raw{"kind": "remove_curse", "entityLabel": "fighter", "name": "Lycanthropy"},
		directive.Raw{"kind": "remove_environmental_effect", "name": "fog"},
	)
	assert.Empty(t, st.Diseases)
	assert.Empty(t, st.Curses)
	assert.Empty(t, st.Effects)
}

func TestTraps(t *testing.T) {
	st := stateWithMap()
	h := newHarness(st)
	h.mustRun(t, directive.Raw{"kind": "place_trap", "name": "Pit Trap", "gridX": 4, "gridY": 2, "dc": 15, "damage": "2d10"})
	require.Len(t, st.Traps, 1)
	assert.True(t, st.Traps[0].Armed())
	assert.Equal(t, "m1", st.Traps[0].MapID)

	h.mustRun(t, directive.Raw{"kind": "reveal_trap", "name": "pit"})
	assert.True(t, st.Traps[0].Revealed)
	h.mustRun(t, directive.Raw{"kind": "disarm_trap", "name": "Pit Trap"})
	assert.True(t, st.Traps[0].Disarmed)

	res := h.run(
		directive.Raw{"kind": "disarm_trap", "name": "Pit Trap"},
		directive.Raw{"kind": "place_trap", "name": "Darts", "gridX": 1},
		directive.Raw{"kind": "place_trap", "name": "Darts", "gridX": 1, "gridY": 1, "damage": "lots"},
	)
	require.Len(t, res.Failed, 3)
	assert.Equal(t, "Trap already disarmed: Pit Trap", res.Failed[0].Reason)
	assert.Equal(t, "Missing gridX/gridY", res.Failed[1].Reason)
	assert.Contains(t, res.Failed[2].Reason, "Invalid damage formula")
}

func TestShop(t *testing.T) {
	h := newHarness(session.New())
	res := h.run(directive.Raw{"kind": "close_shop"})
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "No shop is open", res.Failed[0].Reason)

	h.mustRun(t,
		directive.Raw{"kind": "open_shop", "name": "Ye Olde Armory", "items": []any{
			map[string]any{"name": "Longsword", "price": 15, "quantity": 2},
			map[string]any{"name": "Shield", "price": 10},
		}},
		directive.Raw{"kind": "add_shop_item", "name": "longsword", "price": 14, "quantity": 1},
		directive.Raw{"kind": "add_shop_item", "name": "Rope", "price": 1, "quantity": 5},
		directive.Raw{"kind": "remove_shop_item", "name": "shie"},
	)
	shop := h.state.Shop
	assert.True(t, shop.Open)
	require.Len(t, shop.Items, 2)
	assert.Equal(t, session.ShopItem{Name: "Longsword", Price: 14, Quantity: 3}, *shop.Items[0])
	assert.Equal(t, "Rope", shop.Items[1].Name)

	res = h.run(directive.Raw{"kind": "remove_shop_item", "name": "Bow"})
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "Shop item not found: Bow", res.Failed[0].Reason)

	h.mustRun(t, directive.Raw{"kind": "close_shop"})
	assert.False(t, h.state.Shop.Open)
	assert.Contains(t, h.queue.channels(), broadcast.ChannelShop)
}

func TestSidebarAndJournal(t *testing.T) {
	h := newHarness(session.New())
	h.mustRun(t,
		directive.Raw{"kind": "add_sidebar_entry", "category": "Allies", "name": "Sister Garaele", "attitude": "friendly"},
		directive.Raw{"kind": "add_sidebar_entry", "category": "location", "name": "Phandalin"},
		directive.Raw{"kind": "set_attitude", "name": "garaele", "attitude": "Hostile"},
		directive.Raw{"kind": "add_journal_entry", "title": "Arrival", "content": "We reached town."},
	)
	require.Len(t, h.state.Sidebar, 2)
	assert.Equal(t, CategoryAlly, h.state.Sidebar[0].Category)
	assert.Equal(t, "hostile", h.state.Sidebar[0].Attitude)
	assert.Equal(t, CategoryPlace, h.state.Sidebar[1].Category)
	require.Len(t, h.state.Journal, 1)
	assert.Equal(t, 1, h.state.Journal[0].Day)

	res := h.run(
		directive.Raw{"kind": "add_sidebar_entry", "category": "pet", "name": "Rex"},
		directive.Raw{"kind": "set_attitude", "name": "Phandalin", "attitude": "smitten"},
		directive.Raw{"kind": "remove_sidebar_entry", "name": "Neverwinter"},
	)
	require.Len(t, res.Failed, 3)
	assert.Equal(t, "Invalid category: pet (expected ally, enemy, or place)", res.Failed[0].Reason)
	assert.Equal(t, "Sidebar entry not found: Neverwinter", res.Failed[2].Reason)

	h.mustRun(t, directive.Raw{"kind": "remove_sidebar_entry", "name": "Phandalin"})
	assert.Len(t, h.state.Sidebar, 1)
}

func TestWhisperNarrateRoll(t *testing.T) {
	st := session.New()
	st.Players = []*session.Player{{PeerID: "peer-9", DisplayName: "Alex"}}
	h := newHarness(st, 4)

	h.mustRun(t,
		directive.Raw{"kind": "whisper", "targetName": "alex", "message": "You hear scratching."},
		directive.Raw{"kind": "narrate", "text": "The door creaks open."},
		directive.Raw{"kind": "roll_dice", "formula": "2d6+1", "reason": "Stealth"},
	)
	require.Equal(t, broadcast.ChannelWhisper, h.queue.msgs[0].Channel)
	assert.Equal(t, broadcast.WhisperPayload{TargetPeerID: "peer-9", Message: "You hear scratching."}, h.queue.msgs[0].Payload)
	require.Len(t, h.chat.lines, 2)
	assert.Equal(t, "The door creaks open.", h.chat.lines[0])
	assert.Contains(t, h.chat.lines[1], "Stealth: ")
	assert.Contains(t, h.chat.lines[1], "9")

	res := h.run(
		directive.Raw{"kind": "whisper", "targetName": "Jo", "message": "psst"},
		directive.Raw{"kind": "roll_dice", "formula": "banana"},
	)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "Player not found: Jo", res.Failed[0].Reason)
}

func TestBastionDirectives(t *testing.T) {
	st := session.New()
	s := keep()
	st.Strongholds = []*bastion.Stronghold{s}
	h := newHarness(st, 60)

	h.mustRun(t,
		directive.Raw{"kind": "bastion_issue_order", "stronghold": "stone", "facility": "smithy", "order": "craft", "details": "shields"},
		directive.Raw{"kind": "bastion_add_defender", "stronghold": "char-7", "name": "Brom"},
		directive.Raw{"kind": "bastion_adjust_treasury", "stronghold": "Stonekeep", "amount": -40, "reason": "wages"},
		directive.Raw{"kind": "bastion_start_construction", "stronghold": "Stonekeep", "project": "Library", "space": "roomy", "cost": 50, "days": 1},
	)
	require.NotNil(t, s.SpecialFacilities[0].Order)
	assert.Equal(t, "craft", s.SpecialFacilities[0].Order.Type)
	require.Len(t, s.Defenders, 1)
	assert.Equal(t, 10, s.Treasury)
	require.Len(t, s.Construction, 1)
	assert.Contains(t, h.chat.lines, "Stonekeep spends 40 gp (wages). Treasury: 60 gp")

	res := h.run(
		directive.Raw{"kind": "bastion_issue_order", "stronghold": "Stonekeep", "facility": "bedroom", "order": "rest"},
		directive.Raw{"kind": "bastion_adjust_treasury", "stronghold": "Stonekeep", "amount": -11},
		directive.Raw{"kind": "bastion_remove_defender", "stronghold": "Stonekeep", "name": "Ghost"},
		directive.Raw{"kind": "bastion_take_turn", "stronghold": "Castle Nowhere"},
		directive.Raw{"kind": "bastion_take_turn"},
	)
	require.Len(t, res.Failed, 5)
	assert.Equal(t, "Bedroom is a basic facility and cannot take orders", res.Failed[0].Reason)
	assert.Contains(t, res.Failed[1].Reason, "insufficient treasury")
	assert.Equal(t, "Defender not found: Ghost", res.Failed[2].Reason)
	assert.Equal(t, "Stronghold not found: Castle Nowhere", res.Failed[3].Reason)
	assert.Equal(t, "Missing stronghold", res.Failed[4].Reason)
	assert.Equal(t, 10, s.Treasury)

	h.mustRun(t, directive.Raw{"kind": "bastion_take_turn", "stronghold": "Stonekeep"})
	require.Len(t, s.Turns, 1)
	assert.Equal(t, "Extraordinary Opportunity", s.Turns[0].EventOutcome)
	assert.Nil(t, s.SpecialFacilities[0].Order)
	assert.Empty(t, s.Construction)
	assert.Len(t, s.SpecialFacilities, 2)
}
