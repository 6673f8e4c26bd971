package executor

import "github.com/cory-johannsen/dmengine/internal/directive"

// apply routes a decoded built-in directive to its handler.
func apply(c *Context, d directive.Directive) error {
	switch d := d.(type) {
	// tokens
	case *directive.PlaceToken:
		return placeToken(c, d)
	case *directive.MoveToken:
		return moveToken(c, d)
	case *directive.RemoveToken:
		return removeToken(c, d)
	case *directive.UpdateToken:
		return updateToken(c, d)

	// initiative and legendary
	case *directive.StartInitiative:
		return startInitiative(c, d)
	case *directive.NextTurn:
		return nextTurn(c)
	case *directive.AddToInitiative:
		return addToInitiative(c, d)
	case *directive.RemoveFromInitiative:
		return removeFromInitiative(c, d)
	case *directive.EndInitiative:
		return endInitiative(c)
	case *directive.UseLegendaryAction:
		return useLegendaryAction(c, d)
	case *directive.UseLegendaryResistance:
		return useLegendaryResistance(c, d)
	case *directive.RechargeRoll:
		return rechargeRoll(c, d)

	// conditions
	case *directive.AddCondition:
		return addCondition(c, d)
	case *directive.RemoveCondition:
		return removeCondition(c, d)
	case *directive.AreaEffect:
		return areaEffect(c, d)

	// environment
	case *directive.RevealFog:
		return revealFog(c, d)
	case *directive.HideFog:
		return hideFog(c, d)
	case *directive.SetAmbientLight:
		return setAmbientLight(c, d)
	case *directive.SetWeather:
		return setWeather(c, d)
	case *directive.SetMoonPhase:
		return setMoonPhase(c, d)
	case *directive.SetUnderwater:
		return setUnderwater(c, d)
	case *directive.SetTravelPace:
		return setTravelPace(c, d)
	case *directive.LightSource:
		return lightSource(c, d)
	case *directive.ExtinguishLight:
		return extinguishLight(c, d)
	case *directive.SwitchMap:
		return switchMap(c, d)

	// time and effects
	case *directive.AdvanceTime:
		return advanceTime(c, d)
	case *directive.StartTimer:
		return startTimer(c, d)
	case *directive.StopTimer:
		return stopTimer(c, d)
	case *directive.AddEnvironmentalEffect:
		return addEnvironmentalEffect(c, d)
	case *directive.RemoveEnvironmentalEffect:
		return removeEnvironmentalEffect(c, d)
	case *directive.AddDisease:
		return addAffliction(c, &c.State.Diseases, "disease", d.Affliction)
	case *directive.RemoveDisease:
		return removeAffliction(c, &c.State.Diseases, "disease", d.Affliction)
	case *directive.AddCurse:
		return addAffliction(c, &c.State.Curses, "curse", d.Affliction)
	case *directive.RemoveCurse:
		return removeAffliction(c, &c.State.Curses, "curse", d.Affliction)
	case *directive.PlaceTrap:
		return placeTrap(c, d)
	case *directive.RevealTrap:
		return revealTrap(c, d)
	case *directive.DisarmTrap:
		return disarmTrap(c, d)

	// social and narrative
	case *directive.OpenShop:
		return openShop(c, d)
	case *directive.CloseShop:
		return closeShop(c)
	case *directive.AddShopItem:
		return addShopItem(c, d)
	case *directive.RemoveShopItem:
		return removeShopItem(c, d)
	case *directive.AddSidebarEntry:
		return addSidebarEntry(c, d)
	case *directive.RemoveSidebarEntry:
		return removeSidebarEntry(c, d)
	case *directive.SetAttitude:
		return setAttitude(c, d)
	case *directive.AddJournalEntry:
		return addJournalEntry(c, d)
	case *directive.Whisper:
		return whisper(c, d)
	case *directive.Narrate:
		return narrate(c, d)
	case *directive.RollDice:
		return rollDice(c, d)

	// strongholds
	case *directive.BastionIssueOrder:
		return bastionIssueOrder(c, d)
	case *directive.BastionAddDefender:
		return bastionAddDefender(c, d)
	case *directive.BastionRemoveDefender:
		return bastionRemoveDefender(c, d)
	case *directive.BastionAdjustTreasury:
		return bastionAdjustTreasury(c, d)
	case *directive.BastionStartConstruction:
		return bastionStartConstruction(c, d)
	case *directive.BastionTakeTurn:
		return bastionTakeTurn(c, d)
	}
	return &classified{class: ErrUnknownKind, msg: "Unknown directive kind: " + d.Kind()}
}
