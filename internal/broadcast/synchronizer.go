package broadcast

import (
	"github.com/cory-johannsen/dmengine/internal/game/combat"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

// Synchronizer pushes the current full contents of a state slice into an
// Outbox. Pushes never diff; peers replace their copy. Every payload is a
// snapshot sharing no memory with the session state.
type Synchronizer struct {
	out *Outbox
}

// NewSynchronizer returns a Synchronizer writing to out.
//
// Precondition: out must be non-nil.
func NewSynchronizer(out *Outbox) *Synchronizer {
	return &Synchronizer{out: out}
}

// PushInitiative pushes the whole initiative order and current turn.
// It does nothing outside combat.
func (s *Synchronizer) PushInitiative(st *session.State) {
	seq := st.Initiative
	if seq == nil {
		return
	}
	entries := make([]*combat.Entry, len(seq.Entries))
	for i, e := range seq.Entries {
		entries[i] = e.Clone()
	}
	s.out.Push(ChannelInitiative, InitiativePayload{
		Entries:          entries,
		CurrentTurnIndex: seq.CurrentIndex,
		Round:            seq.Round,
	})
}

// PushInitiativeEnded tells peers combat is over.
func (s *Synchronizer) PushInitiativeEnded() {
	s.out.Push(ChannelInitiative, InitiativePayload{})
}

// PushTokenRemoved tells peers a token left mapID.
func (s *Synchronizer) PushTokenRemoved(mapID, tokenID string) {
	s.out.Push(ChannelTokenMove, TokenMovePayload{MapID: mapID, TokenID: tokenID, Removed: true})
}

// PushTokens pushes the position of every token on mapID. It does nothing
// if the map does not exist.
func (s *Synchronizer) PushTokens(st *session.State, mapID string) {
	m, ok := st.MapByID(mapID)
	if !ok {
		return
	}
	for _, t := range m.Tokens {
		s.out.Push(ChannelTokenMove, TokenMovePayload{MapID: m.ID, TokenID: t.ID, GridX: t.X, GridY: t.Y})
	}
}

// PushConditions pushes one active notice per recorded condition.
func (s *Synchronizer) PushConditions(st *session.State) {
	for _, c := range st.Conditions {
		var value *int
		if c.Value != nil {
			v := *c.Value
			value = &v
		}
		s.out.Push(ChannelCondition, ConditionPayload{
			TargetID:  c.TargetID,
			Condition: c.Tag,
			Value:     value,
			Active:    true,
		})
	}
}

// PushConditionCleared tells peers a condition was removed from targetID.
func (s *Synchronizer) PushConditionCleared(targetID, tag string) {
	s.out.Push(ChannelCondition, ConditionPayload{TargetID: targetID, Condition: tag, Active: false})
}

// PushTime pushes the clock.
func (s *Synchronizer) PushTime(st *session.State) {
	s.out.Push(ChannelTime, TimePayload{TotalSeconds: st.Time.Seconds})
}

// PushShop pushes the shop.
func (s *Synchronizer) PushShop(st *session.State) {
	items := make([]*session.ShopItem, len(st.Shop.Items))
	for i, it := range st.Shop.Items {
		c := *it
		items[i] = &c
	}
	s.out.Push(ChannelShop, ShopPayload{Open: st.Shop.Open, Name: st.Shop.Name, Items: items})
}

// Chat posts a system chat line from the DM.
func (s *Synchronizer) Chat(content string) {
	s.out.Push(ChannelChat, ChatPayload{Sender: "DM", Content: content, System: true})
}
