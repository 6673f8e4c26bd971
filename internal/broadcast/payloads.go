package broadcast

import (
	"github.com/cory-johannsen/dmengine/internal/game/combat"
	"github.com/cory-johannsen/dmengine/internal/game/session"
)

// InitiativePayload is sent on ChannelInitiative. Entries is nil when
// combat ends.
type InitiativePayload struct {
	Entries          []*combat.Entry `json:"entries"`
	CurrentTurnIndex int             `json:"currentTurnIndex"`
	Round            int             `json:"round"`
}

// TokenMovePayload is sent on ChannelTokenMove, one per token. Removed
// tells peers to drop the token.
type TokenMovePayload struct {
	MapID   string `json:"mapId"`
	TokenID string `json:"tokenId"`
	GridX   int    `json:"gridX"`
	GridY   int    `json:"gridY"`
	Removed bool   `json:"removed,omitempty"`
}

// ConditionPayload is sent on ChannelCondition.
type ConditionPayload struct {
	TargetID  string `json:"targetId"`
	Condition string `json:"condition"`
	Value     *int   `json:"value,omitempty"`
	Active    bool   `json:"active"`
}

// TimePayload is sent on ChannelTime.
type TimePayload struct {
	TotalSeconds int64 `json:"totalSeconds"`
}

// MapPayload is sent on ChannelMap.
type MapPayload struct {
	MapID   string `json:"mapId"`
	MapName string `json:"mapName"`
}

// ShopPayload is sent on ChannelShop.
type ShopPayload struct {
	Open  bool                `json:"open"`
	Name  string              `json:"name"`
	Items []*session.ShopItem `json:"items"`
}

// FogPayload is sent on ChannelFog. Reveal is false when cells are hidden.
type FogPayload struct {
	MapID  string         `json:"mapId"`
	Cells  []session.Cell `json:"cells"`
	Reveal bool           `json:"reveal"`
}

// WhisperPayload is sent on ChannelWhisper.
type WhisperPayload struct {
	TargetPeerID string `json:"targetPeerId"`
	Message      string `json:"message"`
}

// TimerStartPayload is sent on ChannelTimerStart. TargetPeerID is empty
// for a table-wide timer.
type TimerStartPayload struct {
	ID           string `json:"id"`
	Seconds      int    `json:"seconds"`
	Label        string `json:"label"`
	TargetPeerID string `json:"targetPeerId,omitempty"`
}

// TimerStopPayload is sent on ChannelTimerStop.
type TimerStopPayload struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ChatPayload is sent on ChannelChat.
type ChatPayload struct {
	Sender  string `json:"senderName"`
	Content string `json:"content"`
	System  bool   `json:"isSystem"`
}
