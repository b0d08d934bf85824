package types

// EventType names a domain event emitted by a state-mutating action.
type EventType string

const (
	EventBlindStarted    EventType = "blind_started"
	EventBlindSkipped    EventType = "blind_skipped"
	EventHandDealt       EventType = "hand_dealt"
	EventHandPlayed      EventType = "hand_played"
	EventHandScored      EventType = "hand_scored"
	EventCardsDiscarded  EventType = "cards_discarded"
	EventCardDestroyed   EventType = "card_destroyed"
	EventCardAdded       EventType = "card_added"
	EventBlindCleared    EventType = "blind_cleared"
	EventBlindFailed     EventType = "blind_failed"
	EventDeathPrevented  EventType = "death_prevented"
	EventRunWon          EventType = "run_won"
	EventRunReset        EventType = "run_reset"
	EventShopEntered     EventType = "shop_entered"
	EventShopRerolled    EventType = "shop_rerolled"
	EventShopBought      EventType = "shop_bought"
	EventShopLeft        EventType = "shop_left"
	EventPackOpened      EventType = "pack_opened"
	EventPackChosen      EventType = "pack_chosen"
	EventPackSkipped     EventType = "pack_skipped"
	EventConsumableUsed  EventType = "consumable_used"
	EventConsumableAdded EventType = "consumable_added"
	EventConsumableSold  EventType = "consumable_sold"
	EventJokerAdded      EventType = "joker_added"
	EventJokerSold       EventType = "joker_sold"
	EventJokerDestroyed  EventType = "joker_destroyed"
	EventTagAdded        EventType = "tag_added"
	EventTagConsumed     EventType = "tag_consumed"
	EventHandUpgraded    EventType = "hand_upgraded"
	EventBossDisabled    EventType = "boss_disabled"
	EventActionFailed    EventType = "action_failed"
)

// Event is emitted after state changes, in the order they happened.
type Event struct {
	Type EventType      `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}
