package engine

import (
	"fmt"
	"strings"
)

// ActionKind names an entry point of the action API.
type ActionKind string

const (
	ActReset          ActionKind = "reset"
	ActStartBlind     ActionKind = "start_blind"
	ActSkipBlind      ActionKind = "skip_blind"
	ActDeal           ActionKind = "deal"
	ActPlay           ActionKind = "play"
	ActDiscard        ActionKind = "discard"
	ActEnterShop      ActionKind = "enter_shop"
	ActLeaveShop      ActionKind = "leave_shop"
	ActReroll         ActionKind = "reroll"
	ActBuyCard        ActionKind = "buy_card"
	ActBuyPack        ActionKind = "buy_pack"
	ActBuyVoucher     ActionKind = "buy_voucher"
	ActPickPack       ActionKind = "pick_pack"
	ActSkipPack       ActionKind = "skip_pack"
	ActUseConsumable  ActionKind = "use_consumable"
	ActSellJoker      ActionKind = "sell_joker"
	ActSellConsumable ActionKind = "sell_consumable"
	ActNextBlind      ActionKind = "next_blind"
)

// Actions lists every action kind.
var Actions = []ActionKind{
	ActReset, ActStartBlind, ActSkipBlind, ActDeal, ActPlay, ActDiscard,
	ActEnterShop, ActLeaveShop, ActReroll, ActBuyCard, ActBuyPack, ActBuyVoucher,
	ActPickPack, ActSkipPack, ActUseConsumable, ActSellJoker, ActSellConsumable,
	ActNextBlind,
}

// Command is one action with its arguments. Commands are what the action
// log records and what front-ends send.
type Command struct {
	Action  ActionKind `json:"action"`
	Indices []int      `json:"indices,omitempty"`
	Index   int        `json:"index,omitempty"`
	UID     uint32     `json:"uid,omitempty"`
	Seed    int64      `json:"seed,omitempty"`
}

func (c Command) String() string {
	var b strings.Builder
	b.WriteString(string(c.Action))
	switch c.Action {
	case ActReset:
		fmt.Fprintf(&b, " %d", c.Seed)
	case ActBuyCard, ActBuyPack, ActBuyVoucher:
		fmt.Fprintf(&b, " %d", c.Index)
	case ActSellJoker, ActSellConsumable, ActUseConsumable:
		fmt.Fprintf(&b, " #%d", c.UID)
	}
	for _, i := range c.Indices {
		fmt.Fprintf(&b, " %d", i)
	}
	return b.String()
}

// Do dispatches a command to its action method.
func (e *Engine) Do(c Command) (Result, error) {
	switch c.Action {
	case ActReset:
		return e.Reset(c.Seed), nil
	case ActStartBlind:
		return e.StartBlind()
	case ActSkipBlind:
		return e.SkipBlind()
	case ActDeal:
		return e.Deal()
	case ActPlay:
		return e.Play(c.Indices)
	case ActDiscard:
		return e.Discard(c.Indices)
	case ActEnterShop:
		return e.EnterShop()
	case ActLeaveShop:
		return e.LeaveShop()
	case ActReroll:
		return e.Reroll()
	case ActBuyCard:
		return e.BuyCard(c.Index)
	case ActBuyPack:
		return e.BuyPack(c.Index)
	case ActBuyVoucher:
		return e.BuyVoucher(c.Index)
	case ActPickPack:
		return e.PickPack(c.Indices)
	case ActSkipPack:
		return e.SkipPack()
	case ActUseConsumable:
		return e.UseConsumable(c.UID, c.Indices)
	case ActSellJoker:
		return e.SellJoker(c.UID)
	case ActSellConsumable:
		return e.SellConsumable(c.UID)
	case ActNextBlind:
		return e.NextBlind()
	}
	return Result{}, &IllegalActionError{Action: c.Action, Phase: e.State.Phase, Reason: fmt.Errorf("unknown action %q", c.Action)}
}
