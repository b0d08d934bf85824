package session

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

var rankCodes = map[types.Rank]string{
	types.RankJack:  "J",
	types.RankQueen: "Q",
	types.RankKing:  "K",
	types.RankAce:   "A",
}

// CardCode renders a card as rank plus suit letter, e.g. "Ah" or "10d",
// with any modifiers in brackets.
func CardCode(c types.Card) string {
	if c.FaceDown {
		return "??"
	}
	var b strings.Builder
	if c.Enhancement == types.EnhancementStone {
		b.WriteString("Stone")
	} else {
		r, ok := rankCodes[c.Rank]
		if !ok {
			r = strconv.Itoa(int(c.Rank))
		}
		b.WriteString(r)
		if len(c.Suit) > 0 {
			b.WriteByte(c.Suit[0])
		}
	}
	var mods []string
	for _, m := range []string{string(c.Enhancement), string(c.Edition), string(c.Seal)} {
		if m != "" && m != string(types.EnhancementStone) {
			mods = append(mods, m)
		}
	}
	if c.Seal != "" {
		mods[len(mods)-1] += " seal"
	}
	if c.BonusChips != 0 {
		mods = append(mods, fmt.Sprintf("+%d", c.BonusChips))
	}
	if len(mods) > 0 {
		fmt.Fprintf(&b, "[%s]", strings.Join(mods, ","))
	}
	return b.String()
}

// StatusLine is a one-line summary of the run.
func StatusLine(s *types.RunState) string {
	return fmt.Sprintf("Ante %d %s | %s | %d/%d | $%d | hands %d discards %d",
		s.Ante, s.Blind, s.Phase, s.BlindScore, s.Target, s.Money, s.HandsLeft, s.DiscardsLeft)
}

// Describe renders the run state as display lines.
func Describe(s *types.RunState, tbl *rules.Table) []string {
	lines := []string{StatusLine(s)}
	if s.BossID != "" {
		boss := tbl.Name(rules.SourceBoss, s.BossID)
		if s.BossDisabled {
			boss += " (disabled)"
		}
		lines = append(lines, "Boss: "+boss)
	}
	if len(s.Hand) > 0 {
		lines = append(lines, "Hand: "+indexed(len(s.Hand), func(i int) string { return CardCode(s.Hand[i]) }))
	}
	lines = append(lines, fmt.Sprintf("Deck: %d  Discard pile: %d", len(s.Deck), len(s.Discard)))
	if len(s.Jokers) > 0 {
		lines = append(lines, "Jokers: "+indexed(len(s.Jokers), func(i int) string {
			j := s.Jokers[i]
			return fmt.Sprintf("%s%s #%d", tbl.Name(rules.SourceJoker, j.ID), edition(j.Edition), j.UID)
		}))
	}
	if len(s.Consumables) > 0 {
		lines = append(lines, "Consumables: "+indexed(len(s.Consumables), func(i int) string {
			c := s.Consumables[i]
			return fmt.Sprintf("%s%s #%d", tbl.Name(rules.SourceConsumable, c.ID), edition(c.Edition), c.UID)
		}))
	}
	if len(s.Tags) > 0 {
		names := make([]string, len(s.Tags))
		for i, t := range s.Tags {
			names[i] = tbl.Name(rules.SourceTag, t.ID)
		}
		lines = append(lines, "Tags: "+strings.Join(names, ", "))
	}
	if len(s.Vouchers) > 0 {
		names := make([]string, len(s.Vouchers))
		for i, v := range s.Vouchers {
			names[i] = tbl.Name(rules.SourceVoucher, v)
		}
		lines = append(lines, "Vouchers: "+strings.Join(names, ", "))
	}
	if s.Shop != nil {
		lines = append(lines, shopLines(s.Shop, tbl)...)
	}
	if s.Pack != nil {
		lines = append(lines, packLines(s.Pack, tbl)...)
	}
	return lines
}

func shopLines(sh *types.Shop, tbl *rules.Table) []string {
	var lines []string
	if len(sh.Cards) > 0 {
		lines = append(lines, "Shop cards: "+indexed(len(sh.Cards), func(i int) string {
			o := sh.Cards[i]
			return fmt.Sprintf("%s%s $%d", offerName(o.Kind, o.ItemID, tbl), edition(o.Edition), o.Price)
		}))
	}
	if len(sh.Packs) > 0 {
		lines = append(lines, "Shop packs: "+indexed(len(sh.Packs), func(i int) string {
			p := sh.Packs[i]
			return fmt.Sprintf("%s %s (pick %d of %d) $%d", p.Size, p.Kind, p.Picks, p.Options, p.Price)
		}))
	}
	if len(sh.Vouchers) > 0 {
		lines = append(lines, "Shop vouchers: "+indexed(len(sh.Vouchers), func(i int) string {
			v := sh.Vouchers[i]
			return fmt.Sprintf("%s $%d", tbl.Name(rules.SourceVoucher, v.ID), v.Price)
		}))
	}
	lines = append(lines, fmt.Sprintf("Reroll: $%d", sh.RerollCost))
	return lines
}

func packLines(p *types.OpenPack, tbl *rules.Table) []string {
	head := fmt.Sprintf("Open %s %s pack, pick %d:", p.Offer.Size, p.Offer.Kind, p.Offer.Picks)
	return []string{head, "  " + indexed(len(p.Options), func(i int) string {
		o := p.Options[i]
		if o.Card != nil {
			return CardCode(*o.Card)
		}
		return offerName(o.Kind, o.ItemID, tbl) + edition(o.Edition)
	})}
}

func offerName(kind types.OfferKind, id string, tbl *rules.Table) string {
	if kind == types.OfferJoker {
		return tbl.Name(rules.SourceJoker, id)
	}
	return tbl.Name(rules.SourceConsumable, id)
}

func edition(e types.Edition) string {
	if e == types.EditionNone {
		return ""
	}
	return " (" + string(e) + ")"
}

func indexed(n int, item func(i int) string) string {
	parts := make([]string, n)
	for i := range n {
		parts[i] = fmt.Sprintf("%d:%s", i, item(i))
	}
	return strings.Join(parts, "  ")
}

// BreakdownLines renders a score breakdown, one line per accumulator step.
func BreakdownLines(b *types.ScoreBreakdown) []string {
	lines := []string{fmt.Sprintf("%s: %d chips x %s mult", b.Hand, b.BaseChips, fmtMult(b.BaseMult))}
	for _, st := range b.Steps {
		lines = append(lines, fmt.Sprintf("  %-24s %-10s %d x %s", st.Source, st.Effect, st.ChipsAfter, fmtMult(st.MultAfter)))
	}
	lines = append(lines, fmt.Sprintf("= %d x %s = %d", b.Chips, fmtMult(b.Mult), b.Total))
	return lines
}

func fmtMult(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// EventLine renders one event as "type key=value ...", keys sorted.
func EventLine(ev types.Event) string {
	if len(ev.Data) == 0 {
		return string(ev.Type)
	}
	keys := make([]string, 0, len(ev.Data))
	for k := range ev.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(string(ev.Type))
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, ev.Data[k])
	}
	return b.String()
}
