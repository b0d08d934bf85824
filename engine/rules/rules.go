// Package rules implements the Rule Table: the read-only index of
// content-defined effect blocks, keyed by source and trigger.
package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/OranPie/rulatro/types"
)

// SourceKind names a category of effect-block source.
type SourceKind string

const (
	SourceJoker      SourceKind = "joker"
	SourceBoss       SourceKind = "boss"
	SourceTag        SourceKind = "tag"
	SourceConsumable SourceKind = "consumable"
	SourceVoucher    SourceKind = "voucher"
	SourceMod        SourceKind = "mod"
	SourceCard       SourceKind = "card"
)

// ModPhase places mod blocks before or after the core sources.
type ModPhase string

const (
	ModPre  ModPhase = "pre"
	ModPost ModPhase = "post"
)

// ModBlocks is a set of static blocks contributed by a mod. CancelCore on
// a pre-phase set suppresses boss, joker and tag dispatch whenever one of
// its blocks fires.
type ModBlocks struct {
	ID         string
	Phase      ModPhase
	CancelCore bool
	Blocks     []types.EffectBlock
}

// ErrSealed is returned when content is added after Seal.
var ErrSealed = errors.New("rule table is sealed")

// IntegrityError reports content that references or duplicates something
// it should not.
type IntegrityError struct {
	Kind   SourceKind
	ID     string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Kind, e.ID, e.Reason)
}

type blockKey struct {
	kind    SourceKind
	id      string
	trigger types.Trigger
}

// Table holds every loaded definition. It is mutable only until Seal;
// afterwards it is safe to share across concurrently running engines.
type Table struct {
	jokers      map[string]types.JokerDef
	bosses      map[string]types.BossDef
	tags        map[string]types.TagDef
	consumables map[string]types.ConsumableDef
	vouchers    map[string]types.VoucherDef
	order       map[SourceKind][]string
	mods        []ModBlocks
	index       map[blockKey][]types.EffectBlock
	sealed      bool
}

// NewTable returns an empty, unsealed table.
func NewTable() *Table {
	return &Table{
		jokers:      map[string]types.JokerDef{},
		bosses:      map[string]types.BossDef{},
		tags:        map[string]types.TagDef{},
		consumables: map[string]types.ConsumableDef{},
		vouchers:    map[string]types.VoucherDef{},
		order:       map[SourceKind][]string{},
		index:       map[blockKey][]types.EffectBlock{},
	}
}

func (t *Table) admit(kind SourceKind, id string, exists bool) error {
	if t.sealed {
		return ErrSealed
	}
	if id == "" {
		return &IntegrityError{Kind: kind, ID: id, Reason: "missing id"}
	}
	if exists {
		return &IntegrityError{Kind: kind, ID: id, Reason: "duplicate id"}
	}
	t.order[kind] = append(t.order[kind], id)
	return nil
}

func (t *Table) indexBlocks(kind SourceKind, id string, blocks []types.EffectBlock) {
	for _, b := range blocks {
		k := blockKey{kind: kind, id: id, trigger: b.Trigger}
		t.index[k] = append(t.index[k], b)
	}
}

// AddJoker ingests a joker definition.
func (t *Table) AddJoker(def types.JokerDef) error {
	_, exists := t.jokers[def.ID]
	if err := t.admit(SourceJoker, def.ID, exists); err != nil {
		return err
	}
	if def.Rarity == "" {
		def.Rarity = types.RarityCommon
	}
	t.jokers[def.ID] = def
	t.indexBlocks(SourceJoker, def.ID, def.Blocks)
	return nil
}

// AddBoss ingests a boss blind definition.
func (t *Table) AddBoss(def types.BossDef) error {
	_, exists := t.bosses[def.ID]
	if err := t.admit(SourceBoss, def.ID, exists); err != nil {
		return err
	}
	t.bosses[def.ID] = def
	t.indexBlocks(SourceBoss, def.ID, def.Blocks)
	return nil
}

// AddTag ingests a tag definition.
func (t *Table) AddTag(def types.TagDef) error {
	_, exists := t.tags[def.ID]
	if err := t.admit(SourceTag, def.ID, exists); err != nil {
		return err
	}
	t.tags[def.ID] = def
	t.indexBlocks(SourceTag, def.ID, def.Blocks)
	return nil
}

// AddConsumable ingests a tarot, planet or spectral definition.
func (t *Table) AddConsumable(def types.ConsumableDef) error {
	_, exists := t.consumables[def.ID]
	if err := t.admit(SourceConsumable, def.ID, exists); err != nil {
		return err
	}
	t.consumables[def.ID] = def
	t.indexBlocks(SourceConsumable, def.ID, def.Blocks)
	return nil
}

// AddVoucher ingests a voucher definition.
func (t *Table) AddVoucher(def types.VoucherDef) error {
	_, exists := t.vouchers[def.ID]
	if err := t.admit(SourceVoucher, def.ID, exists); err != nil {
		return err
	}
	t.vouchers[def.ID] = def
	t.indexBlocks(SourceVoucher, def.ID, def.Blocks)
	return nil
}

// AddMod ingests static mod blocks.
func (t *Table) AddMod(m ModBlocks) error {
	exists := false
	for _, existing := range t.mods {
		if existing.ID == m.ID && existing.Phase == m.Phase {
			exists = true
		}
	}
	if t.sealed {
		return ErrSealed
	}
	if m.ID == "" || exists {
		return &IntegrityError{Kind: SourceMod, ID: m.ID, Reason: "missing or duplicate id"}
	}
	if m.Phase != ModPre && m.Phase != ModPost {
		return &IntegrityError{Kind: SourceMod, ID: m.ID, Reason: "phase must be pre or post"}
	}
	t.mods = append(t.mods, m)
	return nil
}

// Seal freezes the table and reports cross-reference problems. The table
// is sealed even when an error is returned.
func (t *Table) Seal() error {
	t.sealed = true
	var errs []error
	for _, id := range t.order[SourceVoucher] {
		v := t.vouchers[id]
		if v.Requires != "" {
			if _, ok := t.vouchers[v.Requires]; !ok {
				errs = append(errs, &IntegrityError{Kind: SourceVoucher, ID: id, Reason: "requires unknown voucher " + v.Requires})
			}
		}
	}
	for _, id := range t.order[SourceConsumable] {
		c := t.consumables[id]
		if c.Kind == types.ConsumablePlanet && c.Hand == "" {
			errs = append(errs, &IntegrityError{Kind: SourceConsumable, ID: id, Reason: "planet without hand"})
		}
	}
	return errors.Join(errs...)
}

// Sealed reports whether the table is frozen.
func (t *Table) Sealed() bool { return t.sealed }

// Blocks returns the blocks of one source for one trigger. The returned
// slice is shared and must not be modified.
func (t *Table) Blocks(kind SourceKind, id string, trigger types.Trigger) []types.EffectBlock {
	return t.index[blockKey{kind: kind, id: id, trigger: trigger}]
}

// Mods returns the static mod block sets for a phase, in load order.
func (t *Table) Mods(phase ModPhase) []ModBlocks {
	var out []ModBlocks
	for _, m := range t.mods {
		if m.Phase == phase {
			out = append(out, m)
		}
	}
	return out
}

// IDs returns the ids of one source kind in load order.
func (t *Table) IDs(kind SourceKind) []string {
	out := make([]string, len(t.order[kind]))
	copy(out, t.order[kind])
	return out
}

// Joker returns a joker definition.
func (t *Table) Joker(id string) (types.JokerDef, bool) {
	def, ok := t.jokers[id]
	return def, ok
}

// JokersByRarity returns joker ids of a rarity in load order.
func (t *Table) JokersByRarity(r types.Rarity) []string {
	var out []string
	for _, id := range t.order[SourceJoker] {
		if t.jokers[id].Rarity == r {
			out = append(out, id)
		}
	}
	return out
}

// Boss returns a boss definition.
func (t *Table) Boss(id string) (types.BossDef, bool) {
	def, ok := t.bosses[id]
	return def, ok
}

// Tag returns a tag definition.
func (t *Table) Tag(id string) (types.TagDef, bool) {
	def, ok := t.tags[id]
	return def, ok
}

// Consumable returns a consumable definition.
func (t *Table) Consumable(id string) (types.ConsumableDef, bool) {
	def, ok := t.consumables[id]
	return def, ok
}

// ConsumablesByKind returns consumable ids of a kind in load order.
func (t *Table) ConsumablesByKind(kind types.ConsumableKind) []string {
	var out []string
	for _, id := range t.order[SourceConsumable] {
		if t.consumables[id].Kind == kind {
			out = append(out, id)
		}
	}
	return out
}

// PlanetFor returns the planet that levels a hand kind.
func (t *Table) PlanetFor(kind types.HandKind) (string, bool) {
	if kind == types.HandRoyalFlush {
		kind = types.HandStraightFlush
	}
	for _, id := range t.order[SourceConsumable] {
		c := t.consumables[id]
		if c.Kind == types.ConsumablePlanet && c.Hand == kind {
			return id, true
		}
	}
	return "", false
}

// Voucher returns a voucher definition.
func (t *Table) Voucher(id string) (types.VoucherDef, bool) {
	def, ok := t.vouchers[id]
	return def, ok
}

// Lookup resolves an id or display name, case-insensitively, within one
// source kind.
func (t *Table) Lookup(kind SourceKind, key string) (string, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, id := range t.order[kind] {
		if strings.ToLower(id) == key || strings.ToLower(t.name(kind, id)) == key {
			return id, true
		}
	}
	return "", false
}

// Name returns the display name of a definition, falling back to its id.
func (t *Table) Name(kind SourceKind, id string) string {
	if n := t.name(kind, id); n != "" {
		return n
	}
	return id
}

func (t *Table) name(kind SourceKind, id string) string {
	switch kind {
	case SourceJoker:
		return t.jokers[id].Name
	case SourceBoss:
		return t.bosses[id].Name
	case SourceTag:
		return t.tags[id].Name
	case SourceConsumable:
		return t.consumables[id].Name
	case SourceVoucher:
		return t.vouchers[id].Name
	}
	return ""
}

// Triggers returns the triggers a source has blocks for, sorted.
func (t *Table) Triggers(kind SourceKind, id string) []types.Trigger {
	var out []types.Trigger
	for k := range t.index {
		if k.kind == kind && k.id == id {
			out = append(out, k.trigger)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
