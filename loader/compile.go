// Package loader reads content files into a rule table. Content is YAML;
// conditions and values are expression text compiled once at load time.
// Script mods are Lua files run by a sandboxed VM for the life of a run.
package loader

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

// file is the top-level shape of a content file.
type file struct {
	Jokers      []rawJoker      `yaml:"jokers"`
	Bosses      []rawBoss       `yaml:"bosses"`
	Tags        []rawTag        `yaml:"tags"`
	Consumables []rawConsumable `yaml:"consumables"`
	Vouchers    []rawVoucher    `yaml:"vouchers"`
	Mods        []rawMod        `yaml:"mods"`
	Mixins      []rawMixin      `yaml:"mixins"`
}

// rawMixin is a named list of effect blocks shared by several definitions.
// A definition naming it under mixins gets its blocks appended after its
// own.
type rawMixin struct {
	ID      string     `yaml:"id"`
	Effects []rawBlock `yaml:"effects"`
}

type rawJoker struct {
	ID      string             `yaml:"id"`
	Name    string             `yaml:"name"`
	Rarity  string             `yaml:"rarity"`
	Price   int64              `yaml:"price"`
	Rules   map[string]float64 `yaml:"rules"`
	Effects []rawBlock         `yaml:"effects"`
	Mixins  []string           `yaml:"mixins"`
}

type rawBoss struct {
	ID         string     `yaml:"id"`
	Name       string     `yaml:"name"`
	MinAnte    int        `yaml:"min_ante"`
	TargetMult float64    `yaml:"target_mult"`
	Effects    []rawBlock `yaml:"effects"`
	Mixins     []string   `yaml:"mixins"`
}

type rawTag struct {
	ID      string     `yaml:"id"`
	Name    string     `yaml:"name"`
	Effects []rawBlock `yaml:"effects"`
	Mixins  []string   `yaml:"mixins"`
}

type rawConsumable struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Kind      string     `yaml:"kind"`
	Hand      string     `yaml:"hand"`
	Price     int64      `yaml:"price"`
	MinSelect int        `yaml:"min_select"`
	MaxSelect int        `yaml:"max_select"`
	Effects   []rawBlock `yaml:"effects"`
	Mixins    []string   `yaml:"mixins"`
}

type rawVoucher struct {
	ID       string     `yaml:"id"`
	Name     string     `yaml:"name"`
	Price    int64      `yaml:"price"`
	Requires string     `yaml:"requires"`
	Effects  []rawBlock `yaml:"effects"`
	Mixins   []string   `yaml:"mixins"`
}

type rawMod struct {
	ID         string     `yaml:"id"`
	Phase      string     `yaml:"phase"`
	CancelCore bool       `yaml:"cancel_core"`
	Effects    []rawBlock `yaml:"effects"`
	Mixins     []string   `yaml:"mixins"`
}

// rawBlock is one effect block: on <trigger>, when <conditions>, do <actions>.
type rawBlock struct {
	On   string      `yaml:"on"`
	When stringList  `yaml:"when"`
	Do   []rawAction `yaml:"do"`
}

// rawAction accepts the long form {op, target, value} or the short form
// {<op>: <value>}.
type rawAction struct {
	Op     string
	Target string
	Value  string
}

func (a *rawAction) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		a.Op = n.Value
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: action must be a mapping", n.Line)
	}
	var m map[string]string
	if err := n.Decode(&m); err != nil {
		return err
	}
	if op, ok := m["op"]; ok {
		a.Op, a.Target, a.Value = op, m["target"], m["value"]
		return nil
	}
	if len(m) != 1 {
		return fmt.Errorf("line %d: short action form takes exactly one key", n.Line)
	}
	for k, v := range m {
		a.Op, a.Value = k, v
	}
	return nil
}

// stringList accepts a single string or a sequence of strings.
type stringList []string

func (l *stringList) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*l = stringList{n.Value}
		return nil
	}
	var s []string
	if err := n.Decode(&s); err != nil {
		return err
	}
	*l = s
	return nil
}

// compiler turns raw definitions into content defs, recording problems
// in a shared report instead of stopping at the first.
type compiler struct {
	report *ValidationError
	where  string
	mixins map[string][]rawBlock
}

func (c *compiler) errorf(format string, args ...any) {
	c.report.Errors = append(c.report.Errors, c.where+": "+fmt.Sprintf(format, args...))
}

// blocks compiles a definition's own blocks followed by those of each
// mixin it names, in order.
func (c *compiler) blocks(raw []rawBlock, mixins ...string) []types.EffectBlock {
	for _, name := range mixins {
		mb, ok := c.mixins[name]
		if !ok {
			c.errorf("unknown mixin %q", name)
			continue
		}
		raw = append(raw[:len(raw):len(raw)], mb...)
	}
	out := make([]types.EffectBlock, 0, len(raw))
	for i, rb := range raw {
		b, ok := c.block(i, rb)
		if ok {
			out = append(out, b)
		}
	}
	return out
}

func (c *compiler) block(i int, rb rawBlock) (types.EffectBlock, bool) {
	b := types.EffectBlock{Trigger: types.Trigger(strings.ToLower(rb.On))}
	ok := true
	for _, w := range rb.When {
		e, err := ParseExpr(w)
		if err != nil {
			c.errorf("effect %d: %v", i, err)
			ok = false
			continue
		}
		b.Conditions = append(b.Conditions, e)
	}
	for _, ra := range rb.Do {
		a, err := compileAction(ra)
		if err != nil {
			c.errorf("effect %d: %v", i, err)
			ok = false
			continue
		}
		b.Actions = append(b.Actions, a)
	}
	return b, ok
}

func compileAction(ra rawAction) (types.Action, error) {
	a := types.Action{
		Op:     types.ActionOp(strings.ToLower(strings.TrimSpace(ra.Op))),
		Target: strings.TrimSpace(ra.Target),
	}
	if a.Op == "" {
		return a, fmt.Errorf("action without op")
	}
	if v := strings.TrimSpace(ra.Value); v != "" {
		// plain numbers skip the parser
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			a.Value = Number(n)
			return a, nil
		}
		e, err := ParseExpr(v)
		if err != nil {
			return a, fmt.Errorf("%s: %w", a.Op, err)
		}
		a.Value = e
	}
	return a, nil
}

// collectMixins gathers the mixins of every file. Ids are global across
// files and must be unique.
func collectMixins(names []string, files []*file, report *ValidationError) map[string][]rawBlock {
	mixins := make(map[string][]rawBlock)
	for i, f := range files {
		for _, m := range f.Mixins {
			_, dup := mixins[m.ID]
			switch {
			case m.ID == "":
				report.Errors = append(report.Errors, names[i]+": mixin without id")
			case dup:
				report.Errors = append(report.Errors, fmt.Sprintf("%s: duplicate mixin %q", names[i], m.ID))
			default:
				mixins[m.ID] = m.Effects
			}
		}
	}
	return mixins
}

// compile adds the definitions of one file to the table.
func compile(name string, f *file, tbl *rules.Table, mixins map[string][]rawBlock, report *ValidationError) {
	c := &compiler{report: report, mixins: mixins}
	add := func(err error) {
		if err != nil {
			c.errorf("%v", err)
		}
	}

	for _, r := range f.Jokers {
		c.where = fmt.Sprintf("%s: joker %q", name, r.ID)
		add(tbl.AddJoker(types.JokerDef{
			ID:     r.ID,
			Name:   r.Name,
			Rarity: types.Rarity(strings.ToLower(r.Rarity)),
			Price:  r.Price,
			Rules:  r.Rules,
			Blocks: c.blocks(r.Effects, r.Mixins...),
		}))
	}
	for _, r := range f.Bosses {
		c.where = fmt.Sprintf("%s: boss %q", name, r.ID)
		add(tbl.AddBoss(types.BossDef{
			ID:         r.ID,
			Name:       r.Name,
			MinAnte:    r.MinAnte,
			TargetMult: r.TargetMult,
			Blocks:     c.blocks(r.Effects, r.Mixins...),
		}))
	}
	for _, r := range f.Tags {
		c.where = fmt.Sprintf("%s: tag %q", name, r.ID)
		add(tbl.AddTag(types.TagDef{ID: r.ID, Name: r.Name, Blocks: c.blocks(r.Effects, r.Mixins...)}))
	}
	for _, r := range f.Consumables {
		c.where = fmt.Sprintf("%s: consumable %q", name, r.ID)
		add(tbl.AddConsumable(types.ConsumableDef{
			ID:        r.ID,
			Name:      r.Name,
			Kind:      types.ConsumableKind(strings.ToLower(r.Kind)),
			Hand:      types.HandKind(strings.ToLower(r.Hand)),
			Price:     r.Price,
			MinSelect: r.MinSelect,
			MaxSelect: r.MaxSelect,
			Blocks:    c.blocks(r.Effects, r.Mixins...),
		}))
	}
	for _, r := range f.Vouchers {
		c.where = fmt.Sprintf("%s: voucher %q", name, r.ID)
		add(tbl.AddVoucher(types.VoucherDef{
			ID:       r.ID,
			Name:     r.Name,
			Price:    r.Price,
			Requires: r.Requires,
			Blocks:   c.blocks(r.Effects, r.Mixins...),
		}))
	}
	for _, r := range f.Mods {
		c.where = fmt.Sprintf("%s: mod %q", name, r.ID)
		add(tbl.AddMod(rules.ModBlocks{
			ID:         r.ID,
			Phase:      rules.ModPhase(strings.ToLower(r.Phase)),
			CancelCore: r.CancelCore,
			Blocks:     c.blocks(r.Effects, r.Mixins...),
		}))
	}
}
