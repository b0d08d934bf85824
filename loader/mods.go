package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/OranPie/rulatro/engine/events"
	"github.com/OranPie/rulatro/engine/hand"
	"github.com/OranPie/rulatro/engine/rules"
	"github.com/OranPie/rulatro/types"
)

// HookTimeout bounds one hook call in wall-clock time. A hook that runs
// close to the limit may pass on one host and time out on another, so mods
// that hit it break replay determinism. Zero or less disables the bound.
var HookTimeout = 250 * time.Millisecond

type hookKey struct {
	trigger types.Trigger
	phase   rules.ModPhase
}

// LuaMod is a script mod loaded from one .lua file. Its VM lives as long
// as the mod and calls are serialized. Scripts should keep no state
// between calls; anything they remember is not part of a save.
type LuaMod struct {
	name  string
	log   *zap.Logger
	mu    sync.Mutex
	L     *lua.LState
	hooks map[hookKey][]*lua.LFunction
	roll  func(sides int) int
}

var _ events.Hook = (*LuaMod)(nil)

// LoadMods loads every .lua file in dir as a mod, in name order. A
// missing directory yields no mods.
func LoadMods(dir string, log *zap.Logger) ([]*LuaMod, error) {
	if log == nil {
		log = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading mods directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var mods []*LuaMod
	for _, n := range names {
		src, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil {
			CloseMods(mods)
			return nil, err
		}
		m, err := NewLuaMod(strings.TrimSuffix(n, ".lua"), string(src), log)
		if err != nil {
			CloseMods(mods)
			return nil, fmt.Errorf("loading mod %s: %w", n, err)
		}
		mods = append(mods, m)
		log.Info("mod loaded", zap.String("mod", m.name), zap.Int("hooks", len(m.hooks)))
	}
	return mods, nil
}

// NewLuaMod runs a script in a fresh sandboxed VM, collecting the hooks
// it registers with on().
func NewLuaMod(name, src string, log *zap.Logger) (*LuaMod, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m := &LuaMod{name: name, log: log, hooks: map[hookKey][]*lua.LFunction{}}

	// 1. Create sandboxed VM.
	m.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(m.L)
	sandbox(m.L, m)

	// 2. Register API.
	registerAPI(m.L, m)

	// 3. Execute the script body.
	if err := m.L.DoString(src); err != nil {
		m.L.Close()
		return nil, err
	}
	return m, nil
}

// CloseMods releases the VMs of mods.
func CloseMods(mods []*LuaMod) {
	for _, m := range mods {
		m.Close()
	}
}

// Hooks adapts mods to the dispatcher interface.
func Hooks(mods []*LuaMod) []events.Hook {
	out := make([]events.Hook, len(mods))
	for i, m := range mods {
		out[i] = m
	}
	return out
}

// Close releases the VM.
func (m *LuaMod) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.L.Close()
}

func (m *LuaMod) Name() string { return m.name }

func (m *LuaMod) Handles(trigger types.Trigger, phase rules.ModPhase) bool {
	return len(m.hooks[hookKey{trigger: trigger, phase: phase}]) > 0
}

// Run calls every function registered for the context's trigger and
// phase, merging their results in registration order.
func (m *LuaMod) Run(hc events.HookContext) (events.HookResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx := context.Background()
	if HookTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, HookTimeout)
		defer cancel()
	}
	m.L.SetContext(ctx)
	m.roll = hc.Roll
	defer func() { m.roll = nil }()

	var res events.HookResult
	arg := m.contextTable(hc)
	for _, fn := range m.hooks[hookKey{trigger: hc.Trigger, phase: hc.Phase}] {
		if err := m.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, arg); err != nil {
			return res, err
		}
		ret := m.L.Get(-1)
		m.L.Pop(1)
		tbl, ok := ret.(*lua.LTable)
		if !ok {
			continue
		}
		blocks, err := luaBlocks(getTable(tbl, "effects"))
		if err != nil {
			return res, err
		}
		res.Blocks = append(res.Blocks, blocks...)
		res.CancelCore = res.CancelCore || lua.LVAsBool(tbl.RawGetString("cancel_core"))
		res.Stop = res.Stop || lua.LVAsBool(tbl.RawGetString("stop"))
		if res.Stop {
			break
		}
	}
	return res, nil
}

func (m *LuaMod) contextTable(hc events.HookContext) *lua.LTable {
	L := m.L
	t := L.NewTable()
	t.RawSetString("trigger", lua.LString(hc.Trigger))
	t.RawSetString("phase", lua.LString(hc.Phase))
	t.RawSetString("hand", lua.LString(hc.Hand))
	t.RawSetString("ante", lua.LNumber(hc.Ante))
	t.RawSetString("blind", lua.LString(hc.Blind))
	t.RawSetString("money", lua.LNumber(hc.Money))
	t.RawSetString("hands_left", lua.LNumber(hc.HandsLeft))
	t.RawSetString("discards_left", lua.LNumber(hc.DiscardsLeft))
	if c := hc.Card; c != nil {
		ct := L.NewTable()
		ct.RawSetString("rank", lua.LString(hand.RankName(c.Rank)))
		ct.RawSetString("rank_id", lua.LNumber(c.Rank))
		ct.RawSetString("suit", lua.LString(c.Suit))
		ct.RawSetString("enhancement", lua.LString(c.Enhancement))
		ct.RawSetString("edition", lua.LString(c.Edition))
		ct.RawSetString("seal", lua.LString(c.Seal))
		t.RawSetString("card", ct)
	}
	return t
}

// luaBlocks converts a returned effects list into effect blocks, using
// the same compiler as content files.
func luaBlocks(tbl *lua.LTable) ([]types.EffectBlock, error) {
	var raw []rawBlock
	for i, v := range tableList(tbl) {
		bt, ok := v.(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("effect %d is not a table", i)
		}
		rb := rawBlock{On: getString(bt, "on")}
		switch w := bt.RawGetString("when").(type) {
		case lua.LString:
			rb.When = stringList{string(w)}
		case *lua.LTable:
			for _, c := range tableList(w) {
				rb.When = append(rb.When, lua.LVAsString(c))
			}
		}
		for j, av := range tableList(getTable(bt, "actions")) {
			at, ok := av.(*lua.LTable)
			if !ok {
				return nil, fmt.Errorf("effect %d action %d is not a table", i, j)
			}
			rb.Do = append(rb.Do, rawAction{
				Op:     getString(at, "op"),
				Target: getString(at, "target"),
				Value:  getString(at, "value"),
			})
		}
		raw = append(raw, rb)
	}

	report := &ValidationError{}
	c := &compiler{report: report, where: "hook"}
	blocks := c.blocks(raw)
	if len(report.Errors) > 0 {
		return nil, report
	}
	return blocks, nil
}
