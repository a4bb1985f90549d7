// Package scripting runs Lua scenario scripts against a mission. Scripts
// configure the mission, enlist the enemy fleet from the catalog, and buy,
// sell and rearrange the defending fleet.
package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/fleetsim/fleetsim/internal/data"
	"github.com/fleetsim/fleetsim/internal/fleet"
	"github.com/fleetsim/fleetsim/internal/mission"
)

// APIVersion is exposed to scripts as API_VERSION.
const APIVersion = 1

// Engine wraps a single gopher-lua VM bound to one mission.
// Single-goroutine access only.
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	mission *mission.Mission
	catalog *data.Catalog
}

// NewEngine creates a VM with the scenario API installed.
func NewEngine(m *mission.Mission, c *data.Catalog, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	e := &Engine{vm: vm, log: log, mission: m, catalog: c}
	for name, fn := range map[string]lua.LGFunction{
		"configure":   e.luaConfigure,
		"enemy":       e.luaEnemy,
		"buy_ship":    e.luaBuyShip,
		"sell_ship":   e.luaSellShip,
		"buy_weapon":  e.luaBuyWeapon,
		"sell_weapon": e.luaSellWeapon,
		"buy_plane":   e.luaBuyPlane,
		"sell_plane":  e.luaSellPlane,
		"move_plane":  e.luaMovePlane,
		"status":      e.luaStatus,
		"log":         e.luaLog,
	} {
		vm.SetGlobal(name, vm.NewFunction(fn))
	}
	return e
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// Run executes a scenario file.
func (e *Engine) Run(path string) error {
	if err := e.vm.DoFile(path); err != nil {
		return fmt.Errorf("run scenario %s: %w", path, err)
	}
	e.log.Debug("scenario loaded", zap.String("file", path))
	return nil
}

// RunString executes scenario source held in memory.
func (e *Engine) RunString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("run scenario: %w", err)
	}
	return nil
}

// BattleSummary is handed to the script's on_battle hook.
type BattleSummary struct {
	ID                string
	Winner            string
	Rounds            int
	DamageByAttackers uint
	DamageByDefenders uint
	Won               bool
}

// OnBattle calls the script's on_battle(summary) function if it defines one.
// Hook errors are logged, not returned.
func (e *Engine) OnBattle(s BattleSummary) {
	fn := e.vm.GetGlobal("on_battle")
	if fn == lua.LNil {
		return
	}

	t := e.vm.NewTable()
	t.RawSetString("id", lua.LString(s.ID))
	t.RawSetString("winner", lua.LString(s.Winner))
	t.RawSetString("rounds", lua.LNumber(s.Rounds))
	t.RawSetString("damage_attackers", lua.LNumber(s.DamageByAttackers))
	t.RawSetString("damage_defenders", lua.LNumber(s.DamageByDefenders))
	t.RawSetString("won", lua.LBool(s.Won))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua on_battle error", zap.Error(err))
	}
}

// pushOK and pushErr implement the Lua convention: true on success, nil plus a
// message on failure.
func pushOK(L *lua.LState) int {
	L.Push(lua.LTrue)
	return 1
}

func pushErr(L *lua.LState, err error) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}

func pushResult(L *lua.LState, err error) int {
	if err != nil {
		return pushErr(L, err)
	}
	return pushOK(L)
}

// configure{commander=, rank=, max_ships=, max_spend=, win_price=, point_a={x, y}, point_b={x, y}}
func (e *Engine) luaConfigure(L *lua.LState) int {
	t := L.CheckTable(1)
	pa, err := point(t.RawGetString("point_a"))
	if err != nil {
		L.ArgError(1, "point_a: "+err.Error())
		return 0
	}
	pb, err := point(t.RawGetString("point_b"))
	if err != nil {
		L.ArgError(1, "point_b: "+err.Error())
		return 0
	}
	e.mission.Configure(mission.Settings{
		Commander: fleet.Captain{
			Name: lua.LVAsString(t.RawGetString("commander")),
			Rank: lua.LVAsString(t.RawGetString("rank")),
		},
		MaxShips: int(lua.LVAsNumber(t.RawGetString("max_ships"))),
		MaxSpend: uint(lua.LVAsNumber(t.RawGetString("max_spend"))),
		WinPrice: uint(lua.LVAsNumber(t.RawGetString("win_price"))),
		PointA:   pa,
		PointB:   pb,
	})
	return 0
}

// point accepts {x, y} or {x=, y=}. nil is the origin.
func point(v lua.LValue) (fleet.Point, error) {
	if v == lua.LNil {
		return fleet.Point{}, nil
	}
	t, isTable := v.(*lua.LTable)
	if !isTable {
		return fleet.Point{}, fmt.Errorf("want table, got %s", v.Type())
	}
	x, y := t.RawGetInt(1), t.RawGetInt(2)
	if x == lua.LNil {
		x, y = t.RawGetString("x"), t.RawGetString("y")
	}
	return fleet.Pt(float64(lua.LVAsNumber(x)), float64(lua.LVAsNumber(y))), nil
}

// enemy(ship_id, name)
func (e *Engine) luaEnemy(L *lua.LState) int {
	ship, err := e.catalog.NewShip(L.CheckString(1), L.OptString(2, ""))
	if err != nil {
		return pushErr(L, err)
	}
	return pushResult(L, e.mission.AddAttacker(ship))
}

// buy_ship(ship_id, name)
func (e *Engine) luaBuyShip(L *lua.LState) int {
	ship, err := e.catalog.NewShip(L.CheckString(1), L.OptString(2, ""))
	if err != nil {
		return pushErr(L, err)
	}
	return pushResult(L, e.mission.BuyShip(ship))
}

// sell_ship(name)
func (e *Engine) luaSellShip(L *lua.LState) int {
	_, err := e.mission.SellShip(L.CheckString(1))
	return pushResult(L, err)
}

// buy_weapon(ship, weapon_id, name)
func (e *Engine) luaBuyWeapon(L *lua.LState) int {
	w, err := e.catalog.NewWeapon(L.CheckString(2), L.OptString(3, ""))
	if err != nil {
		return pushErr(L, err)
	}
	return pushResult(L, e.mission.BuyWeapon(L.CheckString(1), w))
}

// sell_weapon(ship, weapon_name)
func (e *Engine) luaSellWeapon(L *lua.LState) int {
	_, err := e.mission.SellWeapon(L.CheckString(1), L.CheckString(2))
	return pushResult(L, err)
}

// buy_plane(ship, plane_id, name)
func (e *Engine) luaBuyPlane(L *lua.LState) int {
	p, err := e.catalog.NewPlane(L.CheckString(2), L.OptString(3, ""))
	if err != nil {
		return pushErr(L, err)
	}
	return pushResult(L, e.mission.BuyPlane(L.CheckString(1), p))
}

// sell_plane(ship, plane_name)
func (e *Engine) luaSellPlane(L *lua.LState) int {
	_, err := e.mission.SellPlane(L.CheckString(1), L.CheckString(2))
	return pushResult(L, err)
}

// move_plane(src_ship, plane_name, dst_ship)
func (e *Engine) luaMovePlane(L *lua.LState) int {
	return pushResult(L, e.mission.MovePlane(L.CheckString(1), L.CheckString(2), L.CheckString(3)))
}

// status() returns a table snapshot of the mission's accounts.
func (e *Engine) luaStatus(L *lua.LState) int {
	m := e.mission
	t := L.NewTable()
	t.RawSetString("spend", lua.LNumber(m.Spend()))
	t.RawSetString("max_spend", lua.LNumber(m.MaxSpend()))
	t.RawSetString("remaining", lua.LNumber(m.MaxSpend()-min(m.Spend(), m.MaxSpend())))
	t.RawSetString("win_threshold", lua.LNumber(m.WinThreshold()))
	t.RawSetString("saved_money", lua.LNumber(m.SavedMoney()))
	t.RawSetString("enemy_cost", lua.LNumber(m.EnemyFleetCost()))
	t.RawSetString("ships", lua.LNumber(m.Defenders().Len()))
	t.RawSetString("max_ships", lua.LNumber(m.MaxShips()))
	t.RawSetString("enemies", lua.LNumber(m.Attackers().Len()))
	L.Push(t)
	return 1
}

// log(msg)
func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("scenario", zap.String("msg", L.CheckString(1)))
	return 0
}
