package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/richtext/internal/engine/richtext"
	"github.com/dshills/richtext/internal/engine/style"
)

const cursorTypeName = "rt.cursor"

// register installs the rt table and the cursor metatable.
func (s *Session) register() {
	L := s.L

	mt := L.NewTypeMetatable(cursorTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"pos":        s.cursorPos,
		"clone":      s.cursorClone,
		"close":      s.cursorClose,
		"closed":     s.cursorClosed,
		"move_to":    s.cursorMoveTo,
		"move":       s.cursorMove,
		"set_policy": s.cursorSetPolicy,
	}))
	L.SetField(mt, "__tostring", L.NewFunction(s.cursorString))

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"count":           s.count,
		"text":            s.fragmentText,
		"len":             s.fragmentLen,
		"insert":          s.insert,
		"erase":           s.erase,
		"replace":         s.replace,
		"style":           s.restyle,
		"style_at":        s.styleAt,
		"split":           s.split,
		"merge":           s.merge,
		"remove":          s.remove,
		"insert_fragment": s.insertFragment,
		"cursor":          s.newCursor,
	})

	L.SetGlobal("rt", mod)
	L.PreloadModule("rt", func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
}

// checkFragment resolves the 1-based fragment index at stack slot n.
func (s *Session) checkFragment(L *lua.LState, n int) *richtext.Fragment {
	i := L.CheckInt(n)
	f, err := s.text.Fragment(i - 1)
	if err != nil {
		L.ArgError(n, err.Error())
		return nil
	}
	return f
}

// optStyle resolves an optional style name at stack slot n. A nil result
// means "inherit".
func (s *Session) optStyle(L *lua.LState, n int) *style.Style {
	if L.Get(n) == lua.LNil {
		return nil
	}
	name := L.CheckString(n)
	st, ok := s.styles[name]
	if !ok {
		L.ArgError(n, "unknown style "+name)
		return nil
	}
	return &st
}

func (s *Session) apply(L *lua.LState, op string, f *richtext.Fragment, edit richtext.Edit) int {
	if err := s.text.ApplyEdit(f, edit); err != nil {
		L.RaiseError("%s: %v", op, err)
	}
	return 0
}

// count() -> number
func (s *Session) count(L *lua.LState) int {
	L.Push(lua.LNumber(s.text.Count()))
	return 1
}

// text([i]) -> string
func (s *Session) fragmentText(L *lua.LState) int {
	if L.GetTop() == 0 {
		L.Push(lua.LString(s.text.String()))
		return 1
	}
	L.Push(lua.LString(s.checkFragment(L, 1).String()))
	return 1
}

// len(i) -> number
func (s *Session) fragmentLen(L *lua.LState) int {
	L.Push(lua.LNumber(s.checkFragment(L, 1).Len()))
	return 1
}

// insert(i, off, s [, style])
func (s *Session) insert(L *lua.LState) int {
	f := s.checkFragment(L, 1)
	edit := richtext.NewInsert(L.CheckInt(2), L.CheckString(3))
	edit.Meta = s.optStyle(L, 4)
	return s.apply(L, "insert", f, edit)
}

// erase(i, off, n)
func (s *Session) erase(L *lua.LState) int {
	f := s.checkFragment(L, 1)
	return s.apply(L, "erase", f, richtext.NewErase(L.CheckInt(2), L.CheckInt(3)))
}

// replace(i, off, n, s [, style])
func (s *Session) replace(L *lua.LState) int {
	f := s.checkFragment(L, 1)
	edit := richtext.NewReplace(L.CheckInt(2), L.CheckInt(3), L.CheckString(4))
	edit.Meta = s.optStyle(L, 5)
	return s.apply(L, "replace", f, edit)
}

// style(i, start, end, name)
func (s *Session) restyle(L *lua.LState) int {
	f := s.checkFragment(L, 1)
	start, end := L.CheckInt(2), L.CheckInt(3)
	st := s.optStyle(L, 4)
	if st == nil {
		L.ArgError(4, "style name expected")
		return 0
	}
	if err := f.SetMetadata(start, end, *st); err != nil {
		L.RaiseError("style: %v", err)
	}
	return 0
}

// style_at(i, off) -> string
func (s *Session) styleAt(L *lua.LState) int {
	f := s.checkFragment(L, 1)
	st, err := f.MetadataAt(L.CheckInt(2))
	if err != nil {
		L.RaiseError("style_at: %v", err)
		return 0
	}
	for name, named := range s.styles {
		if named == st {
			L.Push(lua.LString(name))
			return 1
		}
	}
	L.Push(lua.LString(st.String()))
	return 1
}

// split(i, k)
func (s *Session) split(L *lua.LState) int {
	f := s.checkFragment(L, 1)
	if _, err := s.text.Split(f, L.CheckInt(2)); err != nil {
		L.RaiseError("split: %v", err)
	}
	return 0
}

// merge(i)
func (s *Session) merge(L *lua.LState) int {
	if err := s.text.Merge(s.checkFragment(L, 1)); err != nil {
		L.RaiseError("merge: %v", err)
	}
	return 0
}

// remove(i)
func (s *Session) remove(L *lua.LState) int {
	if err := s.text.Remove(s.checkFragment(L, 1)); err != nil {
		L.RaiseError("remove: %v", err)
	}
	return 0
}

// insert_fragment(i, s) inserts a new fragment so that it becomes index i.
func (s *Session) insertFragment(L *lua.LState) int {
	i := L.CheckInt(1)
	text := L.CheckString(2)
	meta := style.Default()
	if st := s.optStyle(L, 3); st != nil {
		meta = *st
	}
	if _, err := s.text.InsertFragment(i-1, text, meta); err != nil {
		L.RaiseError("insert_fragment: %v", err)
	}
	return 0
}

// cursor(i, off [, policy]) -> cursor
func (s *Session) newCursor(L *lua.LState) int {
	f := s.checkFragment(L, 1)
	off := L.CheckInt(2)
	policy := s.policy
	if L.Get(3) != lua.LNil {
		p, err := richtext.ParsePolicy(L.CheckString(3))
		if err != nil {
			L.ArgError(3, err.Error())
			return 0
		}
		policy = p
	}
	c, err := s.text.NewCursor(f, off, policy)
	if err != nil {
		L.RaiseError("cursor: %v", err)
		return 0
	}
	L.Push(s.wrapCursor(L, c))
	return 1
}

func (s *Session) wrapCursor(L *lua.LState, c *richtext.CursorOwner) *lua.LUserData {
	s.cursors[c] = struct{}{}
	ud := L.NewUserData()
	ud.Value = c
	L.SetMetatable(ud, L.GetTypeMetatable(cursorTypeName))
	return ud
}

func (s *Session) checkCursor(L *lua.LState) *richtext.CursorOwner {
	ud := L.CheckUserData(1)
	c, ok := ud.Value.(*richtext.CursorOwner)
	if !ok {
		L.ArgError(1, "cursor expected")
		return nil
	}
	return c
}

// c:pos() -> i, off, policy
func (s *Session) cursorPos(L *lua.LState) int {
	pos, err := s.checkCursor(L).Position()
	if err != nil {
		L.RaiseError("pos: %v", err)
		return 0
	}
	L.Push(lua.LNumber(pos.Index + 1))
	L.Push(lua.LNumber(pos.Offset))
	L.Push(lua.LString(pos.Policy.String()))
	return 3
}

// c:clone() -> cursor
func (s *Session) cursorClone(L *lua.LState) int {
	c, err := s.checkCursor(L).Clone()
	if err != nil {
		L.RaiseError("clone: %v", err)
		return 0
	}
	L.Push(s.wrapCursor(L, c))
	return 1
}

// c:close()
func (s *Session) cursorClose(L *lua.LState) int {
	c := s.checkCursor(L)
	c.Close()
	delete(s.cursors, c)
	return 0
}

// c:closed() -> bool
func (s *Session) cursorClosed(L *lua.LState) int {
	L.Push(lua.LBool(s.checkCursor(L).Closed()))
	return 1
}

// c:move_to(off)
func (s *Session) cursorMoveTo(L *lua.LState) int {
	if err := s.checkCursor(L).MoveTo(L.CheckInt(2)); err != nil {
		L.RaiseError("move_to: %v", err)
	}
	return 0
}

// c:move(n) -> offset
// Moves by n grapheme clusters.
func (s *Session) cursorMove(L *lua.LState) int {
	off, err := s.checkCursor(L).MoveGraphemes(L.CheckInt(2))
	if err != nil {
		L.RaiseError("move: %v", err)
		return 0
	}
	L.Push(lua.LNumber(off))
	return 1
}

// c:set_policy(p)
func (s *Session) cursorSetPolicy(L *lua.LState) int {
	c := s.checkCursor(L)
	p, err := richtext.ParsePolicy(L.CheckString(2))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}
	if err := c.SetPolicy(p); err != nil {
		L.RaiseError("set_policy: %v", err)
	}
	return 0
}

func (s *Session) cursorString(L *lua.LState) int {
	c := s.checkCursor(L)
	pos, err := c.Position()
	if err != nil {
		L.Push(lua.LString("cursor(" + err.Error() + ")"))
		return 1
	}
	L.Push(lua.LString(pos.String()))
	return 1
}
