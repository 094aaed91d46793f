// Package script drives richtext edits from Lua.
//
// A Session binds one richtext.Text to a sandboxed gopher-lua state and
// exposes it as the global table "rt" (also available through
// require("rt")). Fragment indices are 1-based like Lua arrays; offsets are
// 0-based rune offsets.
//
//	rt.count()                       -- number of fragments
//	rt.text([i])                     -- fragment text, or the whole text
//	rt.len(i)
//	rt.insert(i, off, s [, style])
//	rt.erase(i, off, n)
//	rt.replace(i, off, n, s [, style])
//	rt.style(i, start, end, style)   -- restyle a range
//	rt.style_at(i, off)              -- style description at off
//	rt.split(i, k)
//	rt.merge(i)                      -- append fragment i+1 onto i
//	rt.remove(i)
//	rt.insert_fragment(i, s)
//	rt.cursor(i, off [, policy])     -- new cursor owner
//
// Cursor userdata supports c:pos(), c:clone(), c:close(), c:closed(),
// c:move_to(off), c:move(n) and c:set_policy(p). Cursors still open when
// the session closes are closed with it.
package script
