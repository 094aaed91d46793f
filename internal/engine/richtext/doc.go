// Package richtext implements styled text fragments and the cursor
// locations that point into them.
//
// A Text owns an ordered list of fragments (paragraphs). Each Fragment owns a
// textrun.TextRun and keeps a slot table of the cursor locations currently
// targeting it. Locations are owned exclusively by a CursorOwner; the fragment
// only holds non-owning back-references, so closing an owner removes its slot
// in O(1).
//
// Every mutation goes through the Text's write lock and migrates all affected
// locations in the same critical section, so no reader observes a text change
// without the matching location change:
//
//	txt := richtext.NewFromString("ABCDEF")
//	frag := txt.Fragments()[0]
//	cur, _ := txt.NewCursor(frag, 3, richtext.PolicyAfter)
//	defer cur.Close()
//
//	_ = frag.ApplyEdit(richtext.NewInsert(3, "XY"))
//	pos, _ := cur.Position() // offset 5
//
// Migration rules:
//
//   - Insert of n characters at p: locations after p shift by n. A location
//     exactly at p stays with PolicyBefore and moves to p+n with PolicyAfter.
//   - Erase of [p, p+c): locations inside collapse to p, locations at or
//     after p+c shift left by c.
//   - Split at k: locations before k stay, locations after k move to the new
//     fragment at offset-k. A location exactly at k stays with PolicyBefore
//     and moves to offset 0 of the new fragment with PolicyAfter.
//   - Merge: locations of the absorbed fragment move to the end of the
//     surviving one, keeping their relative offsets.
//
// Lifecycle:
//
// Fragments move through Active, TearingDown and Destroyed. Deregistration
// and migration against a fragment that is not Active are no-ops, so owners
// may be closed in any order relative to fragment teardown. An owner whose
// fragment was destroyed reports ErrDetached.
//
// Thread Safety:
//
// All exported methods are safe for concurrent use. Reading a location's
// fragment and offset is only meaningful under the Text's lock; use Read to
// obtain a Guard, or CursorOwner.Position for a one-shot copy.
package richtext
