// Package visibility builds "make this visible" requests for cursors and
// focused elements and applies them to a chain of scrollable peepholes.
//
// A cursor produces a Request for the rectangle it occupies, with Entire set
// to false: the enclosing peepholes only need to scroll far enough to show it
// (plus margins). A focused element produces a Request for its whole bounding
// box with Entire set to true.
//
// Locating a cursor on screen is delegated to a Locator supplied by the
// layout collaborator; this package never measures text itself.
package visibility
