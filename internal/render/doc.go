// Package render lays out rich text fragments into terminal rows and draws
// them onto a tcell screen.
//
// A Layout is built from an immutable richtext.Snapshot, so it can be
// computed and queried without holding the text's lock. Layout implements
// visibility.Locator, which turns cursor positions into screen rectangles.
package render
