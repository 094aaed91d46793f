// Package textrun provides a mutable character sequence annotated with
// sparse style metadata.
//
// Offsets are rune offsets. Metadata is stored as a sorted list of entries;
// the metadata of a character is the last entry whose offset is at or before
// it. Whenever the run is non-empty an entry exists at offset 0, and adjacent
// entries never carry equal styles.
//
//	run := textrun.New("Hello", style.Default())
//	_ = run.Insert(5, " World", bold)
//	s, _ := run.MetadataAt(7) // bold
//
// TextRun is not safe for concurrent use. Its owner (a richtext fragment)
// serializes access.
package textrun
