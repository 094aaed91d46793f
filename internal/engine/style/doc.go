// Package style defines the metadata value attached to runs of rich text.
//
// A Style is a small comparable value (foreground, background, attribute
// flags). Text runs store styles sparsely and coalesce adjacent entries by
// plain equality, so Style must stay free of pointers, slices and maps.
package style
