package richtext

// migrateInsert returns a location's offset after n characters are inserted
// at pos.
func migrateInsert(offset, pos, n int, policy Policy) int {
	switch {
	case offset > pos:
		return offset + n
	case offset == pos && policy == PolicyAfter:
		return offset + n
	default:
		return offset
	}
}

// migrateErase returns a location's offset after [pos, pos+count) is erased.
// Locations inside the erased range collapse to pos.
func migrateErase(offset, pos, count int) int {
	switch {
	case offset <= pos:
		return offset
	case offset < pos+count:
		return pos
	default:
		return offset - count
	}
}

// migrateSplit reports whether a location stays on the original fragment
// when it is split at k, and its offset on whichever side it lands.
func migrateSplit(offset, k int, policy Policy) (stays bool, newOffset int) {
	switch {
	case offset < k:
		return true, offset
	case offset > k:
		return false, offset - k
	case policy == PolicyBefore:
		return true, offset
	default:
		return false, 0
	}
}
