package blockindex

const (
	// StatusHeaderValid the header passed contextual checks.
	StatusHeaderValid uint32 = 1 << iota
	// StatusAllValid the full block was validated and connected.
	StatusAllValid
	// StatusFailed the block itself failed validation.
	StatusFailed
	// StatusFailedChild a descendant of an invalid block.
	StatusFailedChild
	// StatusDataStored the full block data is held in memory.
	StatusDataStored

	StatusNone uint32 = 0
)

// StatusFailedMask covers both failure flavours.
const StatusFailedMask = StatusFailed | StatusFailedChild
