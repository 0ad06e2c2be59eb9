package dfa

// Stats carries the observational counts each pipeline stage produces, as
// data rather than printed output, left for a caller (the emitter, out of
// scope in this module) to format and print however it likes.
type Stats struct {
	PatternCount        int
	StartConditionCount int
	PositionCount       int
	StateCount          int
	OptimizedStateCount int
	MetaCount           int
	CompressedTableSize int
}
