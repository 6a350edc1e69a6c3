package model

// indexer interface is design to give a unique index to a (course, slot) pair and vice versa
type indexer interface {
	// Returns a unique 1-based index for a course and a 0-based slot ordinal
	Index(course uint64, slot uint64) uint64
	// Returns the course and slot ordinal from a unique index
	Attributes(index uint64) (course uint64, slot uint64)
	// Returns the number of variables the indexer can address
	Variables() uint64
}

func newIndexer(courses, slots uint64) indexer {
	return &indexerImplementation{
		courses: courses,
		slots:   slots,
	}
}

type indexerImplementation struct {
	courses uint64
	slots   uint64
}

func (indexer *indexerImplementation) Index(course, slot uint64) uint64 {
	return (course-1)*indexer.slots + slot + 1
}

func (indexer *indexerImplementation) Attributes(index uint64) (course, slot uint64) {
	index = index - 1
	slot = index % indexer.slots
	course = index/indexer.slots + 1
	return course, slot
}

func (indexer *indexerImplementation) Variables() uint64 {
	return indexer.courses * indexer.slots
}
