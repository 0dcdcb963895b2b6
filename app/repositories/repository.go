package repositories

import (
	"github.com/dgraph-io/badger/v4"
)

// Open opens (or creates) the database at path.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	return badger.Open(opts)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*badger.DB, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	return badger.Open(opts)
}

// Repositories bundles every store backed by one database.
type Repositories struct {
	Users      *BadgerUserRepository
	Posts      *BadgerPostRepository
	Comments   *BadgerCommentRepository
	Tags       *BadgerTagRepository
	Categories *BadgerCategoryRepository
	Reports    *BadgerReportRepository
	Likes      *BadgerLikeRepository
	Follows    *BadgerFollowRepository
	Activities *BadgerActivityRepository
	Images     *BadgerImageRepository
}

func New(db *badger.DB) *Repositories {
	return &Repositories{
		Users:      NewBadgerUserRepository(db),
		Posts:      NewBadgerPostRepository(db),
		Comments:   NewBadgerCommentRepository(db),
		Tags:       NewBadgerTagRepository(db),
		Categories: NewBadgerCategoryRepository(db),
		Reports:    NewBadgerReportRepository(db),
		Likes:      NewBadgerLikeRepository(db),
		Follows:    NewBadgerFollowRepository(db),
		Activities: NewBadgerActivityRepository(db),
		Images:     NewBadgerImageRepository(db),
	}
}
