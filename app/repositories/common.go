package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("record already exists")
	ErrMissingReference = errors.New("referenced record does not exist")
	ErrNotPinned        = errors.New("comment is not pinned")
)

const (
	// Key prefixes for different entity types
	UserKeyPrefix     = "user:"
	PostKeyPrefix     = "post:"
	CommentKeyPrefix  = "comment:"
	TagKeyPrefix      = "tag:"
	CategoryKeyPrefix = "category:"
	ReportKeyPrefix   = "report:"
	ActivityKeyPrefix = "activity:"
	ImageKeyPrefix    = "image:"

	// Secondary indexes
	UserEmailIndex    = "user-email:"
	UserUsernameIndex = "user-username:"
	TagNameIndex      = "tag-name:"
	CategoryNameIndex = "category-name:"
	PostCommentIndex  = "post-comment:"
	PostReportIndex   = "post-report:"
	PostLikePrefix    = "post-like:"
	CommentLikePrefix = "comment-like:"
	FollowingPrefix   = "following:"
	FollowerPrefix    = "follower:"
)

// newID returns a time-ordered identifier, so IDs created later sort after
// earlier ones.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func key(parts ...string) []byte {
	return []byte(strings.Join(parts, ""))
}

func indexKey(prefix, value string) []byte {
	return key(prefix, strings.ToLower(strings.TrimSpace(value)))
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

func getEntity(txn *badger.Txn, k []byte, entity interface{}) error {
	item, err := txn.Get(k)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

func putEntity(txn *badger.Txn, k []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(k, data)
}

func getString(txn *badger.Txn, k []byte) (string, error) {
	item, err := txn.Get(k)
	if err == badger.ErrKeyNotFound {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	return string(val), err
}

func exists(txn *badger.Txn, k []byte) (bool, error) {
	_, err := txn.Get(k)
	if err == badger.ErrKeyNotFound {
		return false, nil
	}
	return err == nil, err
}

// mustExist returns ErrNotFound when k is absent.
func mustExist(txn *badger.Txn, k []byte) error {
	ok, err := exists(txn, k)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// keySuffixes returns what follows prefix in every key that has it, without
// reading values.
func keySuffixes(txn *badger.Txn, prefix []byte) []string {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		out = append(out, string(it.Item().Key()[len(prefix):]))
	}
	return out
}

func countPrefix(txn *badger.Txn, prefix []byte) int {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	n := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		n++
	}
	return n
}

// eachValue calls fn with the value of every key under prefix.
func eachValue(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

func deletePrefix(txn *badger.Txn, prefix []byte) error {
	for _, suffix := range keySuffixes(txn, prefix) {
		if err := txn.Delete(key(string(prefix), suffix)); err != nil {
			return err
		}
	}
	return nil
}

// byCreation orders records by creation time, breaking ties by ID.
func byCreation(aTime, bTime time.Time, aID, bID string) bool {
	if !aTime.Equal(bTime) {
		return aTime.Before(bTime)
	}
	return aID < bID
}

func sortStrings(s []string) []string {
	sort.Strings(s)
	return s
}
