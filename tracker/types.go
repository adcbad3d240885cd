/*
types.go - Entry, the only persisted entity

DESIGN:
  An Entry is one recorded consumption event. All four fields are always
  populated; defaulting and validation happen before Insert, never here.
  Entries are immutable once stored. A correction is a delete followed by a
  new insert, which gets a new ID.

ID POLICY:
  IDs are assigned by the Store, strictly increasing, and never reused -
  not after DeleteByID, not after DeleteAll. Every backend honors this.
*/
package tracker

import "strconv"

// EntryID identifies an Entry for its whole lifetime.
type EntryID int64

func (id EntryID) String() string { return strconv.FormatInt(int64(id), 10) }

// Entry is one dated quantity of something consumed.
type Entry struct {
	ID       EntryID
	Date     Date
	Type     string
	Quantity float64 // ounces
}
