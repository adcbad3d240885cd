package jsonfile

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/warp/drinklog/tracker"
)

// tinyDefaultTable is the table name TinyDB uses when none is given.
const tinyDefaultTable = "_default"

type tinyRecord struct {
	Date   *string  `json:"date"`
	Type   *string  `json:"type"`
	Ounces *float64 `json:"ounces"`
}

// RecordError describes a legacy record that could not be imported.
type RecordError struct {
	DocID int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("doc %d: %v", e.DocID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// ReadTinyDB parses a legacy TinyDB db.json and returns its entries ordered
// by document id. Entry.ID carries the legacy doc id; an importer inserts them
// again and gets fresh IDs.
//
// A missing ounces field is read as 0, matching how the old script displayed
// such records. A missing or invalid date or type rejects that record; rejected
// records are returned alongside the good ones rather than failing the file.
func ReadTinyDB(r io.Reader) ([]tracker.Entry, []*RecordError, error) {
	var tables map[string]map[string]tinyRecord
	if err := json.NewDecoder(r).Decode(&tables); err != nil {
		return nil, nil, fmt.Errorf("decode tinydb: %w", err)
	}

	docs := tables[tinyDefaultTable]
	ids := make([]int, 0, len(docs))
	byID := make(map[int]tinyRecord, len(docs))
	var rejected []*RecordError

	for key, rec := range docs {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, nil, fmt.Errorf("decode tinydb: doc id %q is not an integer", key)
		}
		ids = append(ids, id)
		byID[id] = rec
	}
	sort.Ints(ids)

	entries := make([]tracker.Entry, 0, len(ids))
	for _, id := range ids {
		e, err := convertTinyRecord(byID[id])
		if err != nil {
			rejected = append(rejected, &RecordError{DocID: id, Err: err})
			continue
		}
		e.ID = tracker.EntryID(id)
		entries = append(entries, e)
	}
	return entries, rejected, nil
}

func convertTinyRecord(rec tinyRecord) (tracker.Entry, error) {
	if rec.Date == nil {
		return tracker.Entry{}, &tracker.ValidationError{Field: "date", Reason: "missing"}
	}
	date, err := tracker.ParseDate(*rec.Date)
	if err != nil {
		return tracker.Entry{}, err
	}

	if rec.Type == nil {
		return tracker.Entry{}, &tracker.ValidationError{Field: "type", Reason: "missing"}
	}
	kind, err := tracker.ValidateType(*rec.Type)
	if err != nil {
		return tracker.Entry{}, err
	}

	var quantity float64
	if rec.Ounces != nil {
		quantity = *rec.Ounces
	}
	if err := tracker.ValidateQuantity(quantity); err != nil {
		return tracker.Entry{}, err
	}

	return tracker.Entry{Date: date, Type: kind, Quantity: quantity}, nil
}
