package db

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v2"
	"github.com/yumyai/emgapi/pkg/model"
)

// ErrStopScan ends a scan early without failing it.
var ErrStopScan = errors.New("stop scan")

const sep = "\x00"

// Index is one secondary index entry of a document: the document becomes
// reachable from (Field, Value).
type Index struct {
	Field string
	Value string
}

// DocStore is a document store over badger. Documents are JSON values under
// doc/<collection>/<id>; secondary indexes are empty values under
// idx/<collection>/<field>/<value>/<id>.
type DocStore struct {
	kv *badger.DB
}

// OpenDocStore opens the store in dir. An empty dir gives an in-memory
// store.
func OpenDocStore(dir string) (*DocStore, error) {
	options := badger.DefaultOptions(dir)
	if dir == "" {
		options = badger.DefaultOptions("").WithInMemory(true)
	}
	options.Logger = nil

	kv, err := badger.Open(options)
	if err != nil {
		return nil, model.DocumentError("open", err)
	}
	return &DocStore{kv: kv}, nil
}

func (d *DocStore) Close() error {
	if d.kv == nil {
		return nil
	}
	err := d.kv.Close()
	d.kv = nil
	return err
}

func (d *DocStore) IsClosed() bool {
	return d.kv == nil || d.kv.IsClosed()
}

func docKey(collection, id string) []byte {
	return []byte("doc" + sep + collection + sep + id)
}

func docPrefix(collection string) []byte {
	return []byte("doc" + sep + collection + sep)
}

func metaKey(collection, id string) []byte {
	return []byte("meta" + sep + collection + sep + id)
}

func indexPrefix(collection, field, value string) []byte {
	return []byte("idx" + sep + collection + sep + field + sep + value + sep)
}

// Get decodes the document into v. A missing document is (false, nil).
func (d *DocStore) Get(collection, id string, v any) (bool, error) {
	var raw []byte
	err := d.kv.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(collection, id))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, model.DocumentError("get "+collection, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return true, nil
}

// Put stores v wholesale, replacing any previous version of the document
// together with its index entries.
func (d *DocStore) Put(collection, id string, v any, indexes ...Index) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	keys := make([]string, 0, len(indexes))
	for _, ix := range indexes {
		keys = append(keys, string(indexPrefix(collection, ix.Field, ix.Value))+id)
	}
	meta, err := json.Marshal(keys)
	if err != nil {
		return err
	}

	err = d.kv.Update(func(txn *badger.Txn) error {
		if err := dropIndexes(txn, collection, id); err != nil {
			return err
		}
		if err := txn.Set(docKey(collection, id), raw); err != nil {
			return err
		}
		for _, k := range keys {
			if err := txn.Set([]byte(k), nil); err != nil {
				return err
			}
		}
		return txn.Set(metaKey(collection, id), meta)
	})
	if err != nil {
		return model.DocumentError("put "+collection, err)
	}
	return nil
}

func dropIndexes(txn *badger.Txn, collection, id string) error {
	item, err := txn.Get(metaKey(collection, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return err
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return err
	}
	for _, k := range keys {
		if err := txn.Delete([]byte(k)); err != nil {
			return err
		}
	}
	return nil
}

// Scan walks every document of a collection in key order.
func (d *DocStore) Scan(collection string, fn func(id string, raw []byte) error) error {
	prefix := docPrefix(collection)
	err := d.kv.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := string(bytes.TrimPrefix(item.KeyCopy(nil), prefix))
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(id, raw); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, ErrStopScan) {
		return nil
	}
	if err != nil {
		var se *model.StoreError
		if errors.As(err, &se) {
			return err
		}
		return model.DocumentError("scan "+collection, err)
	}
	return nil
}

// IndexScan calls fn with the id of every document indexed under
// (field, value). fn may return ErrStopScan.
func (d *DocStore) IndexScan(collection, field, value string, fn func(id string) error) error {
	prefix := indexPrefix(collection, field, value)
	err := d.kv.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id := string(bytes.TrimPrefix(it.Item().KeyCopy(nil), prefix))
			if err := fn(id); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, ErrStopScan) {
		return nil
	}
	if err != nil {
		return model.DocumentError("index scan "+collection+"."+field, err)
	}
	return nil
}

// Lookup returns the ids indexed under (field, value).
func (d *DocStore) Lookup(collection, field, value string) ([]string, error) {
	var ids []string
	err := d.IndexScan(collection, field, value, func(id string) error {
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

// SetID is the document id of an annotation set: "<job id>_<pipeline version>".
func SetID(jobID int, version string) string {
	return strconv.Itoa(jobID) + "_" + version
}

// ParseSetID splits a set document id back into its tuple.
func ParseSetID(id string) (int, string, error) {
	job, version, ok := strings.Cut(id, "_")
	if !ok || version == "" {
		return 0, "", fmt.Errorf("malformed set id %q", id)
	}
	jobID, err := strconv.Atoi(job)
	if err != nil {
		return 0, "", fmt.Errorf("malformed set id %q: %w", id, err)
	}
	return jobID, version, nil
}
