package bboltstore

import (
	"errors"

	"github.com/blevesearch/bleve/v2"
)

// bleveIndex aliases bleve.Index so the embedded field name does not clash with the Index method.
type bleveIndex = bleve.Index

type unavailableIndex struct {
	bleveIndex
}

func (unavailableIndex) Index(string, interface{}) error {
	return errors.New("index unavailable")
}

func (unavailableIndex) Close() error {
	return nil
}

// BreakSearchIndex closes the full-text index and replaces it with one that rejects every document.
func BreakSearchIndex(s *Store) {
	_ = s.bleveIndex.Close()
	s.bleveIndex = unavailableIndex{}
}
