package store

// List returns a copy of the collection, or an empty slice when it does not
// exist.
func (s *Store) List(collection string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.collections[collection])
}

// Get returns a copy of the first record whose id matches.
func (s *Store) Get(collection, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.collections[collection]
	i, ok := findIndex(recs, id)
	if !ok {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	return recs[i].Clone(), nil
}

// Create appends rec as given, creating the collection if needed. No id is
// assigned or checked.
func (s *Store) Create(collection string, rec Record) Record {
	if rec == nil {
		rec = Record{}
	}
	stored := rec.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], stored)
	s.flush()
	return stored.Clone()
}

// Replace overwrites the record matching id with body. The stored id keeps its
// kind: a textual id becomes id as given, a numeric id becomes id parsed as an
// integer. If that is impossible nothing changes and *InvalidIDTypeError is
// returned.
func (s *Store) Replace(collection, id string, body Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.collections[collection]
	i, ok := findIndex(recs, id)
	if !ok {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	existing := recs[i].ID()
	newID, err := existing.Coerce(id)
	if err != nil {
		return nil, &InvalidIDTypeError{Collection: collection, ID: id, Kind: existing.Kind()}
	}

	next := body.Clone()
	if next == nil {
		next = Record{}
	}
	next[IDField] = newID.Value()
	recs[i] = next
	s.flush()
	return next.Clone(), nil
}

// Update shallow-merges patch into the record matching id. Fields absent from
// patch are kept.
func (s *Store) Update(collection, id string, patch Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.collections[collection]
	i, ok := findIndex(recs, id)
	if !ok {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	rec := recs[i]
	for k, v := range patch.Clone() {
		rec[k] = v
	}
	s.flush()
	return rec.Clone(), nil
}

// Delete removes the record matching id and returns it. Remaining records keep
// their order.
func (s *Store) Delete(collection, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.collections[collection]
	i, ok := findIndex(recs, id)
	if !ok {
		return nil, &NotFoundError{Collection: collection, ID: id}
	}
	removed := recs[i]
	copy(recs[i:], recs[i+1:])
	recs[len(recs)-1] = nil
	s.collections[collection] = recs[:len(recs)-1]
	s.flush()
	return removed, nil
}
