package content

import (
	"context"
	"sort"
	"sync"
)

type memDoc struct {
	Doc
	seq int64
}

type memoryDocs struct {
	mu    sync.RWMutex
	seq   int64
	colls map[Collection]map[string]memDoc
}

// NewInMemoryStore returns a Repo that keeps everything in process memory.
func NewInMemoryStore() *Repo {
	return NewRepo(NewMemoryDocs(), nil)
}

func NewMemoryDocs() Docs {
	return &memoryDocs{colls: map[Collection]map[string]memDoc{}}
}

func (m *memoryDocs) Put(_ context.Context, c Collection, d Doc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll, ok := m.colls[c]
	if !ok {
		coll = map[string]memDoc{}
		m.colls[c] = coll
	}
	seq := int64(0)
	if old, ok := coll[d.ID]; ok {
		seq, d.CreatedAt = old.seq, old.CreatedAt
	} else {
		m.seq++
		seq = m.seq
	}
	coll[d.ID] = memDoc{Doc: copyDoc(d), seq: seq}
	return nil
}

func (m *memoryDocs) Get(_ context.Context, c Collection, id string) (Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.colls[c][id]
	if !ok {
		return Doc{}, ErrNotFound
	}
	return copyDoc(d.Doc), nil
}

func (m *memoryDocs) List(_ context.Context, c Collection, q Query) ([]Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	hits := make([]memDoc, 0, len(m.colls[c]))
	for _, d := range m.colls[c] {
		if q.Parent != "" && d.Parent != q.Parent {
			continue
		}
		if q.Ref != "" && d.Ref != q.Ref {
			continue
		}
		hits = append(hits, d)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })
	out := make([]Doc, len(hits))
	for i, d := range hits {
		out[i] = copyDoc(d.Doc)
	}
	return out, nil
}

func (m *memoryDocs) Delete(_ context.Context, c Collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.colls[c][id]; !ok {
		return ErrNotFound
	}
	delete(m.colls[c], id)
	return nil
}

func (m *memoryDocs) Update(_ context.Context, c Collection, id string, fn func(Doc) (Doc, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.colls[c][id]
	if !ok {
		return ErrNotFound
	}
	d, err := fn(copyDoc(old.Doc))
	if err != nil {
		return err
	}
	d.ID, d.CreatedAt = id, old.CreatedAt
	m.colls[c][id] = memDoc{Doc: copyDoc(d), seq: old.seq}
	return nil
}

func copyDoc(d Doc) Doc {
	d.Data = append([]byte(nil), d.Data...)
	return d
}
