// Package inmem provides in-memory implementations of the domain repositories.
package inmem

import (
	"sort"
	"sync"

	"github.com/Qalifah/passageplan/voyage"
)

type voyageRepository struct {
	mtx     sync.RWMutex
	voyages map[voyage.ID]*voyage.Voyage
}

// NewVoyageRepository returns a new instance of an in-memory voyage repository.
func NewVoyageRepository() voyage.Repository {
	return &voyageRepository{
		voyages: make(map[voyage.ID]*voyage.Voyage),
	}
}

func (r *voyageRepository) Store(v *voyage.Voyage) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.voyages[v.ID] = v.Clone()
	return nil
}

func (r *voyageRepository) Find(id voyage.ID) (*voyage.Voyage, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	if v, ok := r.voyages[id]; ok {
		return v.Clone(), nil
	}
	return nil, voyage.ErrUnknown
}

func (r *voyageRepository) FindAll() []*voyage.Voyage {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	vs := make([]*voyage.Voyage, 0, len(r.voyages))
	for _, v := range r.voyages {
		vs = append(vs, v.Clone())
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].ID < vs[j].ID })
	return vs
}

func (r *voyageRepository) Remove(id voyage.ID) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if _, ok := r.voyages[id]; !ok {
		return voyage.ErrUnknown
	}
	delete(r.voyages, id)
	return nil
}
