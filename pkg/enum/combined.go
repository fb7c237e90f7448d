package enum

import (
	"context"
	"sync"

	"github.com/netcfgkit/iossection/pkg/types"
)

// CombinedEnumerator runs several enumerators in order. A configuration
// backed up under several targets (the same device in two RANCID groups, a
// directory and its zip bundle) is yielded once, on its first location.
type CombinedEnumerator struct {
	enumerators []Enumerator

	// OnDuplicate, if set, receives every later location of a document that
	// was already yielded. Returning an error stops the enumeration.
	OnDuplicate func(id types.DocID, prov types.Provenance) error
}

// NewCombinedEnumerator wraps the provided enumerators.
func NewCombinedEnumerator(enumerators ...Enumerator) *CombinedEnumerator {
	return &CombinedEnumerator{enumerators: enumerators}
}

// Enumerate implements Enumerator.
func (c *CombinedEnumerator) Enumerate(ctx context.Context, callback func(content []byte, id types.DocID, prov types.Provenance) error) error {
	var mu sync.Mutex
	seen := make(map[types.DocID]struct{})

	for _, e := range c.enumerators {
		err := e.Enumerate(ctx, func(content []byte, id types.DocID, prov types.Provenance) error {
			mu.Lock()
			_, dup := seen[id]
			seen[id] = struct{}{}
			mu.Unlock()

			if dup {
				if c.OnDuplicate != nil {
					return c.OnDuplicate(id, prov)
				}
				return nil
			}
			return callback(content, id, prov)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
