package offtarget

import (
	"context"
	"errors"
)

// Annotations serves records from the cache, fetching and caching them on a miss.
type Annotations struct {
	cache   *AnnotationCache
	fetcher Fetcher
}

// NewAnnotations returns an Annotations reading through cache to fetcher.
func NewAnnotations(cache *AnnotationCache, fetcher Fetcher) *Annotations {
	return &Annotations{
		cache:   cache,
		fetcher: fetcher,
	}
}

// Retrieve returns the record of an accession. A cache miss fetches the record,
// caches it and builds its index before returning. A failed fetch is a *FetchError
// and is not retried.
func (a *Annotations) Retrieve(ctx context.Context, accession string) (*Record, error) {
	rec, err := a.cache.Get(accession)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	rec, err = a.fetcher.Fetch(ctx, accession)
	if err != nil {
		return nil, err
	}
	if err := a.cache.Put(ctx, accession, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
