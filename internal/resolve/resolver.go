package resolve

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dshills/packwizml/internal/cache"
	"github.com/dshills/packwizml/internal/logging"
	"github.com/dshills/packwizml/internal/mods"
	"github.com/dshills/packwizml/internal/providers"
	"github.com/dshills/packwizml/internal/redact"
)

// LookupPolicy selects how cache hits are determined per source.
type LookupPolicy int

const (
	// LookupAllOrNothing fetches a source's whole sublist if any reference
	// in it misses the cache.
	LookupAllOrNothing LookupPolicy = iota
	// LookupPerKey fetches only the references that missed.
	LookupPerKey
)

// OrderPolicy selects the order of the resolved records.
type OrderPolicy int

const (
	// OrderGrouped returns all Modrinth records, then all CurseForge records,
	// each in input order.
	OrderGrouped OrderPolicy = iota
	// OrderInput returns records in the order of the input references.
	OrderInput
)

// ErrorPolicy selects what happens to the successful items of a batch in
// which some items failed. The resolution fails either way.
type ErrorPolicy int

const (
	// FailFast discards the whole batch.
	FailFast ErrorPolicy = iota
	// KeepPartial caches the successful items before failing.
	KeepPartial
)

// Options configures a Resolver.
type Options struct {
	Lookup  LookupPolicy
	Order   OrderPolicy
	OnError ErrorPolicy
	Logger  *log.Logger
}

// Resolver resolves references against a cache store and upstream fetchers.
type Resolver struct {
	store    *cache.Store
	fetchers map[mods.Source]providers.Fetcher
	opts     Options
	logger   *log.Logger
}

// New creates a Resolver. Each fetcher serves the source it reports.
func New(store *cache.Store, fetchers []providers.Fetcher, opts Options) *Resolver {
	bySource := make(map[mods.Source]providers.Fetcher, len(fetchers))
	for _, f := range fetchers {
		bySource[f.Source()] = f
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Resolver{
		store:    store,
		fetchers: bySource,
		opts:     opts,
		logger:   logger,
	}
}

// Resolve returns one record per reference.
func (r *Resolver) Resolve(ctx context.Context, refs []mods.Reference) ([]mods.Record, error) {
	parts := mods.Partition(refs)
	grouped := make([]mods.Record, 0, len(refs))
	byKey := make(map[mods.Key]mods.Record, len(refs))

	for _, src := range mods.Sources {
		sub := parts[src]
		if len(sub) == 0 {
			continue
		}
		recs, err := r.resolveSource(ctx, src, sub)
		if err != nil {
			return nil, err
		}
		for i, rec := range recs {
			byKey[sub[i].Key()] = rec
		}
		grouped = append(grouped, recs...)
	}

	if r.opts.Order == OrderGrouped {
		return grouped, nil
	}
	ordered := make([]mods.Record, 0, len(refs))
	for _, ref := range refs {
		ordered = append(ordered, byKey[ref.Key()])
	}
	return ordered, nil
}

// resolveSource returns records for sub, in the order of sub.
func (r *Resolver) resolveSource(ctx context.Context, src mods.Source, sub []mods.Reference) ([]mods.Record, error) {
	hits := make(map[mods.Key]mods.Record, len(sub))
	var misses []mods.Reference

	switch r.opts.Lookup {
	case LookupPerKey:
		hits, misses = r.store.Lookup(sub)
	default:
		if recs, ok := r.store.GetAll(sub); ok {
			r.logger.Debug("cache hit", "source", src, "hits", len(recs))
			return recs, nil
		}
		misses = sub
	}

	if len(misses) > 0 {
		r.logger.Info("fetching", "source", src, "hits", len(hits), "misses", len(misses))
		fetched, err := r.fetch(ctx, src, misses)
		if err != nil {
			return nil, err
		}
		for k, rec := range fetched {
			hits[k] = rec
		}
	}

	out := make([]mods.Record, len(sub))
	for i, ref := range sub {
		rec, ok := hits[ref.Key()]
		if !ok {
			return nil, fmt.Errorf("%s project %q was not resolved", src, ref.ID)
		}
		out[i] = rec
	}
	return out, nil
}

// fetch batch-fetches refs from the source's fetcher and inserts the results
// into the store.
func (r *Resolver) fetch(ctx context.Context, src mods.Source, refs []mods.Reference) (map[mods.Key]mods.Record, error) {
	fetcher, ok := r.fetchers[src]
	if !ok {
		return nil, fmt.Errorf("no fetcher configured for %s", src)
	}

	owners := make(map[string]mods.Reference, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if _, seen := owners[ref.ID]; !seen {
			ids = append(ids, ref.ID)
		}
		owners[ref.ID] = ref
	}

	items, err := fetcher.FetchBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching %s projects: %w", src, err)
	}

	fetched := make(map[mods.Key]mods.Record, len(items))
	ins := make([]cache.Insertion, 0, len(items))
	var firstErr error
	for _, item := range items {
		if item.Err == nil && item.Record.Source() != src {
			item.Err = fmt.Errorf("fetcher returned a %q record", item.Record.Source())
		}
		if item.Err != nil {
			r.logger.Debug("fetch failed", "source", src, "id", item.ID, "err", redact.Body(item.Err.Error()))
			if firstErr == nil {
				firstErr = fmt.Errorf("fetching %s project %q: %w", src, item.ID, item.Err)
			}
			continue
		}
		ref, ok := owners[item.ID]
		if !ok {
			continue
		}
		fetched[ref.Key()] = item.Record
		ins = append(ins, cache.Insertion{Key: ref.Key(), Token: ref.Token, Record: item.Record})
	}

	if firstErr != nil {
		if r.opts.OnError == KeepPartial {
			r.store.InsertAll(ins)
		}
		return nil, firstErr
	}

	r.store.InsertAll(ins)
	return fetched, nil
}
