package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/cache"
	"github.com/sakif/portfolio/internal/fallback"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/reconcile"
	"github.com/sakif/portfolio/internal/repository"
	"github.com/sakif/portfolio/internal/staticdata"
)

// ErrLoadDiscarded is returned by Load when the caller's context ended
// before the load finished. Nothing was written to the cache. It is the
// only error Load returns.
var ErrLoadDiscarded = errors.New("catalog load discarded")

// refreshTimeout bounds the reload that follows an admin mutation.
const refreshTimeout = 10 * time.Second

// Static supplies the bundled dataset, the last tier of every chain.
type Static struct {
	Projects     func() []model.Project
	Certificates func() []model.Certificate
}

// BundledStatic is the dataset compiled into the binary.
var BundledStatic = Static{
	Projects:     staticdata.Projects,
	Certificates: staticdata.Certificates,
}

// CatalogOptions tunes Load.
type CatalogOptions struct {
	// KeepStale merges the cache tier even after the store answered.
	KeepStale bool
	// CareerStart feeds Stats. Zero means zero years.
	CareerStart time.Time
}

// Counts reports where the records of one load came from.
type Counts struct {
	TotalProjects      int `json:"totalProjects"`
	TotalCertificates  int `json:"totalCertificates"`
	RemoteProjects     int `json:"remoteProjects"`
	RemoteCertificates int `json:"remoteCertificates"`
	CachedProjects     int `json:"cachedProjects"`
	CachedCertificates int `json:"cachedCertificates"`
	StaticProjects     int `json:"staticProjects"`
	StaticCertificates int `json:"staticCertificates"`
}

// Catalog is the reconciled result of one load.
type Catalog struct {
	Projects     []model.Project     `json:"projects"`
	Certificates []model.Certificate `json:"certificates"`
	Counts       Counts              `json:"counts"`
	// Degraded is set when the store failed or was skipped for either
	// collection, meaning the data may be stale.
	Degraded bool `json:"degraded"`
}

// Stats is the summary shown on the about page.
type Stats struct {
	TotalProjects     int  `json:"totalProjects"`
	TotalCertificates int  `json:"totalCertificates"`
	YearsExperience   int  `json:"yearsExperience"`
	Degraded          bool `json:"degraded"`
}

// CatalogService assembles projects and certificates from three tiers in
// precedence order: the document store, the local cache, and the bundled
// dataset. Loading never fails for data reasons; the worst case is the
// bundled dataset alone.
type CatalogService struct {
	store  repository.Store
	static Static
	opts   CatalogOptions
	logger *slog.Logger

	projectCache     *cache.Collection[model.Project]
	certificateCache *cache.Collection[model.Certificate]
	projectChain     *fallback.Executor[model.Project]
	certificateChain *fallback.Executor[model.Certificate]

	now func() time.Time
}

func NewCatalogService(
	store repository.Store,
	kv cache.Store,
	static Static,
	opts CatalogOptions,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		store:  store,
		static: static,
		opts:   opts,
		logger: logger,

		projectCache:     cache.NewCollection(kv, cache.KeyProjects, model.NormalizeProject, logger),
		certificateCache: cache.NewCollection(kv, cache.KeyCertificates, model.NormalizeCertificate, logger),
		projectChain:     fallback.New[model.Project](logger),
		certificateChain: fallback.New[model.Certificate](logger),

		now: time.Now,
	}
}

// chain is one collection's tiers.
type chain[T any] struct {
	executor *fallback.Executor[T]
	remote   fallback.Source[T]
	cache    *cache.Collection[T]
	static   func() []T
	keyOf    reconcile.KeyFunc[T]
}

type chainResult[T any] struct {
	items                  []T
	remote, cached, static int
	degraded               bool
}

// liveness flips to dead once the caller's context ends. Checked before
// every side effect so an abandoned load cannot overwrite a newer one.
type liveness struct {
	ctx  context.Context
	dead atomic.Bool
	stop func() bool
}

func watch(ctx context.Context) *liveness {
	l := &liveness{ctx: ctx}
	l.stop = context.AfterFunc(ctx, func() { l.dead.Store(true) })
	return l
}

// alive also consults ctx directly: AfterFunc runs its callback on another
// goroutine, so the flag can lag the cancellation by a moment.
func (l *liveness) alive() bool {
	return !l.dead.Load() && l.ctx.Err() == nil
}

func discarded(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrLoadDiscarded, context.Cause(ctx))
}

// Load runs the project and certificate chains concurrently. Each chain
// is sequential: store, then cache, then bundled data, merged with
// first-write-wins on the merge key, then written back to the cache.
func (s *CatalogService) Load(ctx context.Context) (*Catalog, error) {
	live := watch(ctx)
	defer live.stop()

	var (
		projects     chainResult[model.Project]
		certificates chainResult[model.Certificate]
		g            errgroup.Group
	)

	g.Go(func() error {
		var err error
		projects, err = runChain(ctx, live, s, chain[model.Project]{
			executor: s.projectChain,
			remote:   s.projectSource(),
			cache:    s.projectCache,
			static:   s.static.Projects,
			keyOf:    reconcile.ProjectKey,
		})
		return err
	})
	g.Go(func() error {
		var err error
		certificates, err = runChain(ctx, live, s, chain[model.Certificate]{
			executor: s.certificateChain,
			remote:   s.certificateSource(repository.CertificateFilter{}),
			cache:    s.certificateCache,
			static:   s.static.Certificates,
			keyOf:    reconcile.CertificateKey,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !live.alive() {
		return nil, discarded(ctx)
	}

	cat := &Catalog{
		Projects:     projects.items,
		Certificates: certificates.items,
		Counts: Counts{
			TotalProjects:      len(projects.items),
			TotalCertificates:  len(certificates.items),
			RemoteProjects:     projects.remote,
			RemoteCertificates: certificates.remote,
			CachedProjects:     projects.cached,
			CachedCertificates: certificates.cached,
			StaticProjects:     projects.static,
			StaticCertificates: certificates.static,
		},
		Degraded: projects.degraded || certificates.degraded,
	}

	s.logger.Debug("catalog loaded",
		slog.Int("projects", cat.Counts.TotalProjects),
		slog.Int("certificates", cat.Counts.TotalCertificates),
		slog.Bool("degraded", cat.Degraded),
	)
	return cat, nil
}

func runChain[T any](ctx context.Context, live *liveness, s *CatalogService, c chain[T]) (chainResult[T], error) {
	out := c.executor.Run(ctx, c.remote)
	remote := out.Records

	snap := c.cache.Load(ctx)
	cached := snap.Items
	if out.OK() && !s.opts.KeepStale {
		// the store answered; cached copies of records it no longer has
		// must not come back
		cached = nil
	}

	static := c.static()
	merged := reconcile.Compose(c.keyOf, remote, cached, static)

	if !live.alive() {
		return chainResult[T]{}, discarded(ctx)
	}
	if err := c.cache.Save(ctx, merged, out.OK()); err != nil {
		s.logger.Warn("failed to write cache",
			slog.String("key", c.cache.Key()),
			slog.String("error", err.Error()),
		)
	}

	return chainResult[T]{
		items:    merged,
		remote:   len(remote),
		cached:   len(cached),
		static:   len(static),
		degraded: out.Degraded(),
	}, nil
}

func (s *CatalogService) projectSource() fallback.Source[model.Project] {
	return &fallback.FuncSource[model.Project]{
		SourceName: s.store.Name(),
		Ready:      s.store.Configured(),
		Fetch: func(ctx context.Context) ([]model.Project, error) {
			return s.store.Projects().List(ctx)
		},
	}
}

func (s *CatalogService) certificateSource(filter repository.CertificateFilter) fallback.Source[model.Certificate] {
	return &fallback.FuncSource[model.Certificate]{
		SourceName: s.store.Name(),
		Ready:      s.store.Configured(),
		Fetch: func(ctx context.Context) ([]model.Certificate, error) {
			return s.store.Certificates().List(ctx, filter)
		},
	}
}

// Certificates loads the catalog and keeps the certificates in category.
// An empty category keeps everything.
func (s *CatalogService) Certificates(ctx context.Context, category string) ([]model.Certificate, error) {
	cat, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return cat.Certificates, nil
	}
	out := make([]model.Certificate, 0, len(cat.Certificates))
	for _, c := range cat.Certificates {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out, nil
}

// Project looks one project up: the store first, then the cached and
// bundled records.
func (s *CatalogService) Project(ctx context.Context, id string) (*model.Project, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "project ID is required")
	}

	remote := &fallback.FuncSource[model.Project]{
		SourceName: s.store.Name(),
		Ready:      s.store.Configured(),
		Fetch: func(ctx context.Context) ([]model.Project, error) {
			p, err := s.store.Projects().GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return []model.Project{*p}, nil
		},
	}
	local := fallback.FromFunc("local", func(ctx context.Context) ([]model.Project, error) {
		all := reconcile.Compose(reconcile.ProjectKey,
			s.projectCache.Load(ctx).Items,
			s.static.Projects(),
		)
		for _, p := range all {
			if p.ID == id {
				return []model.Project{p}, nil
			}
		}
		return nil, apperror.NotFound("project", id)
	})

	out := s.projectChain.Run(ctx, remote, local)
	if len(out.Records) == 0 {
		return nil, apperror.NotFound("project", id)
	}
	return &out.Records[0], nil
}

// Stats loads the catalog and summarizes it.
func (s *CatalogService) Stats(ctx context.Context) (*Stats, error) {
	cat, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalProjects:     cat.Counts.TotalProjects,
		TotalCertificates: cat.Counts.TotalCertificates,
		YearsExperience:   YearsOfExperience(s.opts.CareerStart, s.now()),
		Degraded:          cat.Degraded,
	}, nil
}

// YearsOfExperience counts whole years from start to today. The current
// year only counts once its anniversary has been reached. Never negative.
func YearsOfExperience(start, today time.Time) int {
	if start.IsZero() {
		return 0
	}
	years := today.Year() - start.Year()
	if today.Month() < start.Month() ||
		(today.Month() == start.Month() && today.Day() < start.Day()) {
		years--
	}
	return max(years, 0)
}

// Refresh reloads the catalog after a mutation so the cache reflects it.
// It runs detached from ctx's cancellation; a client that hangs up right
// after a successful write should still get the cache refreshed.
func (s *CatalogService) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
	defer cancel()

	if _, err := s.Load(ctx); err != nil {
		s.logger.Warn("catalog refresh failed", slog.String("error", err.Error()))
	}
}
