package services

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sarenasr/Rappi-Dashboard/internal/analytics/summary"
	"github.com/sarenasr/Rappi-Dashboard/internal/cache"
	"github.com/sarenasr/Rappi-Dashboard/internal/config"
	"github.com/sarenasr/Rappi-Dashboard/internal/engine"
	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
	"github.com/sarenasr/Rappi-Dashboard/internal/queue"
	"github.com/sarenasr/Rappi-Dashboard/internal/series"
	"github.com/sarenasr/Rappi-Dashboard/internal/utils"
)

// Snapshot is one loaded dataset. It is never modified once installed.
type Snapshot struct {
	Engine     *engine.Engine
	Generation uint64 // local load counter
	Version    uint64 // fingerprint of the samples and location
	Source     string
	Rows       int
	Skipped    int
	LoadedAt   time.Time
}

// Store returns the snapshot's store
func (s *Snapshot) Store() *series.Store {
	return s.Engine.Store()
}

// DatasetService owns the current dataset. Reloads build a new store off to
// the side and swap it in atomically, so readers always see one consistent
// snapshot.
type DatasetService struct {
	logger     *logging.Logger
	cfg        config.DatasetConfig
	limits     summary.Limits
	cache      cache.Cache
	queue      queue.Queue
	subject    string
	instanceID string

	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
	loadMu     sync.Mutex

	stop      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// DatasetOption configures a DatasetService
type DatasetOption func(*DatasetService)

// WithInstanceID sets the id this instance publishes reload events under.
// Without it a random UUID is used.
func WithInstanceID(id string) DatasetOption {
	return func(s *DatasetService) {
		if id != "" {
			s.instanceID = id
		}
	}
}

// NewDatasetService creates a dataset service. c and q may be nil; without a
// queue reloads stay local.
func NewDatasetService(logger *logging.Logger, cfg config.DatasetConfig, limits summary.Limits,
	c cache.Cache, q queue.Queue, subject string, opts ...DatasetOption,
) *DatasetService {
	if c == nil {
		c = cache.Nop{}
	}
	if subject == "" {
		subject = utils.ReloadSubject
	}
	s := &DatasetService{
		logger:     logger,
		cfg:        cfg,
		limits:     limits,
		cache:      c,
		queue:      q,
		subject:    subject,
		instanceID: uuid.New().String(),
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InstanceID identifies this process on the reload bus
func (s *DatasetService) InstanceID() string {
	return s.instanceID
}

// Current returns the installed snapshot
func (s *DatasetService) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, NewServiceError(CodeDatasetNotLoaded, "Dataset has not been loaded")
	}
	return snap, nil
}

// Load reads the configured source and installs it without announcing it
func (s *DatasetService) Load(ctx context.Context) (*Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	startTime := time.Now()
	loc, err := s.cfg.Location()
	if err != nil {
		return nil, s.loadError("Invalid dataset timezone", err)
	}
	policy, err := series.ParseDuplicatePolicy(s.cfg.DuplicatePolicy)
	if err != nil {
		return nil, s.loadError("Invalid duplicate policy", err)
	}

	result, err := series.LoadCSVFile(s.cfg.Path)
	if err != nil {
		return nil, s.loadError("Failed to read dataset", err)
	}
	store, err := series.NewStore(result.Samples, loc, policy)
	if err != nil {
		return nil, s.loadError("Failed to build dataset", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, s.loadError("Reload cancelled", err)
	}

	snap := s.install(ctx, store, s.cfg.Path, result.Rows, result.Skipped)

	s.logger.Info("Dataset loaded",
		"source", snap.Source,
		"generation", snap.Generation,
		"samples", store.Len(),
		"skipped", result.Skipped,
		"duplicates", store.Duplicates(),
		"latency_ms", time.Since(startTime).Milliseconds())
	return snap, nil
}

// Install swaps in an already built store. Used by tools and tests that do
// not read from the configured path.
func (s *DatasetService) Install(ctx context.Context, store *series.Store, source string) *Snapshot {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.install(ctx, store, source, store.Len(), 0)
}

func (s *DatasetService) install(ctx context.Context, store *series.Store, source string, rows, skipped int) *Snapshot {
	snap := &Snapshot{
		Engine:     engine.New(store, s.limits),
		Generation: s.generation.Add(1),
		Version:    fingerprint(store),
		Source:     source,
		Rows:       rows,
		Skipped:    skipped,
		LoadedAt:   time.Now(),
	}
	s.current.Store(snap)

	if err := s.cache.Purge(ctx); err != nil {
		s.logger.Warn("Failed to purge view cache", "error", err)
	}
	return snap
}

func (s *DatasetService) loadError(message string, err error) *ServiceError {
	s.logger.Error(message, "path", s.cfg.Path, "error", err)
	return NewServiceErrorWithDetails(CodeReloadFailed, message, map[string]interface{}{
		"path":  s.cfg.Path,
		"error": err.Error(),
	})
}

// Reload loads the source and announces the new dataset to other instances
func (s *DatasetService) Reload(ctx context.Context) (*Snapshot, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, snap)
	return snap, nil
}

func (s *DatasetService) announce(ctx context.Context, snap *Snapshot) {
	if s.queue == nil {
		return
	}
	ev := queue.ReloadEvent{
		InstanceID: s.instanceID,
		Generation: snap.Generation,
		Samples:    snap.Store().Len(),
		ReloadedAt: snap.LoadedAt,
	}
	if first, last, ok := snap.Store().Span(); ok {
		ev.First, ev.Last = first, last
	}

	pubCtx, cancel := context.WithTimeout(ctx, utils.PublishTimeout)
	defer cancel()
	if err := queue.PublishReload(pubCtx, s.queue, s.subject, ev); err != nil {
		// the local swap already happened; peers catch up on their next reload
		s.logger.Warn("Failed to publish reload event", "subject", s.subject, "error", err)
		return
	}
	s.logger.Debug("Reload event published", "subject", s.subject, "generation", snap.Generation)
}

// Start subscribes to reload events from other instances and starts the
// periodic reload when one is configured
func (s *DatasetService) Start() error {
	var err error
	s.startOnce.Do(func() {
		if s.queue != nil {
			if err = queue.SubscribeReload(s.queue, s.subject, s.handleReloadEvent); err != nil {
				return
			}
		}
		if s.cfg.ReloadInterval > 0 {
			s.wg.Add(1)
			go s.reloadLoop(s.cfg.ReloadInterval)
		}
	})
	return err
}

func (s *DatasetService) handleReloadEvent(ev queue.ReloadEvent) error {
	if ev.InstanceID == s.instanceID {
		return nil
	}
	if cur := s.current.Load(); cur != nil && cur.LoadedAt.After(ev.ReloadedAt) {
		s.logger.Debug("Reload event older than current dataset, skipping",
			"from", ev.InstanceID, "reloaded_at", ev.ReloadedAt)
		return nil
	}

	s.logger.Info("Reload announced by peer", "from", ev.InstanceID, "peer_generation", ev.Generation)
	ctx, cancel := context.WithTimeout(context.Background(), utils.ReloadTimeout)
	defer cancel()
	if _, err := s.Load(ctx); err != nil {
		// acknowledged anyway: redelivering would fail the same way
		s.logger.Error("Peer-triggered reload failed", "error", err)
	}
	return nil
}

func (s *DatasetService) reloadLoop(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), utils.ReloadTimeout)
			if _, err := s.Load(ctx); err != nil {
				s.logger.Error("Periodic reload failed", "error", err)
			}
			cancel()
		}
	}
}

// Close stops the periodic reload and leaves the reload subject. The queue
// itself belongs to the caller.
func (s *DatasetService) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
		if s.queue != nil {
			if uerr := s.queue.Unsubscribe(s.subject); uerr != nil {
				s.logger.Debug("Unsubscribe from reload subject", "error", uerr)
			}
		}
	})
	return nil
}

// fingerprint hashes the location and every sample, so instances that
// loaded the same data agree on the version
func fingerprint(store *series.Store) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(store.Location().String()))
	var buf [16]byte
	for _, sm := range store.Series() {
		binary.LittleEndian.PutUint64(buf[:8], uint64(sm.Time.UnixNano()))
		binary.LittleEndian.PutUint64(buf[8:], uint64(sm.Value))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
