package scanner

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"meta-scanner/internal/meta"
	"meta-scanner/internal/riot"

	"github.com/bits-and-blooms/bloom/v3"
)

const (
	// Worker pool configuration
	DefaultWorkerCount = 5
	matchChannelBuffer = 100

	// DefaultTimelineSampling fetches the timeline for every match; build
	// paths and skill orders need it. Lower it to trade path coverage for
	// crawl speed.
	DefaultTimelineSampling = 1.0
)

// matchJob is a match ID waiting to be fetched by a worker.
type matchJob struct {
	matchID string
}

// matchResult is a fetched match handed to the single-threaded applier.
type matchResult struct {
	matchID  string
	match    *riot.MatchResponse
	timeline *riot.TimelineResponse
	err      error
}

// Config holds scanner configuration.
type Config struct {
	Tier             string
	Patch            string // when set, matches on other patches are skipped
	MatchesPerPlayer int
	MaxMatches       int
	WorkerCount      int
	TimelineSampling float64 // 0.0-1.0
}

// Scanner crawls ranked matches for one tier using a producer-consumer
// pattern: the producer walks the player queue and dispatches unseen match
// IDs, workers fetch match and timeline data, and a single applier goroutine
// folds results into the store. Keeping the applier single-threaded is what
// makes the store's read-merge-write bucket update safe.
type Scanner struct {
	source  MatchSource
	store   StatStore
	catalog meta.ItemCatalog
	names   ChampionNames

	tier             string
	patch            string
	matchesPerPlayer int
	maxMatches       int
	workerCount      int
	timelineSampling float64

	rngMu sync.Mutex
	rng   *rand.Rand

	// Bloom filters keep dedup memory flat across long crawls. A false
	// positive only costs a skipped match.
	visitedMatches *bloom.BloomFilter
	visitedPUUIDs  *bloom.BloomFilter
	matchesMu      sync.Mutex
	puuidsMu       sync.Mutex

	playerQueue   []string
	playerQueueMu sync.Mutex

	matchJobs chan matchJob
	results   chan matchResult

	// Stats (atomic for thread safety)
	dispatched     int64
	processed      int64
	skippedPatch   int64
	timelineFailed int64
	startTime      time.Time

	cancel context.CancelFunc
}

// New creates a scanner for one tier.
func New(source MatchSource, store StatStore, catalog meta.ItemCatalog, names ChampionNames, cfg Config) *Scanner {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	sampling := cfg.TimelineSampling
	if sampling <= 0 {
		sampling = DefaultTimelineSampling
	}
	if sampling > 1.0 {
		sampling = 1.0
	}

	return &Scanner{
		source:           source,
		store:            store,
		catalog:          catalog,
		names:            names,
		tier:             cfg.Tier,
		patch:            cfg.Patch,
		matchesPerPlayer: cfg.MatchesPerPlayer,
		maxMatches:       cfg.MaxMatches,
		workerCount:      cfg.WorkerCount,
		timelineSampling: sampling,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
		visitedMatches:   bloom.NewWithEstimates(500000, 0.001),
		visitedPUUIDs:    bloom.NewWithEstimates(1000000, 0.001),
		playerQueue:      make([]string, 0, 1000),
		matchJobs:        make(chan matchJob, matchChannelBuffer),
		results:          make(chan matchResult, matchChannelBuffer),
	}
}

// Run seeds the player queue from the tier's league and crawls until the
// match budget is reached, the queue drains, or the context is cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()
	s.startTime = time.Now()

	seeds, err := s.source.GetLeaguePUUIDs(ctx, s.tier)
	if err != nil {
		return err
	}
	log.Printf("[Scanner] Seeded %d players from %s league", len(seeds), s.tier)
	for _, puuid := range seeds {
		s.markPUUIDVisited(puuid)
		s.addPlayer(puuid)
	}

	var workerWG sync.WaitGroup
	for i := 0; i < s.workerCount; i++ {
		workerWG.Add(1)
		go s.worker(ctx, &workerWG)
	}

	applierDone := make(chan struct{})
	go func() {
		defer close(applierDone)
		s.applyResults(ctx)
	}()

	s.producerLoop(ctx)

	close(s.matchJobs)
	workerWG.Wait()
	close(s.results)
	<-applierDone

	s.printSummary()
	return nil
}

// producerLoop walks the player queue and dispatches unseen match IDs.
func (s *Scanner) producerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if s.budgetReached() {
			return
		}

		puuid := s.popPlayer()
		if puuid == "" {
			// Queue empty; wait for the applier to snowball new players.
			time.Sleep(100 * time.Millisecond)
			if s.isQueueEmpty() && len(s.matchJobs) == 0 && s.inFlight() == 0 {
				return
			}
			continue
		}

		matchIDs, err := s.source.GetMatchHistory(ctx, puuid, s.matchesPerPlayer)
		if err != nil {
			if riot.IsAPIKeyError(err) {
				log.Printf("[Producer] API key unusable, stopping crawl: %v", err)
				s.cancel()
				return
			}
			log.Printf("[Producer] Failed to fetch match history for %s: %v", shortID(puuid), err)
			continue
		}

		for _, matchID := range matchIDs {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if s.hasVisitedMatch(matchID) {
				continue
			}
			s.markMatchVisited(matchID)

			scanned, err := s.store.IsScanned(ctx, matchID)
			if err != nil {
				log.Printf("[Producer] Scanned-ledger check failed for %s: %v", matchID, err)
				continue
			}
			if scanned {
				continue
			}

			atomic.AddInt64(&s.dispatched, 1)
			select {
			case s.matchJobs <- matchJob{matchID: matchID}:
			case <-ctx.Done():
				atomic.AddInt64(&s.dispatched, -1)
				return
			}
		}
	}
}

// worker fetches match and timeline data for dispatched jobs.
func (s *Scanner) worker(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.matchJobs:
			if !ok {
				return
			}

			result := s.fetchMatch(ctx, job)

			select {
			case s.results <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Scanner) fetchMatch(ctx context.Context, job matchJob) matchResult {
	result := matchResult{matchID: job.matchID}

	match, err := s.source.GetMatch(ctx, job.matchID)
	if err != nil {
		result.err = err
		return result
	}
	result.match = match

	if s.patch != "" && riot.NormalizePatch(match.Info.GameVersion) != s.patch {
		result.match = nil
		atomic.AddInt64(&s.skippedPatch, 1)
		return result
	}

	if s.shouldFetchTimeline() {
		timeline, err := s.source.GetTimeline(ctx, job.matchID)
		if err != nil {
			// Degrade instead of dropping the match: summary stats still count.
			log.Printf("[Worker] Timeline fetch failed for %s: %v", job.matchID, err)
			atomic.AddInt64(&s.timelineFailed, 1)
		} else {
			result.timeline = timeline
		}
	}

	return result
}

func (s *Scanner) shouldFetchTimeline() bool {
	if s.timelineSampling >= 1.0 {
		return true
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Float64() < s.timelineSampling
}

// applyResults is the single writer: it folds fetched matches into the store
// one at a time and snowballs newly seen players back into the queue.
func (s *Scanner) applyResults(ctx context.Context) {
	// Store writes run under a context that survives cancellation: a stop
	// signal mid-match would otherwise abort ProcessMatch after some
	// participants were already upserted, leave the match unmarked, and let
	// the next run double-count it. The stop is honored between matches.
	storeCtx := context.WithoutCancel(ctx)

	for result := range s.results {
		atomic.AddInt64(&s.dispatched, -1)

		if result.err != nil {
			if riot.IsAPIKeyError(result.err) {
				log.Printf("[Applier] API key unusable, stopping crawl: %v", result.err)
				s.cancel()
				return
			}
			log.Printf("[Applier] Failed to fetch %s: %v", result.matchID, result.err)
			continue
		}
		if result.match == nil {
			continue // off-patch
		}

		if err := s.ProcessMatch(storeCtx, result.match, result.timeline); err != nil {
			log.Printf("[Applier] Failed to process %s: %v", result.matchID, err)
			continue
		}

		for _, p := range result.match.Info.Participants {
			if !s.hasVisitedPUUID(p.PUUID) {
				s.markPUUIDVisited(p.PUUID)
				s.addPlayer(p.PUUID)
			}
		}

		n := atomic.AddInt64(&s.processed, 1)
		if n%50 == 0 {
			elapsed := time.Since(s.startTime).Round(time.Second)
			log.Printf("[Scanner] %d matches processed (%s elapsed, queue %d players)", n, elapsed, s.queueLen())
		}
		if s.budgetReached() {
			s.cancel()
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (s *Scanner) budgetReached() bool {
	return s.maxMatches > 0 && atomic.LoadInt64(&s.processed) >= int64(s.maxMatches)
}

func (s *Scanner) inFlight() int64 {
	return atomic.LoadInt64(&s.dispatched)
}

// Processed returns the number of matches folded into the store.
func (s *Scanner) Processed() int64 {
	return atomic.LoadInt64(&s.processed)
}

func (s *Scanner) printSummary() {
	elapsed := time.Since(s.startTime).Round(time.Second)
	log.Printf("[Scanner] Done: %d matches processed in %s (%d off-patch, %d timeline failures)",
		atomic.LoadInt64(&s.processed), elapsed,
		atomic.LoadInt64(&s.skippedPatch), atomic.LoadInt64(&s.timelineFailed))
}

func (s *Scanner) addPlayer(puuid string) {
	s.playerQueueMu.Lock()
	defer s.playerQueueMu.Unlock()
	s.playerQueue = append(s.playerQueue, puuid)
}

func (s *Scanner) popPlayer() string {
	s.playerQueueMu.Lock()
	defer s.playerQueueMu.Unlock()
	if len(s.playerQueue) == 0 {
		return ""
	}
	puuid := s.playerQueue[0]
	s.playerQueue = s.playerQueue[1:]
	return puuid
}

func (s *Scanner) isQueueEmpty() bool {
	s.playerQueueMu.Lock()
	defer s.playerQueueMu.Unlock()
	return len(s.playerQueue) == 0
}

func (s *Scanner) queueLen() int {
	s.playerQueueMu.Lock()
	defer s.playerQueueMu.Unlock()
	return len(s.playerQueue)
}

func (s *Scanner) hasVisitedMatch(matchID string) bool {
	s.matchesMu.Lock()
	defer s.matchesMu.Unlock()
	return s.visitedMatches.TestString(matchID)
}

func (s *Scanner) markMatchVisited(matchID string) {
	s.matchesMu.Lock()
	defer s.matchesMu.Unlock()
	s.visitedMatches.AddString(matchID)
}

func (s *Scanner) hasVisitedPUUID(puuid string) bool {
	s.puuidsMu.Lock()
	defer s.puuidsMu.Unlock()
	return s.visitedPUUIDs.TestString(puuid)
}

func (s *Scanner) markPUUIDVisited(puuid string) {
	s.puuidsMu.Lock()
	defer s.puuidsMu.Unlock()
	s.visitedPUUIDs.AddString(puuid)
}

func shortID(id string) string {
	if len(id) > 16 {
		return id[:16]
	}
	return id
}
