package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/quietfield/chatlens/analysis/provider"
	"github.com/quietfield/chatlens/analysis/store"
)

// Options configures a Pipeline. Zero values fall back to defaults.
type Options struct {
	// SentimentConcurrency bounds in-flight sentiment calls per run.
	SentimentConcurrency int

	// AliasPool overrides the built-in alias vocabulary.
	AliasPool *AliasPool

	Logger *zap.Logger
}

// Pipeline runs the full transcript analysis: parse, anonymize, aggregate,
// score sentiment, generate insights, cache. Concurrent runs over identical
// input bytes are coalesced into one computation.
type Pipeline struct {
	model provider.Client
	cache store.Store
	opts  Options
	log   *zap.Logger
	runs  singleflight.Group
}

// New builds a Pipeline over the given model client and cache store.
func New(model provider.Client, cache store.Store, opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.SentimentConcurrency <= 0 {
		opts.SentimentConcurrency = defaultSentimentConcurrency
	}
	return &Pipeline{model: model, cache: cache, opts: opts, log: log}
}

// Fingerprint returns the hex SHA-256 of the raw transcript bytes. Identical
// bytes always map to the same cache entry.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Analyze returns the analysis of raw, serving from cache when a current
// entry exists. On a miss the result is computed and written back before
// returning. Returns *ParseError when no messages can be parsed.
func (p *Pipeline) Analyze(ctx context.Context, raw []byte) (*AnalysisResult, error) {
	fp := Fingerprint(raw)
	log := p.log.With(
		zap.String("fingerprint", fp[:12]),
		zap.String("run_id", uuid.NewString()),
	)

	if res, ok := p.cacheGet(ctx, fp, log); ok {
		log.Info("cache hit")
		return res, nil
	}

	// The computation survives its initiating request so that coalesced
	// followers, and the cache, still get the result.
	v, err, shared := p.runs.Do(fp, func() (any, error) {
		return p.compute(context.WithoutCancel(ctx), fp, raw, log)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Info("joined in-flight run")
	}
	return v.(*AnalysisResult), nil
}

func (p *Pipeline) compute(ctx context.Context, fp string, raw []byte, log *zap.Logger) (*AnalysisResult, error) {
	// A follower that lost the singleflight race may arrive after the
	// winner already populated the cache.
	if res, ok := p.cacheGet(ctx, fp, log); ok {
		return res, nil
	}

	start := time.Now()

	records := Parse(string(raw))
	if len(records) == 0 {
		return nil, &ParseError{Reason: "no messages could be parsed from the transcript"}
	}

	var pool AliasPool
	if p.opts.AliasPool != nil {
		pool = *p.opts.AliasPool
	}
	records, aliases := Anonymize(records, pool)
	buckets := GroupByDay(records)

	res := &AnalysisResult{
		ActivityByDate:  ActivityByDate(records),
		WordCloudData:   WordCloud(records),
		EmojiStats:      EmojiStats(records),
		MostActiveUsers: TopContributors(records),
		ViralMessages:   ViralMessages(records),
		SharedLinks:     SharedLinks(records),
		MediaStats:      BuildMediaStats(records),
	}

	log.Info("aggregation done",
		zap.Int("messages", len(records)),
		zap.Int("days", len(buckets)),
		zap.Int("participants", aliases.Len()),
	)

	res.SentimentOverTime = ScoreSentiment(ctx, p.model, buckets, p.opts.SentimentConcurrency, log)
	res.HappiestDay, res.SaddestDay = MoodExtremes(res.SentimentOverTime, buckets)

	ins := GenerateInsights(ctx, p.model, records, res.MostActiveUsers, res.WordCloudData, log)
	res.MessageCategories = ins.Categories
	res.HolidayGreeting = ins.HolidayGreeting
	res.Poem = ins.Poem
	res.MemorableMoments = ins.MemorableMoments

	p.cachePut(ctx, fp, res, log)

	log.Info("analysis done", zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// cacheGet treats every failure mode as a miss: a read error is logged, a
// stale schema version or corrupt payload is silently recomputed.
func (p *Pipeline) cacheGet(ctx context.Context, fp string, log *zap.Logger) (*AnalysisResult, bool) {
	payload, version, ok, err := p.cache.Get(ctx, fp)
	if err != nil {
		log.Warn("cache read failed", zap.Error(err))
		return nil, false
	}
	if !ok || version != ResultSchemaVersion {
		return nil, false
	}
	var res AnalysisResult
	if err := json.Unmarshal(payload, &res); err != nil {
		log.Warn("cache entry corrupt, recomputing", zap.Error(err))
		return nil, false
	}
	return &res, true
}

func (p *Pipeline) cachePut(ctx context.Context, fp string, res *AnalysisResult, log *zap.Logger) {
	payload, err := json.Marshal(res)
	if err != nil {
		log.Warn("cache write skipped", zap.Error(err))
		return
	}
	if err := p.cache.Put(ctx, fp, ResultSchemaVersion, payload); err != nil {
		log.Warn("cache write failed", zap.Error(err))
	}
}
