// Command promo-ingest loads partner promo codes into the promo_codes table.
// Marketing partners each publish a gzipped feed of the codes they have
// handed out; a code is only honored when enough independent feeds agree on
// it, which filters typos and codes fabricated by a single partner. Feeds are
// too large to hold in memory, so ingest streams each one twice: pass 1
// builds a bloom filter per feed, pass 2 keeps the codes whose presence
// reaches the quorum. Codes already curated by seed-db are left untouched.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/hausmart/storefront/internal/storage/postgres"
)

const (
	bloomFPR      = 0.001
	progressEvery = 1_000_000
	writeBatch    = 500

	// Partner codes follow the campaign format: 6 to 12 characters,
	// upper-case letters and digits only.
	minCodeLen = 6
	maxCodeLen = 12
)

type options struct {
	feedDir       string
	databaseURL   string
	quorum        int
	expectedCodes uint
	percentOff    int
}

func main() {
	var opts options

	flag.StringVar(&opts.feedDir, "feed-dir", "feeds", "directory of gzipped partner feeds (*.gz)")
	flag.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&opts.quorum, "quorum", 2, "feeds that must agree before a code is honored")
	flag.UintVar(&opts.expectedCodes, "expected-codes", 10_000_000, "estimated codes per feed, sizes the bloom filters")
	flag.IntVar(&opts.percentOff, "percent-off", 10, "discount granted to honored partner codes")
	flag.Parse()

	if opts.databaseURL == "" {
		opts.databaseURL = os.Getenv("DATABASE_URL")
	}
	if opts.databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		slog.Error("promo ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("promo ingest completed")
}

func run(ctx context.Context, opts options) error {
	feeds, err := discoverFeeds(opts.feedDir, opts.quorum)
	if err != nil {
		return err
	}

	slog.Info("pass 1: indexing feeds", slog.Int("feeds", len(feeds)))
	if err := indexFeeds(ctx, feeds, opts.expectedCodes); err != nil {
		return errors.Wrap(err, "index feeds")
	}

	slog.Info("pass 2: collecting codes at quorum", slog.Int("quorum", opts.quorum))
	codes, err := codesAtQuorum(ctx, feeds, opts.quorum)
	if err != nil {
		return errors.Wrap(err, "collect codes")
	}

	slog.Info("honored codes found", slog.Int("count", len(codes)))
	if len(codes) == 0 {
		return nil
	}

	pool, err := postgres.NewPool(ctx, opts.databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	return insertPartnerCodes(ctx, pool, codes, opts.percentOff)
}

// feed is one partner's gzipped code dump plus the state both passes build.
type feed struct {
	path string
	// filter answers "might this feed contain the code" for pass 2.
	filter *bloom.BloomFilter
	// candidates maps codes this feed actually contains, pre-filtered by the
	// other feeds' filters, to this feed's membership bit.
	candidates map[string]uint
}

func discoverFeeds(dir string, quorum int) ([]*feed, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.gz"))
	if err != nil {
		return nil, errors.Wrap(err, "glob feed dir")
	}
	if len(paths) < quorum {
		return nil, errors.Errorf("found %d feeds in %s, need at least %d for quorum", len(paths), dir, quorum)
	}

	feeds := make([]*feed, len(paths))
	for i, p := range paths {
		feeds[i] = &feed{path: p}
	}
	return feeds, nil
}

// indexFeeds builds one bloom filter per feed, streaming concurrently.
func indexFeeds(ctx context.Context, feeds []*feed, expectedCodes uint) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, f := range feeds {
		g.Go(func() error {
			f.filter = bloom.NewWithEstimates(expectedCodes, bloomFPR)
			var seen uint64

			err := f.stream(ctx, func(code string) {
				f.filter.AddString(code)
				seen++
				if seen%progressEvery == 0 {
					slog.Info("indexing", slog.String("feed", f.path), slog.Uint64("codes", seen))
				}
			})
			if err != nil {
				return errors.Wrapf(err, "index %s", f.path)
			}

			slog.Info("feed indexed", slog.String("feed", f.path), slog.Uint64("codes", seen))
			return nil
		})
	}
	return g.Wait()
}

// codesAtQuorum re-streams every feed, keeping codes whose filters suggest
// presence in at least quorum feeds, then confirms against the feeds' actual
// contents. Bloom false positives can only admit a candidate, never a final
// code, because the merged mask counts real memberships.
func codesAtQuorum(ctx context.Context, feeds []*feed, quorum int) ([]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range feeds {
		bit := uint(1) << uint(i)
		g.Go(func() error {
			f.candidates = make(map[string]uint)

			err := f.stream(ctx, func(code string) {
				likely := 1 // this feed
				for _, other := range feeds {
					if other != f && other.filter.TestString(code) {
						likely++
					}
				}
				if likely >= quorum {
					f.candidates[code] |= bit
				}
			})
			if err != nil {
				return errors.Wrapf(err, "scan %s", f.path)
			}

			slog.Info("feed scanned", slog.String("feed", f.path), slog.Int("candidates", len(f.candidates)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]uint)
	for _, f := range feeds {
		for code, bit := range f.candidates {
			merged[code] |= bit
		}
	}

	var honored []string
	for code, mask := range merged {
		if bits.OnesCount(mask) >= quorum {
			honored = append(honored, code)
		}
	}
	return honored, nil
}

// stream reads the gzipped feed line by line, passing well-formed codes to fn.
func (f *feed) stream(ctx context.Context, fn func(code string)) error {
	file, err := os.Open(f.path)
	if err != nil {
		return errors.Wrap(err, "open feed")
	}
	defer func() { _ = file.Close() }()

	gz, err := pgzip.NewReader(file)
	if err != nil {
		return errors.Wrap(err, "gzip reader")
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if code := scanner.Text(); wellFormedCode(code) {
			fn(code)
		}
	}
	return errors.Wrap(scanner.Err(), "scan feed")
}

func wellFormedCode(code string) bool {
	if len(code) < minCodeLen || len(code) > maxCodeLen {
		return false
	}
	for _, c := range code {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// insertPartnerCodes writes honored codes with the standard partner discount.
// DO NOTHING on conflict keeps curated codes from seed-db authoritative.
func insertPartnerCodes(ctx context.Context, pool *pgxpool.Pool, codes []string, percentOff int) error {
	const insertCode = `INSERT INTO promo_codes (code, discount_type, value, min_items, min_spend, description)
		VALUES ($1, 'percentage', $2, 0, 0, $3)
		ON CONFLICT (code) DO NOTHING`

	description := "Partner promo: " + strconv.Itoa(percentOff) + "% off"

	slog.Info("writing partner codes", slog.Int("count", len(codes)))

	for start := 0; start < len(codes); start += writeBatch {
		end := min(start+writeBatch, len(codes))

		batch := &pgx.Batch{}
		for _, code := range codes[start:end] {
			batch.Queue(insertCode, code, percentOff, description)
		}
		if err := pool.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrapf(err, "write codes %d..%d", start, end)
		}

		slog.Info("write progress", slog.Int("written", end), slog.Int("total", len(codes)))
	}
	return nil
}
