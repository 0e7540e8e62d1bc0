package process

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/depmatch/depgraph"
	"github.com/gnolang/depmatch/internal/corpus"
	"github.com/gnolang/depmatch/internal/metrics"
	"github.com/gnolang/depmatch/ruleset"
)

// Matcher finds mentions in a sentence. *ruleset.RuleSet implements it.
type Matcher interface {
	Match(s *depgraph.Sentence) ([]ruleset.Mention, error)
}

var _ Matcher = (*ruleset.RuleSet)(nil)

// Arg is one bound role of a record.
type Arg struct {
	Role  string `json:"role"`
	Index int    `json:"index"`
	Word  string `json:"word"`
}

// Record is a mention located in a corpus file.
type Record struct {
	ID          string `json:"id"`
	File        string `json:"file"`
	Sentence    string `json:"sentence"`
	Ordinal     int    `json:"ordinal"` // 0-based position of the sentence in File
	Rule        string `json:"rule"`
	Trigger     int    `json:"trigger"`
	TriggerWord string `json:"trigger_word"`
	Args        []Arg  `json:"args"` // sorted by role
	Text        string `json:"text"`

	// Words are the sentence tokens, kept for rendering.
	Words []string `json:"-"`
}

// Options tunes ProcessPaths.
type Options struct {
	// Workers bounds the number of files processed at once.
	// Zero means runtime.NumCPU().
	Workers int

	// Progress shows a progress bar on stderr.
	Progress bool

	// Metrics, when set, records sentence and mention counts.
	Metrics *metrics.Metrics

	// NewID generates record IDs. Defaults to a short random UUID.
	NewID func() string
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

func (o Options) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return fmt.Sprintf("m-%s", uuid.New().String()[:8])
}

// CollectFiles expands paths into the corpus files they name. Directories
// are walked recursively; files with unsupported extensions are skipped.
func CollectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}

		if !info.IsDir() {
			if corpus.Supported(path) {
				files = append(files, path)
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && corpus.Supported(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking %s: %w", path, err)
		}
	}
	return files, nil
}

// ProcessPaths matches every sentence of every corpus file under paths.
// Files are processed concurrently; the first error cancels the rest.
// Records are sorted by file, sentence, trigger and rule.
func ProcessPaths(
	ctx context.Context,
	logger *zap.Logger,
	m Matcher,
	paths []string,
	opts Options,
) ([]Record, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	files, err := CollectFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Collected corpus files", zap.Int("files", len(files)))

	var bar *progressbar.ProgressBar
	if opts.Progress && len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("matching"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	var (
		mu      sync.Mutex
		records []Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for _, file := range files {
		file := file
		g.Go(func() error {
			fileRecords, err := ProcessFile(gctx, m, file, opts)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
				return err
			}

			mu.Lock()
			records = append(records, fileRecords...)
			mu.Unlock()

			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	SortRecords(records)
	return records, nil
}

// ProcessFile reads one corpus file and matches each of its sentences.
func ProcessFile(ctx context.Context, m Matcher, path string, opts Options) ([]Record, error) {
	start := time.Now()
	sentences, err := corpus.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []Record
	for i, s := range sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mentions, err := m.Match(s)
		if err != nil {
			return nil, err
		}
		opts.Metrics.ObserveSentence()

		for _, mention := range mentions {
			opts.Metrics.ObserveMention(mention.Rule)
			records = append(records, newRecord(opts.newID(), path, i, s, mention))
		}
	}

	opts.Metrics.ObserveFile(time.Since(start).Seconds())
	return records, nil
}

func newRecord(id, file string, ordinal int, s *depgraph.Sentence, mention ruleset.Mention) Record {
	args := make([]Arg, 0, len(mention.Args))
	for role, idx := range mention.Args {
		args = append(args, Arg{Role: role, Index: idx, Word: s.Word(idx)})
	}
	sort.Slice(args, func(i, j int) bool { return args[i].Role < args[j].Role })

	return Record{
		ID:          id,
		File:        file,
		Sentence:    s.ID,
		Ordinal:     ordinal,
		Rule:        mention.Rule,
		Trigger:     mention.Trigger,
		TriggerWord: s.Word(mention.Trigger),
		Args:        args,
		Text:        strings.Join(s.Words, " "),
		Words:       s.Words,
	}
}

// SortRecords orders records by file, sentence ordinal, trigger index,
// then rule name.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Ordinal != b.Ordinal {
			return a.Ordinal < b.Ordinal
		}
		if a.Trigger != b.Trigger {
			return a.Trigger < b.Trigger
		}
		return a.Rule < b.Rule
	})
}
