// Package batch runs a directory of audio files through the engines,
// writing transcripts and recording history.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	"speechbench/internal/app/cache"
	"speechbench/internal/app/engine"
	"speechbench/internal/app/intake"
	"speechbench/internal/app/orchestrator"
	"speechbench/internal/app/repository"
	"speechbench/internal/app/storage"
)

// Runner drives a batch transcription pass.
type Runner struct {
	orch    *orchestrator.Orchestrator
	history repository.HistoryDAO
	cache   *cache.ResultCache
	archive *storage.Archive
	logger  *zap.Logger
}

// NewRunner creates a batch runner. history, cache and archive may be nil.
func NewRunner(orch *orchestrator.Orchestrator, history repository.HistoryDAO,
	resultCache *cache.ResultCache, archive *storage.Archive, logger *zap.Logger) *Runner {
	return &Runner{orch: orch, history: history, cache: resultCache,
		archive: archive, logger: logger}
}

// Summary reports what a batch run did.
type Summary struct {
	Files     int
	Succeeded int
	Failed    int
	CacheHits int
}

// Run transcribes every supported audio file directly under inputDir with
// the engines mode selects, writing one transcript per file and engine into
// outputDir. A failing file never stops the batch.
func (r *Runner) Run(ctx context.Context, inputDir, outputDir, language string, mode engine.Mode) (*Summary, error) {
	files, err := listAudioFiles(inputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no supported audio files in %s", inputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	progress := mpb.New(mpb.WithWidth(64))
	bar := progress.AddBar(int64(len(files)),
		mpb.PrependDecorators(
			decor.Name("transcribing ", decor.WC{W: len("transcribing "), C: decor.DindentRight}),
			decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	summary := &Summary{Files: len(files)}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			bar.Abort(false)
			progress.Wait()
			return summary, err
		}
		r.runFile(ctx, file, outputDir, language, mode, summary)
		bar.Increment()
	}
	progress.Wait()

	return summary, nil
}

func (r *Runner) runFile(ctx context.Context, path, outputDir, language string, mode engine.Mode, summary *Summary) {
	fileName := filepath.Base(path)

	audioHash := ""
	if r.cache != nil {
		h, err := cache.HashFile(path)
		if err != nil {
			r.logger.Warn("skipping cache for file", zap.String("file", fileName), zap.Error(err))
		} else {
			audioHash = h
		}
	}

	for _, name := range mode.Engines() {
		if audioHash != "" {
			if cached := r.cache.Get(ctx, audioHash, name, language); cached != nil {
				summary.CacheHits++
				summary.Succeeded++
				r.writeTranscript(outputDir, fileName, name, cached.Text)
				continue
			}
		}

		result, err := r.orch.Transcribe(ctx, name, path, language)
		if err != nil {
			summary.Failed++
			r.logger.Warn("batch file failed",
				zap.String("file", fileName),
				zap.String("engine", name),
				zap.Error(err))
			r.record(repository.RecordFromError(fileName, engine.AsError(err, name)))
			continue
		}

		summary.Succeeded++
		r.writeTranscript(outputDir, fileName, name, result.Text)
		r.record(repository.RecordFromResult(fileName, result))
		if audioHash != "" {
			r.cache.Put(ctx, audioHash, name, language, result)
		}
	}

	if r.archive != nil {
		if _, err := r.archive.Store(ctx, path); err != nil {
			r.logger.Warn("archive failed", zap.String("file", fileName), zap.Error(err))
		}
	}
}

func (r *Runner) writeTranscript(outputDir, fileName, engineName, text string) {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	outPath := filepath.Join(outputDir, fmt.Sprintf("%s.%s.txt", base, engineName))
	if err := os.WriteFile(outPath, []byte(text+"\n"), 0o644); err != nil {
		r.logger.Warn("failed to write transcript",
			zap.String("path", outPath), zap.Error(err))
	}
}

func (r *Runner) record(rec *repository.Record) {
	if r.history == nil {
		return
	}
	if err := r.history.Save(rec); err != nil {
		r.logger.Warn("failed to record history", zap.Error(err))
	}
}

func listAudioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !intake.AllowedExtension(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
