package pipeline

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/discograph/pkg/annotation"
)

// Progress is called after each document of a corpus run finishes, with the
// number of documents done so far. It may be called from several goroutines.
type Progress func(done, total int)

// RunCorpus executes the pipeline on every document, at most opts.Workers at
// a time. Each document is owned by a single goroutine from build to render.
// The first failure cancels the remaining documents and is returned.
//
// Results are in the order of docs.
func (r *Runner) RunCorpus(ctx context.Context, docs []*annotation.Document, opts Options, progress Progress) ([]*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	results := make([]*Result, len(docs))
	var done atomic.Int64

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for i, doc := range docs {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			res, err := r.Execute(egctx, doc, opts)
			if err != nil {
				return err
			}
			results[i] = res
			if progress != nil {
				progress(int(done.Add(1)), len(docs))
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	opts.Logger.Info("processed corpus", "documents", len(docs), "workers", opts.Workers)
	return results, nil
}
