package pipeline

import (
	"cmp"
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/discograph/pkg/annotation"
	"github.com/matzehuels/discograph/pkg/errors"
	"github.com/matzehuels/discograph/pkg/hypergraph"
)

// Severity grades a check issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one annotation problem found by [Runner.Check].
type Issue struct {
	Doc      annotation.DocKey `json:"doc"`
	Unit     string            `json:"unit,omitempty"`
	Code     errors.Code       `json:"code"`
	Severity Severity          `json:"severity"`
	Message  string            `json:"message"`
}

func (i Issue) String() string {
	if i.Unit == "" {
		return fmt.Sprintf("%s: %s: %s", i.Doc, i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s: %s", i.Doc, i.Unit, i.Severity, i.Message)
}

// Check builds every document and reports what would stop or distort CDU
// elimination: documents that fail to build, multiheaded CDUs (errors in
// strict mode only), cyclic CDU nesting and CDUs without a head.
//
// Unlike [Runner.RunCorpus], Check does not stop at the first bad document.
// Issues are sorted by document and unit. The returned error is only set
// when ctx is cancelled.
func (r *Runner) Check(ctx context.Context, docs []*annotation.Document, opts Options) ([]Issue, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		issues []Issue
	)
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for _, doc := range docs {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			found := r.checkDocument(egctx, doc, opts.Sloppy)
			mu.Lock()
			issues = append(issues, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(issues, func(a, b Issue) int {
		if c := cmp.Compare(a.Doc.String(), b.Doc.String()); c != 0 {
			return c
		}
		return cmp.Compare(a.Unit, b.Unit)
	})
	opts.Logger.Info("checked corpus", "documents", len(docs), "issues", len(issues))
	return issues, nil
}

func (r *Runner) checkDocument(ctx context.Context, doc *annotation.Document, sloppy bool) []Issue {
	g, err := r.Build(ctx, doc)
	if err != nil {
		return []Issue{newIssue(doc.Key, "", err, SeverityError)}
	}

	var issues []Issue
	if err := g.CheckConsistency(); err != nil {
		issues = append(issues, newIssue(doc.Key, "", errors.Wrap(errors.ErrCodeInternal, err, "inconsistent graph"), SeverityError))
	}

	cyclic := make(map[string]bool)
	for _, c := range g.CDUs() {
		if cyclic[c] {
			continue
		}
		_, ok, err := g.RecursiveCDUHead(c, sloppy)
		var cyc *hypergraph.CyclicNestingError
		if stderrors.As(err, &cyc) {
			for _, id := range cyc.Path {
				cyclic[id] = true
			}
			issues = append(issues, newIssue(doc.Key, c, err, SeverityError))
			continue
		}
		if err == nil && !ok {
			issues = append(issues, Issue{
				Doc:      doc.Key,
				Unit:     c,
				Code:     errors.ErrCodeInvalidDocument,
				Severity: SeverityWarning,
				Message:  "CDU has no head",
			})
		}

		_, _, err = g.CDUHead(c, false)
		var multi *hypergraph.MultiheadedCDUError
		if stderrors.As(err, &multi) {
			sev := SeverityError
			if sloppy {
				sev = SeverityWarning
			}
			issues = append(issues, newIssue(doc.Key, c, err, sev))
		}
	}
	return issues
}

func newIssue(key annotation.DocKey, unit string, err error, sev Severity) Issue {
	err = errors.Classify(err)
	msg := errors.UserMessage(err)
	var coded *errors.Error
	if stderrors.As(err, &coded) && coded.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, coded.Cause)
	}
	return Issue{
		Doc:      key,
		Unit:     unit,
		Code:     errors.GetCode(err),
		Severity: sev,
		Message:  msg,
	}
}
