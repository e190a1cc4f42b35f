package annotation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yumyai/emgapi/pkg/model"
)

// KindCount is the number of annotations of one kind on an analysis.
type KindCount struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
	// false when no set document exists yet
	Annotated bool `json:"annotated"`
}

// Summary counts the annotations of every kind applicable to the analysis.
// The per-kind lookups share nothing and run in parallel; one failure fails
// the whole summary.
func (r *Resolver) Summary(ctx context.Context, accession, version string) (model.Analysis, []KindCount, error) {
	a, err := r.Analysis(ctx, accession, version)
	if err != nil {
		return model.Analysis{}, nil, err
	}

	applicable := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		if !k.Excludes(a.ExperimentType) {
			applicable = append(applicable, k)
		}
	}

	counts := make([]KindCount, len(applicable))
	g, ctx := errgroup.WithContext(ctx)
	for i, k := range applicable {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			set, ok, err := r.set(k.SetCollection, a.JobID, version)
			if err != nil {
				return err
			}
			counts[i] = KindCount{Kind: k.Name, Count: len(set.Lists[k.List]), Annotated: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.Analysis{}, nil, err
	}
	return a, counts, nil
}
