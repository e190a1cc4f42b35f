package annotation

import (
	"context"
	"sort"

	"github.com/yumyai/emgapi/pkg/model"
)

// ChildrenOf walks the organism tree by name: it finds the organisms with
// the given lineage and returns every organism that lists one of their
// names among its ancestors, plus the named organisms themselves. Taxonomy
// uses flat ancestor lists, not intervals.
func (r *Resolver) ChildrenOf(ctx context.Context, lineage string, w model.Window) (model.Page[model.Organism], error) {
	lineage, err := model.UnquoteLineage(lineage)
	if err != nil {
		return model.Page[model.Organism]{}, err
	}

	anchors, err := r.docs.Lookup(Organisms, FieldLineage, lineage)
	if err != nil {
		return model.Page[model.Organism]{}, err
	}
	if len(anchors) == 0 {
		return model.Page[model.Organism]{}, model.NotFound("organism", lineage)
	}

	names := make([]string, 0, len(anchors))
	seenName := make(map[string]bool, len(anchors))
	for _, id := range anchors {
		var org model.Organism
		ok, err := r.docs.Get(Organisms, id, &org)
		if err != nil {
			return model.Page[model.Organism]{}, err
		}
		if ok && org.Name != "" && !seenName[org.Name] {
			seenName[org.Name] = true
			names = append(names, org.Name)
		}
	}

	seen := make(map[string]bool)
	var ids []string
	for _, name := range names {
		for _, field := range []string{FieldAncestors, FieldName} {
			found, err := r.docs.Lookup(Organisms, field, name)
			if err != nil {
				return model.Page[model.Organism]{}, err
			}
			for _, id := range found {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}

	orgs := make([]model.Organism, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return model.Page[model.Organism]{}, err
		}
		var org model.Organism
		ok, err := r.docs.Get(Organisms, id, &org)
		if err != nil {
			return model.Page[model.Organism]{}, err
		}
		if ok {
			orgs = append(orgs, org)
		}
	}

	sort.SliceStable(orgs, func(i, j int) bool {
		if orgs[i].Lineage != orgs[j].Lineage {
			return orgs[i].Lineage < orgs[j].Lineage
		}
		return orgs[i].PipelineVersion < orgs[j].PipelineVersion
	})
	return model.Slice(orgs, w), nil
}
