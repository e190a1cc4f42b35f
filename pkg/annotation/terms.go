package annotation

import (
	"context"
	"encoding/json"

	"github.com/yumyai/emgapi/pkg/model"
)

// Terms lists the documents of the kind's term collection in accession
// order. Only documents inside the window are decoded; the rest are
// counted.
func (r *Resolver) Terms(ctx context.Context, kind Kind, w model.Window) (model.Page[model.Term], error) {
	if err := ctx.Err(); err != nil {
		return model.Page[model.Term]{}, err
	}

	page := model.EmptyPage[model.Term]()
	err := r.docs.Scan(kind.TermCollection, func(id string, raw []byte) error {
		i := page.Count
		page.Count++
		if i < w.Offset || (w.Bounded() && i >= w.Offset+w.Limit) {
			return nil
		}

		if kind.Taxonomy() {
			var org model.Organism
			if err := json.Unmarshal(raw, &org); err != nil {
				return model.DocumentError("decode "+id, err)
			}
			page.Items = append(page.Items, organismTerm(id, org))
			return nil
		}

		var term model.Term
		if err := json.Unmarshal(raw, &term); err != nil {
			return model.DocumentError("decode "+id, err)
		}
		if term.Accession == "" {
			term.Accession = id
		}
		page.Items = append(page.Items, term)
		return nil
	})
	if err != nil {
		return model.Page[model.Term]{}, err
	}
	return page, nil
}
