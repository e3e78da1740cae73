package curator

import (
	"context"
	"errors"

	"content-curator/pkg/content"
	"content-curator/pkg/domain"
	"content-curator/pkg/video"
)

// PlanAction is what Curate would do with a request.
type PlanAction string

const (
	PlanInsert    PlanAction = "would_insert"
	PlanDuplicate PlanAction = "duplicate"
	PlanInvalid   PlanAction = "invalid"
)

// Plan is the offline preview of a request.
type Plan struct {
	ID     string
	Kind   domain.ContentType
	Action PlanAction
	// Reason explains PlanInvalid.
	Reason string
}

// Plan derives the record id of req without any network access and checks it
// against the catalog. Only catalog errors are returned as errors.
func (c *Curator) Plan(ctx context.Context, req Request) (*Plan, error) {
	kind := req.Kind
	if kind == "" {
		kind = InferKind(req.URL)
	}
	plan := &Plan{Kind: kind}

	if _, err := domain.ParseLevel(req.Level); err != nil {
		plan.Action, plan.Reason = PlanInvalid, err.Error()
		return plan, nil
	}

	switch kind {
	case domain.ContentTypeVideoLink:
		id, err := video.ExtractID(req.URL)
		if err != nil {
			plan.Action, plan.Reason = PlanInvalid, err.Error()
			return plan, nil
		}
		plan.ID = id
	case domain.ContentTypeText:
		plan.ID = content.ContentID(req.URL)
	default:
		plan.Action, plan.Reason = PlanInvalid, "unknown content kind "+string(kind)
		return plan, nil
	}

	_, err := c.catalog.Get(ctx, plan.ID)
	switch {
	case err == nil:
		plan.Action = PlanDuplicate
	case errors.Is(err, domain.ErrNotFound):
		plan.Action = PlanInsert
	default:
		return nil, err
	}
	return plan, nil
}
