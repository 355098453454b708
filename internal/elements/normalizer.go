package elements

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-maps/internal/logging"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

const textRenderFailedCode = "MAPS_TEXT_RENDER_FAILED"

// ShapeCollections lists the parameters holding drawable shapes, in the
// order they are normalized.
var ShapeCollections = []string{"lines", "polygons", "circles", "rectangles", "imageoverlays"}

// Normalizer turns markers and shapes into records whose title and text went
// through the content renderer.
type Normalizer struct {
	renderer interfaces.ContentRenderer
	files    interfaces.FileResolver
	logger   interfaces.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithFileResolver resolves per-marker icon references.
func WithFileResolver(files interfaces.FileResolver) Option {
	return func(n *Normalizer) {
		if files != nil {
			n.files = files
		}
	}
}

// WithLogger attaches the logger used for skipped items.
func WithLogger(logger interfaces.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNormalizer builds a normalizer rendering text with renderer.
func NewNormalizer(renderer interfaces.ContentRenderer, opts ...Option) *Normalizer {
	n := &Normalizer{
		renderer: renderer,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Shapes replaces every shape collection in params with normalized records.
// Collections that are absent or not slices are left untouched.
func (n *Normalizer) Shapes(ctx context.Context, snapshot interfaces.RenderSnapshot, params map[string]any) error {
	for _, key := range ShapeCollections {
		items, ok := Items(params[key])
		if !ok {
			continue
		}
		records := make([]Record, 0, len(items))
		for idx, item := range items {
			rec, ok := ToRecord(item)
			if !ok {
				n.logger.Debug("maps.elements.shape_skipped", "collection", key, "index", idx, "type", fmt.Sprintf("%T", item))
				continue
			}
			if err := n.finish(ctx, snapshot, rec); err != nil {
				return err
			}
			records = append(records, rec)
		}
		params[key] = records
	}
	return nil
}

// Locations normalizes markers. Per-marker icons are resolved, the inline
// label is rendered and reduced to anchors and images.
func (n *Normalizer) Locations(ctx context.Context, snapshot interfaces.RenderSnapshot, locations []Location, defaults MarkerDefaults) ([]Record, error) {
	out := make([]Record, 0, len(locations))
	for _, loc := range locations {
		var err error
		if loc.Icon, err = n.fileURL(ctx, loc.Icon); err != nil {
			return nil, err
		}
		if loc.VisitedIcon, err = n.fileURL(ctx, loc.VisitedIcon); err != nil {
			return nil, err
		}

		rec := loc.MarkerRecord(defaults)
		if label, _ := rec["inlineLabel"].(string); label != "" {
			rendered, err := n.render(ctx, snapshot, label)
			if err != nil {
				return nil, err
			}
			rec["inlineLabel"] = SanitizeInlineLabel(rendered)
		}
		if err := n.finish(ctx, snapshot, rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// finish renders title and text, composes text from both, then strips the
// title. The order matters: the unstripped title only survives inside text.
func (n *Normalizer) finish(ctx context.Context, snapshot interfaces.RenderSnapshot, rec Record) error {
	title, err := n.render(ctx, snapshot, stringField(rec, "title"))
	if err != nil {
		return err
	}
	text, err := n.render(ctx, snapshot, stringField(rec, "text"))
	if err != nil {
		return err
	}
	rec["text"] = Compose(title, text)
	rec["title"] = StripTags(title)
	return nil
}

func (n *Normalizer) render(ctx context.Context, snapshot interfaces.RenderSnapshot, text string) (string, error) {
	if text == "" || n.renderer == nil {
		return text, nil
	}
	rendered, err := n.renderer.RenderText(ctx, snapshot, text)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "render embedded map text").
			WithTextCode(textRenderFailedCode)
	}
	return rendered, nil
}

func (n *Normalizer) fileURL(ctx context.Context, reference string) (string, error) {
	if reference == "" || n.files == nil {
		return reference, nil
	}
	return n.files.FileURL(ctx, reference)
}

func stringField(rec Record, key string) string {
	switch v := rec[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
