// Package display renders a map directive into its HTML placeholder and
// registers what the client script needs on the page.
package display

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-maps/internal/elements"
	"github.com/goliatone/go-cms-maps/internal/i18n"
	"github.com/goliatone/go-cms-maps/internal/layers"
	"github.com/goliatone/go-cms-maps/internal/logging"
	"github.com/goliatone/go-cms-maps/internal/output"
	"github.com/goliatone/go-cms-maps/internal/services"
	"github.com/goliatone/go-cms-maps/internal/textrender"
	"github.com/goliatone/go-cms-maps/internal/validation"
	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// LoadingMessageKey is the message shown until the client script draws the map.
const LoadingMessageKey = "maps-loading-map"

const (
	serviceUnavailableCode = "MAPS_SERVICE_UNAVAILABLE"
	payloadEncodeCode      = "MAPS_PAYLOAD_ENCODE_FAILED"
	variablesEncodeCode    = "MAPS_VARIABLES_ENCODE_FAILED"
	containerRenderCode    = "MAPS_CONTAINER_RENDER_FAILED"
	fileURLCode            = "MAPS_ICON_URL_FAILED"

	fallbackLoadingMessage = "Loading map..."
)

// Parameters are the render parameters of one directive occurrence, keyed by
// lower-case parameter name. RenderMap normalizes them in place.
type Parameters = map[string]any

// ServiceResolver finds the provider named by a directive, falling back to
// the default provider.
type ServiceResolver interface {
	Resolve(name string) (services.Service, bool)
}

// Metrics records rendered maps.
type Metrics interface {
	ObserveMap(service string, elements int)
	IncrementMapError(service string)
}

var containerTemplate = template.Must(template.New("map").Parse(
	`<div id="{{.ID}}" style="width: {{.Width}}; height: {{.Height}}; background-color: #cccccc; overflow: hidden;" class="maps-map maps-{{.Service}}">` +
		`{{.Loading}}<div style="display:none" class="mapdata">{{.Payload}}</div></div>`,
))

type container struct {
	ID      string
	Width   string
	Height  string
	Service string
	Loading string
	Payload string
}

// Renderer is the map render orchestrator. It holds no per-render state and
// is safe for concurrent use.
type Renderer struct {
	services   ServiceResolver
	normalizer *elements.Normalizer
	layers     *layers.Resolver
	files      interfaces.FileResolver
	validator  *validation.PayloadValidator
	metrics    Metrics
	translator interfaces.Translator
	options    interfaces.ParseOptions
	logger     interfaces.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLayerResolver sets the resolver used by providers with a layer catalog.
func WithLayerResolver(resolver *layers.Resolver) Option {
	return func(r *Renderer) {
		r.layers = resolver
	}
}

// WithFileResolver resolves icon references into URLs.
func WithFileResolver(files interfaces.FileResolver) Option {
	return func(r *Renderer) {
		if files != nil {
			r.files = files
		}
	}
}

// WithPayloadValidator checks every payload before it is emitted.
func WithPayloadValidator(validator *validation.PayloadValidator) Option {
	return func(r *Renderer) {
		r.validator = validator
	}
}

// WithMetrics records rendered maps and failures.
func WithMetrics(metrics Metrics) Option {
	return func(r *Renderer) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

// WithTranslator localizes the loading message.
func WithTranslator(translator interfaces.Translator) Option {
	return func(r *Renderer) {
		if translator != nil {
			r.translator = translator
		}
	}
}

// WithParseOptions sets the markdown options of embedded text renders that
// do not inherit a snapshot from an outer render.
func WithParseOptions(opts interfaces.ParseOptions) Option {
	return func(r *Renderer) {
		r.options = opts
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer builds the orchestrator. content renders marker and shape text
// and may be nil, in which case text is used as written.
func NewRenderer(resolver ServiceResolver, content interfaces.ContentRenderer, opts ...Option) *Renderer {
	r := &Renderer{
		services: resolver,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.translator == nil {
		if svc, err := i18n.DefaultService(); err == nil {
			r.translator = svc.Translator()
		}
	}
	r.normalizer = elements.NewNormalizer(content,
		elements.WithFileResolver(r.files),
		elements.WithLogger(r.logger),
	)
	return r
}

// RenderMap normalizes params, emits the map placeholder and registers the
// provider variables and dependencies on page. When page is nil the page
// carried by ctx is used.
func (r *Renderer) RenderMap(ctx context.Context, params Parameters, page *output.Page) (template.HTML, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if page == nil {
		if fromCtx, ok := output.FromContext(ctx); ok {
			page = fromCtx
		} else {
			page = output.NewPage("", "")
		}
	}
	// Nested maps in marker text must register on the same page.
	if fromCtx, ok := output.FromContext(ctx); !ok || fromCtx != page {
		ctx = output.WithPage(ctx, page)
	}
	if params == nil {
		params = Parameters{}
	}

	requested := stringParam(params, "mappingservice")
	service, ok := r.resolveService(requested)
	if !ok {
		err := goerrors.New("no mapping service available for \""+requested+"\"", goerrors.CategoryNotFound).
			WithTextCode(serviceUnavailableCode)
		r.logger.Error("maps.display.service_unavailable", "service", requested)
		return "", err
	}
	name := service.Name()
	params["mappingservice"] = name

	snapshot := r.snapshot(ctx, page)

	if err := r.normalize(ctx, snapshot, service, page, params); err != nil {
		return "", r.fail(name, err)
	}

	if r.validator != nil {
		if err := r.validator.Validate(params); err != nil {
			return "", r.fail(name, err)
		}
	}

	mapID := service.MapID(page)
	logger := logging.WithMapContext(r.logger, name, mapID, snapshot.PageTitle)

	fragment, err := r.container(mapID, name, snapshot.Locale, params)
	if err != nil {
		return "", r.fail(name, err)
	}

	script, err := output.VariablesScript(service.ConfigVariables())
	if err != nil {
		return "", r.fail(name, goerrors.Wrap(err, goerrors.CategoryInternal, "encode provider variables").
			WithTextCode(variablesEncodeCode))
	}
	if script != "" {
		page.AddHeadItem(script)
	}
	service.AddDependencies(page)

	count := countElements(params)
	if r.metrics != nil {
		r.metrics.ObserveMap(name, count)
	}
	logger.Debug("maps.display.render_completed", "elements", count)
	return fragment, nil
}

func (r *Renderer) resolveService(name string) (services.Service, bool) {
	if r.services == nil {
		return nil, false
	}
	service, ok := r.services.Resolve(name)
	if !ok || service == nil {
		return nil, false
	}
	return service, true
}

// snapshot prefers the one an outer render put on ctx so nested maps keep
// counting depth.
func (r *Renderer) snapshot(ctx context.Context, page *output.Page) textrender.Snapshot {
	if snap, ok := textrender.SnapshotFromContext(ctx); ok {
		return snap
	}
	return textrender.Snapshot{
		PageTitle: page.Title,
		Locale:    page.Locale,
		Options:   r.options,
	}
}

// normalize converts centre and wms overlay, resolves icons, turns
// coordinates into marker records, normalizes shapes and lets the provider
// rewrite layers.
func (r *Renderer) normalize(ctx context.Context, snapshot textrender.Snapshot, service services.Service, page *output.Page, params Parameters) error {
	for _, key := range []string{"centre", "wmsoverlay"} {
		if rec, ok := elements.ToRecord(params[key]); ok {
			params[key] = rec
		} else {
			params[key] = nil
		}
	}

	icon, err := r.fileURL(ctx, stringParam(params, "icon"))
	if err != nil {
		return err
	}
	visited, err := r.fileURL(ctx, stringParam(params, "visitedicon"))
	if err != nil {
		return err
	}
	params["icon"] = icon
	params["visitedicon"] = visited

	defaults := elements.MarkerDefaults{
		Text:           stringParam(params, "title"),
		Title:          stringParam(params, "label"),
		IconURL:        icon,
		VisitedIconURL: visited,
	}
	locations, err := r.normalizer.Locations(ctx, snapshot, toLocations(params["coordinates"]), defaults)
	if err != nil {
		return err
	}
	delete(params, "coordinates")
	params["locations"] = locations

	if err := r.normalizer.Shapes(ctx, snapshot, params); err != nil {
		return err
	}

	service.HandleLayers(page, params, r.layers)
	return nil
}

func (r *Renderer) fileURL(ctx context.Context, reference string) (string, error) {
	if reference == "" || r.files == nil {
		return reference, nil
	}
	resolved, err := r.files.FileURL(ctx, reference)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "resolve map icon").
			WithTextCode(fileURLCode)
	}
	return resolved, nil
}

func (r *Renderer) container(mapID, service, locale string, params Parameters) (template.HTML, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "encode map payload").
			WithTextCode(payloadEncodeCode)
	}

	var buf bytes.Buffer
	err = containerTemplate.Execute(&buf, container{
		ID:      mapID,
		Width:   stringParam(params, "width"),
		Height:  stringParam(params, "height"),
		Service: service,
		Loading: r.loadingMessage(locale),
		Payload: string(payload),
	})
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "render map container").
			WithTextCode(containerRenderCode)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) loadingMessage(locale string) string {
	if r.translator == nil {
		return fallbackLoadingMessage
	}
	message, err := r.translator.Translate(locale, LoadingMessageKey)
	if err != nil || message == "" || message == LoadingMessageKey {
		return fallbackLoadingMessage
	}
	return message
}

func (r *Renderer) fail(service string, err error) error {
	if r.metrics != nil {
		r.metrics.IncrementMapError(service)
	}
	r.logger.Error("maps.display.render_failed", "service", service, "error", err)
	return err
}

func toLocations(value any) []elements.Location {
	switch v := value.(type) {
	case nil:
		return nil
	case []elements.Location:
		return v
	case elements.Location:
		return []elements.Location{v}
	}
	items, ok := elements.Items(value)
	if !ok {
		return nil
	}
	out := make([]elements.Location, 0, len(items))
	for _, item := range items {
		if loc, ok := item.(elements.Location); ok {
			out = append(out, loc)
		}
	}
	return out
}

func countElements(params Parameters) int {
	total := 0
	if locations, ok := params["locations"].([]elements.Record); ok {
		total += len(locations)
	}
	for _, key := range elements.ShapeCollections {
		if records, ok := params[key].([]elements.Record); ok {
			total += len(records)
		}
	}
	return total
}

func stringParam(params Parameters, key string) string {
	value, ok := params[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
