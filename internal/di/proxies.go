package di

import (
	"context"
	"html/template"
	"sync"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// shortcodeServiceProxy routes calls to the shortcode service once it exists.
// Until then content passes through untouched.
type shortcodeServiceProxy struct {
	mu  sync.RWMutex
	svc interfaces.ShortcodeService
}

func newShortcodeServiceProxy() *shortcodeServiceProxy {
	return &shortcodeServiceProxy{}
}

func (p *shortcodeServiceProxy) swap(svc interfaces.ShortcodeService) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if svc != nil {
		p.svc = svc
	}
}

func (p *shortcodeServiceProxy) current() interfaces.ShortcodeService {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.svc
}

func (p *shortcodeServiceProxy) Process(ctx context.Context, content string, opts interfaces.ShortcodeProcessOptions) (string, error) {
	svc := p.current()
	if svc == nil {
		return content, nil
	}
	return svc.Process(ctx, content, opts)
}

func (p *shortcodeServiceProxy) Render(ctx interfaces.ShortcodeContext, shortcode string, params map[string]any, inner string) (template.HTML, error) {
	svc := p.current()
	if svc == nil {
		return "", nil
	}
	return svc.Render(ctx, shortcode, params, inner)
}
