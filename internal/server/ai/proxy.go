package ai

import (
	"context"
	"fmt"

	"github.com/skomarov/boardkeeper/internal/common"
	"github.com/skomarov/boardkeeper/internal/logging"
)

const (
	textToDiagramSystem = "You convert a plain-text description into Mermaid flowchart markup. Reply with the Mermaid source only."
	diagramToCodeSystem = "You convert a JSON description of drawing elements into working HTML/CSS/JS. Reply with the code only."
)

// Proxy applies the quota and forwards to the provider.
type Proxy struct {
	provider Provider
	quota    *DailyQuota
	logger   logging.Logger
}

func NewProxy(provider Provider, quota *DailyQuota, logger logging.Logger) *Proxy {
	return &Proxy{
		provider: provider,
		quota:    quota,
		logger:   logger.With("component", "ai"),
	}
}

// TextToDiagram turns a prose description into diagram markup.
func (p *Proxy) TextToDiagram(ctx context.Context, caller, prompt string) (string, error) {
	return p.generate(ctx, caller, textToDiagramSystem, prompt)
}

// DiagramToCode turns serialized diagram elements into code.
func (p *Proxy) DiagramToCode(ctx context.Context, caller, elementsJSON string) (string, error) {
	return p.generate(ctx, caller, diagramToCodeSystem, elementsJSON)
}

func (p *Proxy) generate(ctx context.Context, caller, system, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: empty prompt", common.ErrInvalidPayload)
	}
	if err := p.quota.Allow(caller); err != nil {
		return "", err
	}

	out, err := p.provider.Generate(ctx, system, prompt)
	if err != nil {
		p.logger.Error(ctx, "provider request failed", "error", err.Error())
		return "", err
	}
	return out, nil
}
