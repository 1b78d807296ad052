package vision

import (
	"context"
	"snapsight/app/config"
	"snapsight/app/service/chat"
	"snapsight/app/util/dataurl"
	"strings"
	"time"

	_ "embed"

	"github.com/samber/do"
	"github.com/samber/oops"
)

//go:embed prompt.txt
var defaultPrompt string

const (
	// Returned verbatim when the provider answers with an empty or
	// missing completion.
	NoResponse = "No response"

	requestTimeout = 60 * time.Second
)

// Provider turns one screenshot into an answer. Implementations do not
// retry; any transport, status or parsing problem comes back as a single
// error.
type Provider interface {
	Name() string
	Analyze(ctx context.Context, img dataurl.Image) (string, error)
}

func New(di *do.Injector) (Provider, error) {
	cfg := do.MustInvoke[*config.Config](di)

	switch cfg.Provider.Name {
	case "anthropic":
		return newAnthropic(cfg)
	case "openai":
		return newOpenAI(cfg, do.MustInvoke[*chat.Service](di)), nil
	default:
		return nil, oops.Errorf("unknown vision provider: %s", cfg.Provider.Name)
	}
}

func instructionPrompt(cfg *config.Config) string {
	if cfg.Provider.Prompt != "" {
		return cfg.Provider.Prompt
	}

	return strings.TrimSpace(defaultPrompt)
}
