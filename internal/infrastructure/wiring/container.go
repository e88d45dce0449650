package wiring

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sophialabs/scenarioadmin/internal/domain/trace"
	inboundhttp "github.com/sophialabs/scenarioadmin/internal/infrastructure/inbound/http"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/outbound/clock"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/outbound/github"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/outbound/ratelimit"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/outbound/template"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/services"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/usecases"
)

// Content backends.
const (
	BackendGitHub     = "github"
	BackendFilesystem = "filesystem"
)

// GitHubParams selects the repository and credential for the github backend.
type GitHubParams struct {
	BaseURL string
	Owner   string
	Repo    string
	Branch  string

	// Token is used when TokenFile is empty.
	Token         string
	TokenFile     string
	TokenDebounce time.Duration
	Timeout       time.Duration
}

// Params holds the subset of configuration needed to construct infrastructure components.
type Params struct {
	Backend   string
	GitHub    GitHubParams
	RootDir   string // filesystem backend root
	Directory string

	CommitEngine  string // "jinja2" or "expr"
	SaveMessage   string // "" = engine default
	DeleteMessage string

	TraceSize      int
	RateLimit      float64 // requests per second per client; 0 disables
	RateBurst      int
	RateLimiterTTL time.Duration

	Logger ports.Logger
	Clock  ports.Clock // nil = real clock
}

// Container owns the construction and lifecycle of all infrastructure components.
type Container struct {
	logger           ports.Logger
	server           *inboundhttp.Server
	store            *services.DocumentStore
	tokens           ports.TokenSource
	tokenFile        *filesystem.TokenFile
	rateLimiterStore *ratelimit.TokenBucketStore
	traceBuf         *trace.RingBuffer
	closeOnce        sync.Once
}

// New constructs all infrastructure components. Fallible operations (templates,
// content backend) run before goroutine-starting operations (token watcher,
// rate limiter store) to avoid goroutine leaks on early failure.
func New(p Params) (*Container, error) {
	if p.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}

	saveMsg, deleteMsg, err := compileMessages(p)
	if err != nil {
		return nil, err
	}

	c := &Container{logger: p.Logger}

	var content ports.ContentAPI
	switch p.Backend {
	case BackendFilesystem:
		content, err = filesystem.NewContentStore(p.RootDir, p.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create filesystem backend: %w", err)
		}
	case BackendGitHub, "":
		if err := c.setupTokens(p.GitHub, p.Logger); err != nil {
			return nil, err
		}
		content, err = github.NewClient(github.Config{
			BaseURL:    p.GitHub.BaseURL,
			Owner:      p.GitHub.Owner,
			Repo:       p.GitHub.Repo,
			Branch:     p.GitHub.Branch,
			Tokens:     c.tokens,
			HTTPClient: &http.Client{Timeout: p.GitHub.Timeout},
			Logger:     p.Logger,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create github backend: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown backend %q (supported: github, filesystem)", p.Backend)
	}

	c.store = services.NewDocumentStore(services.DocumentStoreConfig{
		Content:       content,
		Directory:     p.Directory,
		SaveMessage:   saveMsg,
		DeleteMessage: deleteMsg,
		Clock:         clk,
		Logger:        p.Logger,
	})

	c.traceBuf = trace.NewRingBuffer(p.TraceSize)
	recorder := usecases.NewRecorder(c.traceBuf, clk, p.Logger)

	// Start background goroutines only after all fallible ops succeed.
	c.rateLimiterStore = ratelimit.NewTokenBucketStore(p.RateLimiterTTL, clk)
	if c.tokenFile != nil {
		c.tokenFile.Start()
	}

	c.server = inboundhttp.NewServer(inboundhttp.Deps{
		List:   usecases.NewListScenariosUseCase(c.store, recorder),
		Get:    usecases.NewGetScenarioUseCase(c.store, recorder),
		Save:   usecases.NewSaveScenarioUseCase(c.store, recorder),
		Delete: usecases.NewDeleteScenarioUseCase(c.store, recorder),
		Tokens: c.tokens,
		RateLimit: inboundhttp.RateLimit{
			Limiter: c.rateLimiterStore,
			Rate:    p.RateLimit,
			Burst:   p.RateBurst,
		},
		Trace:  c.traceBuf,
		Logger: p.Logger,
	})

	return c, nil
}

func compileMessages(p Params) (save, del ports.CommitMessageRenderer, err error) {
	engine := p.CommitEngine
	if engine == "" {
		engine = "jinja2"
	}
	defaultSave, defaultDelete := template.Defaults(engine)
	saveSrc, deleteSrc := p.SaveMessage, p.DeleteMessage
	if saveSrc == "" {
		saveSrc = defaultSave
	}
	if deleteSrc == "" {
		deleteSrc = defaultDelete
	}

	registry := template.NewRegistry()
	save, err = registry.Compile(engine, "save", saveSrc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile save message template: %w", err)
	}
	del, err = registry.Compile(engine, "delete", deleteSrc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile delete message template: %w", err)
	}
	return save, del, nil
}

// setupTokens picks the credential source. The token file watcher is created
// here but started in New.
func (c *Container) setupTokens(p GitHubParams, logger ports.Logger) error {
	if p.TokenFile == "" {
		c.tokens = github.StaticToken(p.Token)
		return nil
	}
	tf, err := filesystem.NewTokenFile(p.TokenFile, p.TokenDebounce, logger)
	if err != nil {
		return fmt.Errorf("failed to watch token file: %w", err)
	}
	c.tokenFile = tf
	c.tokens = tf
	return nil
}

// Close releases resources held by the container. It is idempotent.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		if c.tokenFile != nil {
			c.tokenFile.Stop()
		}
		if c.rateLimiterStore != nil {
			c.rateLimiterStore.Stop()
		}
	})
}

// Logger returns the logger passed at construction time.
func (c *Container) Logger() ports.Logger {
	return c.logger
}

// Server returns the catalog HTTP server.
func (c *Container) Server() *inboundhttp.Server {
	return c.server
}

// Store returns the scenario document store.
func (c *Container) Store() *services.DocumentStore {
	return c.store
}

// Tokens returns the upstream credential source, or nil when the backend
// needs none.
func (c *Container) Tokens() ports.TokenSource {
	return c.tokens
}

// RateLimiterStore returns the token bucket store for rate limiting.
func (c *Container) RateLimiterStore() *ratelimit.TokenBucketStore {
	return c.rateLimiterStore
}

// TraceBuf returns the trace ring buffer.
func (c *Container) TraceBuf() *trace.RingBuffer {
	return c.traceBuf
}
