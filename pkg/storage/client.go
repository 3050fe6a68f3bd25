package storage

import (
	"context"
	"log/slog"
	"os"

	"awshelpers/pkg/progress"
)

// Client wraps one S3 session. Calls block until the remote operation
// finishes; a Client must not be used from several goroutines at once.
type Client struct {
	cfg      Config
	api      S3API
	logger   *slog.Logger
	progress progress.Factory
	exit     func(code int)
	dial     Dialer
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithProgress sets the factory used to report each transfer. The default
// draws a bar on stderr.
func WithProgress(factory progress.Factory) Option {
	return func(c *Client) {
		c.progress = factory
	}
}

// WithExitFunc replaces os.Exit, which UploadDirectory calls when the source
// directory cannot be read.
func WithExitFunc(exit func(code int)) Option {
	return func(c *Client) {
		c.exit = exit
	}
}

func WithDialer(dial Dialer) Option {
	return func(c *Client) {
		c.dial = dial
	}
}

// New creates a Client and immediately connects it.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	c := &Client{
		cfg:      cfg,
		logger:   slog.Default(),
		progress: progress.Bar(os.Stderr),
		exit:     os.Exit,
		dial:     NewS3API,
	}
	for _, opt := range opts {
		opt(c)
	}

	if _, err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Connect opens a new session from the stored config and makes it the
// client's session. Buckets obtained earlier keep using the old session.
func (c *Client) Connect(ctx context.Context) (S3API, error) {
	api, err := c.dial(ctx, c.cfg)
	if err != nil {
		c.logger.Error("Can't connect to object storage", "endpoint", c.cfg.endpoint(), "error", err)
		return nil, &Error{Kind: ConnectionFailed, Op: "connect", Target: c.cfg.endpoint(), Err: err}
	}
	c.api = api
	return api, nil
}

// Session returns the current session.
func (c *Client) Session() S3API {
	return c.api
}
