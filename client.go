package celery

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/celeryq/gocelery/backend"
	redisbackend "github.com/celeryq/gocelery/backend/redis"
	rpcbackend "github.com/celeryq/gocelery/backend/rpc"
	"github.com/celeryq/gocelery/broker"
	amqpbroker "github.com/celeryq/gocelery/broker/amqp"
	"github.com/celeryq/gocelery/internal/errors"
	"github.com/celeryq/gocelery/packer"
	"github.com/celeryq/gocelery/uri"
)

// Client composes a set of failover-capable brokers and one result
// backend into the façade applications submit tasks through.
type Client struct {
	id         string
	dispatcher *dispatcher
	backend    backend.ResultBackend
	packer     *packer.Packer
	ended      bool
}

// Option configures a Client at construction.
type Option func(*clientConfig)

type clientConfig struct {
	id               string
	failoverStrategy FailoverStrategy
	packer           *packer.Packer
}

// WithClientID overrides the auto-generated UUID this client identifies
// itself with on the reply_to field of published tasks.
func WithClientID(id string) Option {
	return func(c *clientConfig) { c.id = id }
}

// WithFailoverStrategy overrides the default round-robin broker
// selection strategy.
func WithFailoverStrategy(s FailoverStrategy) Option {
	return func(c *clientConfig) { c.failoverStrategy = s }
}

// WithPacker overrides the default Json/Identity/Base64 packer every
// task on this client serializes through unless it supplies its own.
func WithPacker(p *packer.Packer) Option {
	return func(c *clientConfig) { c.packer = p }
}

// New builds a Client from already-constructed brokers and a backend.
func New(brokers []broker.MessageBroker, resultBackend backend.ResultBackend, opts ...Option) (*Client, error) {
	const op = "celery.New"
	if len(brokers) == 0 {
		return nil, errors.E(errors.Op(op), errors.Broker, "at least one broker is required")
	}

	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.id == "" {
		cfg.id = newUUID()
	}
	if cfg.packer == nil {
		cfg.packer = packer.Default()
	}

	return &Client{
		id:         cfg.id,
		dispatcher: newDispatcher(brokers, cfg.failoverStrategy),
		backend:    resultBackend,
		packer:     cfg.packer,
	}, nil
}

// NewFromURL is sugar over New: it dials a single AMQP broker from
// brokerURL (any other broker scheme, Redis included, is rejected with a
// ParseError) and a matching result backend from backendURL,
// dispatching on scheme the way DESIGN NOTES §9 prescribes for the Redis
// options variants.
func NewFromURL(brokerURL, backendURL string, opts ...Option) (*Client, error) {
	const op = "celery.NewFromURL"

	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.id == "" {
		cfg.id = newUUID()
	}

	b, err := dialBroker(brokerURL)
	if err != nil {
		return nil, errors.E(errors.Op(op), err)
	}
	bk, err := dialBackend(backendURL, cfg.id)
	if err != nil {
		return nil, errors.E(errors.Op(op), err)
	}
	return New([]broker.MessageBroker{b}, bk, append(opts, WithClientID(cfg.id))...)
}

func dialBroker(rawUri string) (broker.MessageBroker, error) {
	const op = "celery.dialBroker"
	scheme, err := uri.GetScheme(rawUri)
	if err != nil {
		return nil, errors.E(errors.Op(op), err)
	}
	if !scheme.IsAMQP() {
		return nil, errors.E(errors.Op(op), errors.ParseError, "unsupported broker scheme: "+string(scheme))
	}
	return amqpbroker.Dial(rawUri, amqpbroker.DefaultChannelPoolCapacity)
}

func dialBackend(rawUri string, clientID string) (backend.ResultBackend, error) {
	const op = "celery.dialBackend"
	scheme, err := uri.GetScheme(rawUri)
	if err != nil {
		return nil, errors.E(errors.Op(op), err)
	}
	switch {
	case scheme.IsAMQP():
		return rpcbackend.DialNew(rawUri, clientID, rpcbackend.DefaultChannelPoolCapacity)
	case scheme == uri.SchemeRedis || scheme == uri.SchemeRediss:
		return dialRedisBackend(rawUri)
	case scheme == uri.SchemeRedisSocket || scheme == uri.SchemeRedissSocket:
		return dialRedisSocketBackend(rawUri)
	default:
		return nil, errors.E(errors.Op(op), errors.ParseError, "unsupported result backend scheme: "+string(scheme))
	}
}

func dialRedisBackend(rawUri string) (backend.ResultBackend, error) {
	const op = "celery.dialRedisBackend"
	opts, err := uri.ParseRedisTCPUri(rawUri)
	if err != nil {
		return nil, errors.E(errors.Op(op), err)
	}
	clientOpts := redisbackend.Options{Addr: opts.Host}
	if clientOpts.Addr == "" {
		clientOpts.Addr = "localhost"
	}
	if opts.Port != nil {
		clientOpts.Addr = clientOpts.Addr + ":" + strconv.Itoa(*opts.Port)
	} else {
		clientOpts.Addr = clientOpts.Addr + ":6379"
	}
	if opts.Password != nil {
		clientOpts.Password = *opts.Password
	}
	if opts.DB != nil {
		clientOpts.DB = *opts.DB
	}
	if opts.NoDelay != nil {
		clientOpts.NoDelay = opts.NoDelay
	}
	client := redisbackend.NewUniversalClient(clientOpts)
	return redisbackend.New(rawUri, client, redisbackend.DefaultExpiry), nil
}

func dialRedisSocketBackend(rawUri string) (backend.ResultBackend, error) {
	const op = "celery.dialRedisSocketBackend"
	opts, err := uri.ParseRedisSocketUri(rawUri)
	if err != nil {
		return nil, errors.E(errors.Op(op), err)
	}
	clientOpts := redisbackend.Options{Path: opts.Path}
	if opts.Password != nil {
		clientOpts.Password = *opts.Password
	}
	if opts.NoDelay != nil {
		clientOpts.NoDelay = opts.NoDelay
	}
	client := redisbackend.NewUniversalClient(clientOpts)
	return redisbackend.New(rawUri, client, redisbackend.DefaultExpiry), nil
}

// CreateTask names a remote task this client can ApplyAsync.
func (c *Client) CreateTask(name string) *Task {
	return &Task{client: c, name: name}
}

// ID returns this client's reply-to identity, the UUID its RPC reply
// queue (if any) is named after.
func (c *Client) ID() string { return c.id }

// End releases every broker and the result backend this client owns. A
// second call returns an error.
func (c *Client) End() error {
	const op = "celery.Client.End"
	if c.ended {
		return errors.E(errors.Op(op), errors.Disconnected, ErrDisconnected)
	}
	c.ended = true

	var firstErr error
	if err := c.dispatcher.End(); err != nil {
		firstErr = err
	}
	if err := c.backend.End(); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return errors.E(errors.Op(op), firstErr)
	}
	return nil
}

func newUUID() string {
	return uuid.NewString()
}

func wrapOp(op string, err error) error {
	return errors.E(errors.Op(op), err)
}
