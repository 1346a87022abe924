package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// ErrConfiguration indicates missing or unparsable gateway credential
// material. Fatal to the pipeline invocation; never retried automatically.
var ErrConfiguration = errors.New("gateway configuration error")

// Messenger is the subset of the FCM messaging API the dispatcher uses.
// *messaging.Client satisfies it; tests substitute a fake.
type Messenger interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

// Config holds service-account material for the push gateway.
type Config struct {
	CredentialsFile string
	CredentialsJSON string
	ProjectID       string
	ClientTTL       time.Duration
}

// ClientCache is a process-scoped cache of the authenticated messaging
// client. Credential exchange happens inside the Firebase SDK; callers only
// ever see the Messenger handle. The explicit TTL forces a periodic rebuild
// instead of trusting an implicitly reused module-level client.
type ClientCache struct {
	cfg Config

	mu      sync.Mutex
	client  Messenger
	builtAt time.Time
}

// New validates credential configuration and returns a cache. The first
// client is built lazily on Client().
func New(cfg Config) (*ClientCache, error) {
	if cfg.CredentialsFile == "" && cfg.CredentialsJSON == "" {
		return nil, fmt.Errorf("%w: no service-account credentials provided", ErrConfiguration)
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: missing project id", ErrConfiguration)
	}
	if cfg.ClientTTL <= 0 {
		cfg.ClientTTL = 55 * time.Minute
	}
	return &ClientCache{cfg: cfg}, nil
}

// Client returns the cached messaging client, rebuilding it after the TTL
// elapses. Safe for concurrent use.
func (c *ClientCache) Client(ctx context.Context) (Messenger, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil && time.Since(c.builtAt) < c.cfg.ClientTTL {
		return c.client, nil
	}

	client, err := c.build(ctx)
	if err != nil {
		return nil, err
	}
	c.client = client
	c.builtAt = time.Now()
	return c.client, nil
}

func (c *ClientCache) build(ctx context.Context) (Messenger, error) {
	var creds option.ClientOption
	if c.cfg.CredentialsJSON != "" {
		creds = option.WithCredentialsJSON([]byte(c.cfg.CredentialsJSON))
	} else {
		creds = option.WithCredentialsFile(c.cfg.CredentialsFile)
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: c.cfg.ProjectID}, creds)
	if err != nil {
		return nil, fmt.Errorf("%w: init firebase app: %v", ErrConfiguration, err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: init messaging client: %v", ErrConfiguration, err)
	}

	log.Println("✅ Firebase FCM client initialized")
	return client, nil
}
