package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/cloudkit/component"
	"github.com/kbukum/cloudkit/errors"
)

// Component manages a Client's lifecycle.
type Component struct {
	def  Definition
	cfg  Config
	opts []Option

	mu     sync.RWMutex
	client *Client
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a component that builds its client on Start.
func NewComponent(def Definition, cfg Config, opts ...Option) *Component {
	return &Component{def: def, cfg: cfg, opts: opts}
}

// Name implements component.Component.
func (c *Component) Name() string { return c.def.Name }

// Start implements component.Component.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return nil
	}

	client, err := New(ctx, c.def, c.cfg, c.opts...)
	if err != nil {
		return err
	}
	c.client = client
	return nil
}

// Stop implements component.Component.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

// Health implements component.Component. A started client is healthy; no
// request is sent.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.client == nil {
		return component.Health{Name: c.def.Name, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.def.Name, Status: component.StatusHealthy, Message: c.client.URL()}
}

// Client returns the started client.
func (c *Component) Client() (*Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.client == nil {
		return nil, errors.Configuration("%s client not started", c.def.Name)
	}
	return c.client, nil
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	c.mu.RLock()
	defer c.mu.RUnlock()

	details := fmt.Sprintf("region=%s api=%s", c.cfg.Region, c.def.APIVersion)
	port := c.cfg.Port
	if c.client != nil {
		details = fmt.Sprintf("%s region=%s api=%s", c.client.URL(), c.client.Region(), c.def.APIVersion)
		cfg := c.client.conn.Config()
		port = cfg.Port
		if port == 0 {
			port = cfg.DefaultPort()
		}
	}
	return component.Description{
		Name:    c.def.Name,
		Type:    "cloud-api",
		Details: details,
		Port:    port,
	}
}
