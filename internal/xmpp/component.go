// Package xmpp connects the assistant to an XMPP server as an external
// component (XEP-0114) and bridges chat traffic to NATS.
package xmpp

import (
	"context"
	"log/slog"

	"gosrc.io/xmpp"

	"github.com/chronomate/chronomate/internal/config"
)

// Component manages the XMPP external component lifecycle.
type Component struct {
	domain string
	sm     *xmpp.StreamManager
	comp   *xmpp.Component
}

// NewComponent creates a component that routes stanzas to handler.
func NewComponent(cfg config.XMPPConfig, handler *Handler) (*Component, error) {
	router := xmpp.NewRouter()
	router.HandleFunc("message", handler.HandleMessage)
	router.HandleFunc("presence", handler.HandlePresence)
	router.HandleFunc("iq", handler.HandleIQ)

	opts := xmpp.ComponentOptions{
		TransportConfiguration: xmpp.TransportConfiguration{
			Address: cfg.ComponentAddr(),
			Domain:  cfg.ComponentName,
		},
		Domain:   cfg.ComponentName,
		Secret:   cfg.ComponentSecret,
		Name:     "ChronoMate Assistant",
		Category: "client",
		Type:     "bot",
	}

	comp, err := xmpp.NewComponent(opts, router, func(err error) {
		slog.Error("XMPP component error", "error", err)
	})
	if err != nil {
		return nil, err
	}

	sm := xmpp.NewStreamManager(comp, func(s xmpp.Sender) {
		slog.Info("XMPP component connected", "domain", cfg.ComponentName, "addr", cfg.ComponentAddr())
	})

	return &Component{domain: cfg.ComponentName, sm: sm, comp: comp}, nil
}

// Start runs the component until ctx is cancelled or the stream fails.
func (c *Component) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.sm.Run()
	}()

	select {
	case <-ctx.Done():
		c.sm.Stop()
		return nil
	case err := <-errCh:
		return err
	}
}

// Sender returns the underlying component for sending stanzas.
func (c *Component) Sender() xmpp.Sender {
	return c.comp
}

// Domain is the component's address, used as the sender of replies.
func (c *Component) Domain() string { return c.domain }
