// Package mdns advertises the gallery server on the local network so
// clients can discover it without manual configuration.
package mdns

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/hashicorp/mdns"
)

const (
	// ServiceType is the mDNS service type advertised.
	ServiceType = "_nextbooru._tcp"

	// APIVersion is advertised in TXT records.
	APIVersion = "v1"
)

// Service manages mDNS advertisement.
type Service struct {
	server *mdns.Server
	logger *slog.Logger
	mu     sync.Mutex
}

// NewService creates a new mDNS service.
func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// Start begins advertising. Call after the HTTP server is listening.
// Failures are typically non-fatal (multicast unavailable in containers);
// the caller decides whether to treat them as such.
func (s *Service) Start(name, remoteURL string, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		_ = s.server.Shutdown()
		s.server = nil
	}

	host, err := os.Hostname()
	if err != nil {
		host = "nextbooru-server"
	}

	txtRecords := []string{
		"name=" + name,
		"api=" + APIVersion,
		"port=" + strconv.Itoa(port),
	}
	if remoteURL != "" {
		txtRecords = append(txtRecords, "remote="+remoteURL)
	}

	zone, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, txtRecords)
	if err != nil {
		return fmt.Errorf("create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return fmt.Errorf("start mDNS server: %w", err)
	}
	s.server = server

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType,
		"port", port,
		"name", name,
	)
	return nil
}

// Stop stops advertising. Safe to call repeatedly or before Start.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		_ = s.server.Shutdown()
		s.server = nil
		s.logger.Info("mDNS advertisement stopped")
	}
}
