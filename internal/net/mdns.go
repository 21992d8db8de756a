package net

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hashicorp/mdns"

	"BrushBoard/internal/logging"
)

// Advertise announces a shared board on the local network. An empty
// instance uses the host name. Shut the returned server down to stop.
func Advertise(instance, service string, port int) (*mdns.Server, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}

	zone, err := mdns.NewMDNSService(instance, service, "", "", port, nil, []string{"BrushBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: zone, Logger: mdnsLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	logging.Logger().Info("board advertised", "instance", instance, "service", service, "port", port)
	return server, nil
}

// Browse queries the local network for boards during timeout and calls
// found with the "ip:port" of each. It returns when the query ends.
func Browse(service string, timeout time.Duration, found func(addr string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(fmt.Sprintf("%s:%d", e.AddrV4, e.Port))
		}
	}()

	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	params.Logger = mdnsLogger()
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return fmt.Errorf("mdns query %s: %w", service, err)
	}
	return nil
}

func mdnsLogger() *log.Logger {
	return slog.NewLogLogger(logging.Logger().Handler(), slog.LevelDebug)
}
