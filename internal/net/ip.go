package net

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"BrushBoard/internal/logging"
)

// LinkScheme prefixes share links.
const LinkScheme = "brushboard"

// OutgoingIP finds the local address other machines can reach this host
// on. Without a route to the internet it falls back to scanning the
// interfaces.
func OutgoingIP() net.IP {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return firstIPv4()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP
}

// firstIPv4 returns the first IPv4 address of an interface that is up and
// not loopback, or 127.0.0.1.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	logging.Logger().Warn("no suitable local IP found, share link uses loopback")
	return net.IPv4(127, 0, 0, 1)
}

// ShareLink returns the link a peer passes to join the board at ip:port.
func ShareLink(ip net.IP, port int) string {
	u := url.URL{Scheme: LinkScheme, Host: net.JoinHostPort(ip.String(), strconv.Itoa(port))}
	return u.String()
}

// ParseLink returns the "host:port" a share link points at. A bare
// "host:port" is accepted as well.
func ParseLink(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil || u.Scheme != LinkScheme {
		if _, _, serr := net.SplitHostPort(link); serr == nil {
			return link, nil
		}
		return "", fmt.Errorf("invalid share link %q", link)
	}
	if _, port, err := net.SplitHostPort(u.Host); err != nil || port == "" {
		return "", fmt.Errorf("share link %q has no port", link)
	}
	return u.Host, nil
}
