package system

import (
	"errors"
	"net"
	"strconv"
)

var errNoIPv4 = errors.New("no usable IPv4 interface")

// localIPv4 returns the first IPv4 address of an up, non-loopback interface.
func localIPv4() (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, iface := range ifaces {
		if iface.Flags&(net.FlagUp|net.FlagRunning) != net.FlagUp|net.FlagRunning || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if n, ok := a.(*net.IPNet); ok && n.IP.To4() != nil {
				return n.IP.To4(), nil
			}
		}
	}
	return nil, errNoIPv4
}

// LocalIPv4 returns the first usable interface address, or loopback.
func LocalIPv4() net.IP {
	ip, err := localIPv4()
	if err != nil {
		LogWarning(LTSystem, "No IPv4 interface found, using loopback")
		return net.IPv4(127, 0, 0, 1)
	}
	return ip
}

// OutboundIPv4 returns the local address the kernel picks to reach remote.
func OutboundIPv4(remote *net.UDPAddr) net.IP {
	conn, err := net.DialUDP("udp4", nil, remote)
	if err != nil {
		return LocalIPv4()
	}
	defer conn.Close()
	return LocalUDPAddr(conn).IP
}

func ListenUDP(ip net.IP, port int) (*net.UDPConn, error) {
	if ip == nil {
		return nil, errors.New("nil IP address")
	}
	return net.ListenUDP("udp", &net.UDPAddr{IP: ip, Port: port})
}

func LocalUDPAddr(conn *net.UDPConn) *net.UDPAddr {
	return conn.LocalAddr().(*net.UDPAddr)
}

func ResolveUDP(host string, port int) (*net.UDPAddr, error) {
	return net.ResolveUDPAddr("udp4", net.JoinHostPort(host, strconv.Itoa(port)))
}
