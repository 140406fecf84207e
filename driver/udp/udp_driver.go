// Package udp carries datalink frames over IPv4 multicast so that every
// participant can run as its own process. All participants bound to the same
// group share one simulated ether.
package udp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net"
	"time"

	"github.com/libp2p/go-reuseport"
	"golang.org/x/net/ipv4"
)

const (
	DefaultGroup       = "239.77.0.1:7700"
	DefaultReadTimeout = 2 * time.Millisecond

	// sender id (4 bytes) followed by the frame (8 bytes), little endian
	datagramSize = 12
)

var errDatagramSize = errors.New("unexpected datagram size")

type Config struct {
	Group       string
	Interface   string // empty selects the system default
	Sender      uint32 // zero picks a random id
	ReadTimeout time.Duration
	Logger      *log.Logger
}

type Driver struct {
	conn   net.PacketConn
	pc     *ipv4.PacketConn
	group  *net.UDPAddr
	ifi    *net.Interface
	sender uint32
	poll   time.Duration
	buf    []byte
	logger *log.Logger
}

// New joins the multicast group and returns a driver ready for Tx and Rx.
func New(cfg Config) (*Driver, error) {
	if cfg.Group == "" {
		cfg.Group = DefaultGroup
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	for cfg.Sender == 0 {
		cfg.Sender = rand.Uint32()
	}

	group, err := net.ResolveUDPAddr("udp4", cfg.Group)
	if err != nil {
		return nil, fmt.Errorf("resolve group %q: %w", cfg.Group, err)
	}
	if !group.IP.IsMulticast() {
		return nil, fmt.Errorf("group %s is not a multicast address", group.IP)
	}

	var ifi *net.Interface
	if cfg.Interface != "" {
		if ifi, err = net.InterfaceByName(cfg.Interface); err != nil {
			return nil, fmt.Errorf("interface %q: %w", cfg.Interface, err)
		}
	}

	conn, err := reuseport.ListenPacket("udp4", fmt.Sprintf("0.0.0.0:%d", group.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", group.Port, err)
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.JoinGroup(ifi, &net.UDPAddr{IP: group.IP}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join group %s: %w", group.IP, err)
	}
	if ifi != nil {
		if err := pc.SetMulticastInterface(ifi); err != nil {
			conn.Close()
			return nil, fmt.Errorf("multicast interface: %w", err)
		}
	}
	// Keep traffic on the local link and let processes on this host hear
	// each other.
	if err := pc.SetMulticastTTL(1); err != nil {
		conn.Close()
		return nil, fmt.Errorf("multicast ttl: %w", err)
	}
	if err := pc.SetMulticastLoopback(true); err != nil {
		conn.Close()
		return nil, fmt.Errorf("multicast loopback: %w", err)
	}

	cfg.Logger.Printf("[UDP] sender %#08x joined %s", cfg.Sender, group)
	return &Driver{
		conn:   conn,
		pc:     pc,
		group:  group,
		ifi:    ifi,
		sender: cfg.Sender,
		poll:   cfg.ReadTimeout,
		buf:    make([]byte, 64),
		logger: cfg.Logger,
	}, nil
}

func (d *Driver) Sender() uint32 { return d.sender }

func (d *Driver) Tx(frame uint64) error {
	if _, err := d.pc.WriteTo(encodeDatagram(d.sender, frame), nil, d.group); err != nil {
		return fmt.Errorf("tx: %w", err)
	}
	return nil
}

// Rx returns the frames other senders put on the group since the last call.
// It waits at most the configured read timeout for the first one.
func (d *Driver) Rx() ([]uint64, error) {
	if err := d.pc.SetReadDeadline(time.Now().Add(d.poll)); err != nil {
		return nil, fmt.Errorf("rx deadline: %w", err)
	}

	var frames []uint64
	for {
		n, _, src, err := d.pc.ReadFrom(d.buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return frames, nil
			}
			return frames, fmt.Errorf("rx: %w", err)
		}

		sender, frame, err := decodeDatagram(d.buf[:n])
		if err != nil {
			d.logger.Printf("[UDP] dropping datagram from %v: %v", src, err)
			continue
		}
		if sender == d.sender {
			continue
		}
		frames = append(frames, frame)
	}
}

// Close leaves the group and releases the socket.
func (d *Driver) Close() error {
	if err := d.pc.LeaveGroup(d.ifi, &net.UDPAddr{IP: d.group.IP}); err != nil {
		d.logger.Printf("[UDP] leave group: %v", err)
	}
	return d.conn.Close()
}

func encodeDatagram(sender uint32, frame uint64) []byte {
	b := make([]byte, datagramSize)
	binary.LittleEndian.PutUint32(b[0:4], sender)
	binary.LittleEndian.PutUint64(b[4:12], frame)
	return b
}

func decodeDatagram(b []byte) (uint32, uint64, error) {
	if len(b) != datagramSize {
		return 0, 0, fmt.Errorf("%w: %d bytes", errDatagramSize, len(b))
	}
	return binary.LittleEndian.Uint32(b[0:4]), binary.LittleEndian.Uint64(b[4:12]), nil
}
