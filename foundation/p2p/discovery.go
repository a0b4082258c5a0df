package p2p

import (
	"context"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
)

// connectTimeout bounds the dial to a freshly discovered peer.
const connectTimeout = 10 * time.Second

// newDiscovery constructs the mDNS service that announces this host on
// the local network and reports peers found there. The topic name
// doubles as the mDNS service tag so only nodes of the same network
// find each other.
func newDiscovery(svc *Service, topic string) mdns.Service {
	return mdns.NewMdnsService(svc.host, "minichain."+topic, &mdnsNotifee{svc: svc})
}

// mdnsNotifee receives local discovery notifications and connects the
// host to found peers so the floodsub mesh can form.
type mdnsNotifee struct {
	svc *Service
}

// HandlePeerFound implements the mdns.Notifee interface.
func (n *mdnsNotifee) HandlePeerFound(pi peer.AddrInfo) {
	if pi.ID == n.svc.host.ID() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := n.svc.host.Connect(ctx, pi); err != nil {
		n.svc.evHandler("p2p: discovery: connect to peer[%s]: ERROR: %s", pi.ID, err)
		return
	}

	n.svc.evHandler("p2p: discovery: peer found: %s", pi.ID)
	n.svc.emit(Event{Kind: EventPeerSeen, Peer: pi.ID.String()})
}
