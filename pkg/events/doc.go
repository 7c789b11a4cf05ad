/*
Package events provides an in-memory event broker for fcdb's pub/sub
notifications: a Broker distributes published Events to every current
Subscriber over buffered channels, dropping delivery to a subscriber
whose buffer is full rather than blocking the publisher.

Event types cover store lifecycle (node/edge mutation, pack sealing
and rotation, bloom redistribution), cache maintenance (manifest
eviction), and capability lifecycle (lease expiry, transaction abort).
A CLI or monitoring process subscribes to drive a live tail of store
activity; the graph store, CAS, manifest, lease manager and executor
publish but never subscribe.
*/
package events
