// Package sim drives the per-frame update loop over a set of steered
// vehicles: neighborhood refresh, kinematic update, spatial reindexing, and
// deferred trigger and structural-mutation stages.
package sim

import (
	"errors"
	"fmt"

	"github.com/michealparks/lib-ai/spatial"
	"github.com/michealparks/lib-ai/steering"
)

// ErrVehicleNotFound is returned when removing a vehicle the system does not
// own.
var ErrVehicleNotFound = errors.New("sim: vehicle not found")

// Trigger is deferred work executed after every vehicle has a fresh pose.
// The engine never queues triggers itself; collaborators do.
type Trigger interface {
	Execute(s *System)
}

// TriggerFunc adapts a plain function to Trigger.
type TriggerFunc func(s *System)

// Execute calls f.
func (f TriggerFunc) Execute(s *System) { f(s) }

// MessageHandler receives inter-vehicle messages sent through SendMessage.
type MessageHandler func(from, to *steering.Vehicle, msg string)

// System owns the vehicle set and optionally shares one spatial partition for
// neighbor queries and cell bookkeeping. Update is the sole entry point, runs
// single-threaded, and is not reentrant: structural changes during a pass
// must go through Defer.
type System struct {
	vehicles  []*steering.Vehicle
	partition *spatial.Partition
	indices   map[*steering.Vehicle]int

	triggers []Trigger
	deferred []func(*System)

	onAdd    []func(*steering.Vehicle)
	onRemove []func(*steering.Vehicle)

	messageHandler MessageHandler

	scratch []spatial.Entity // query buffer reused across vehicles
}

// New returns a system without a spatial partition; neighborhoods fall back
// to scanning every vehicle.
func New() *System {
	return &System{indices: make(map[*steering.Vehicle]int)}
}

// NewWithPartition returns a system using p for neighbor queries and cell
// bookkeeping. The partition may be shared with other owners.
func NewWithPartition(p *spatial.Partition) *System {
	s := New()
	s.partition = p
	return s
}

// OnAdd registers fn to run whenever a vehicle joins the system.
func (s *System) OnAdd(fn func(*steering.Vehicle)) {
	s.onAdd = append(s.onAdd, fn)
}

// OnRemove registers fn to run whenever a vehicle leaves the system.
func (s *System) OnRemove(fn func(*steering.Vehicle)) {
	s.onRemove = append(s.onRemove, fn)
}

// Add hands v to the system. Insertion order is update order.
func (s *System) Add(v *steering.Vehicle) {
	s.vehicles = append(s.vehicles, v)
	s.indices[v] = -1
	for _, fn := range s.onAdd {
		fn(v)
	}
}

// Remove takes v out of the system and, when indexed, out of its current
// cell. Returns ErrVehicleNotFound if the system does not own v. During an
// update pass, call through Defer instead.
func (s *System) Remove(v *steering.Vehicle) error {
	for i, existing := range s.vehicles {
		if existing != v {
			continue
		}

		s.vehicles = append(s.vehicles[:i], s.vehicles[i+1:]...)
		idx := s.indices[v]
		delete(s.indices, v)

		if s.partition != nil && idx != -1 {
			if err := s.partition.Cells()[idx].Remove(v); err != nil {
				return fmt.Errorf("sim: remove vehicle from cell: %w", err)
			}
		}

		for _, fn := range s.onRemove {
			fn(v)
		}
		return nil
	}
	return ErrVehicleNotFound
}

// Vehicles returns the vehicle list in update order. The slice is owned by
// the system.
func (s *System) Vehicles() []*steering.Vehicle {
	return s.vehicles
}

// Partition returns the shared spatial index, or nil.
func (s *System) Partition() *spatial.Partition {
	return s.partition
}

// CellIndex returns v's last known cell index, or -1 when v is unindexed or
// unknown.
func (s *System) CellIndex(v *steering.Vehicle) int {
	if idx, ok := s.indices[v]; ok {
		return idx
	}
	return -1
}

// UpdateNeighborhood rebuilds v's neighbor set: active vehicles other than v
// within NeighborhoodRadius. Candidates come from the partition when one is
// attached; otherwise every vehicle is scanned, which is O(n) here and O(n²)
// across a frame. No-op unless v.UpdateNeighborhood is set.
func (s *System) UpdateNeighborhood(v *steering.Vehicle) {
	if !v.UpdateNeighborhood {
		return
	}

	v.Neighbors = v.Neighbors[:0]
	radiusSq := v.NeighborhoodRadius * v.NeighborhoodRadius

	if s.partition != nil {
		s.scratch = s.partition.Query(v.Position(), v.NeighborhoodRadius, s.scratch)
		for _, entry := range s.scratch {
			if other, ok := entry.(*steering.Vehicle); ok {
				appendNeighbor(v, other, radiusSq)
			}
		}
		return
	}

	for _, other := range s.vehicles {
		appendNeighbor(v, other, radiusSq)
	}
}

func appendNeighbor(v, other *steering.Vehicle, radiusSq float64) {
	if other == v || !other.Active {
		return
	}
	d := other.Position().Sub(v.Position())
	if d.Dot(d) <= radiusSq {
		v.Neighbors = append(v.Neighbors, other)
	}
}

// Update advances one frame. Every active vehicle, in insertion order, gets a
// fresh neighborhood, a kinematic update, and a cell migration. Queued
// triggers then run against the fresh poses and the queue is cleared; last,
// deferred structural work runs. Triggers queued or work deferred during
// these stages run next frame.
func (s *System) Update(delta float64) {
	for _, v := range s.vehicles {
		s.updateVehicle(v, delta)
	}

	triggers := s.triggers
	s.triggers = nil
	for _, t := range triggers {
		t.Execute(s)
	}

	deferred := s.deferred
	s.deferred = nil
	for _, fn := range deferred {
		fn(s)
	}
}

func (s *System) updateVehicle(v *steering.Vehicle, delta float64) {
	if !v.Active {
		return
	}

	s.UpdateNeighborhood(v)
	v.Update(delta)

	if s.partition == nil {
		return
	}

	current, ok := s.indices[v]
	if !ok {
		current = -1
	}
	// A stale old-cell membership (the partition was emptied behind our
	// back) fails the removal, but the add has already landed, so the new
	// index is correct either way.
	next, _ := s.partition.UpdateEntity(v, current)
	s.indices[v] = next
}

// QueueTrigger schedules t for the trigger stage of the next Update.
func (s *System) QueueTrigger(t Trigger) {
	s.triggers = append(s.triggers, t)
}

// Defer schedules structural work (add/remove, behavior swaps) for the end of
// the next Update, after triggers.
func (s *System) Defer(fn func(*System)) {
	s.deferred = append(s.deferred, fn)
}

// SetMessageHandler installs the collaborator receiving SendMessage traffic.
// The default nil handler makes SendMessage a no-op.
func (s *System) SetMessageHandler(h MessageHandler) {
	s.messageHandler = h
}

// SendMessage forwards one message between vehicles. Without a handler it
// does nothing.
func (s *System) SendMessage(from, to *steering.Vehicle, msg string) {
	if s.messageHandler != nil {
		s.messageHandler(from, to, msg)
	}
}
