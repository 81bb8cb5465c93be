// Package screen shows declarative settings screens whose fields are bound to
// a sharedprefs Manager.
package screen

import (
	"fmt"
	"slices"
	"sync"

	"github.com/CreativeUnicorns/sharedprefs"
)

// ContainerID identifies a slot a screen can be attached to.
type ContainerID int

// Host owns the containers and attaches screens built from its Table.
type Host struct {
	mu      sync.RWMutex
	manager *sharedprefs.Manager
	table   *Table
	logger  sharedprefs.Logger
	screens map[ContainerID]*Screen
}

// NewHost creates a Host. A nil logger selects sharedprefs.NewDefaultLogger.
func NewHost(manager *sharedprefs.Manager, table *Table, logger sharedprefs.Logger) *Host {
	if logger == nil {
		logger = sharedprefs.NewDefaultLogger()
	}
	return &Host{
		manager: manager,
		table:   table,
		logger:  logger,
		screens: make(map[ContainerID]*Screen),
	}
}

// Table returns the resources the host can show.
func (h *Host) Table() *Table {
	return h.table
}

// Show builds resourceID bound to its namespace and attaches it to containerID,
// replacing whatever the container held.
func (h *Host) Show(containerID ContainerID, resourceID ResourceID) error {
	resource, err := h.table.Lookup(resourceID)
	if err != nil {
		return err
	}
	s := newScreen(resource, h.manager.Preferences(resource.Namespace))

	h.mu.Lock()
	h.screens[containerID] = s
	h.mu.Unlock()

	h.logger.Info("Settings screen shown",
		"container", containerID,
		"resource", resource.Name,
		"instance", s.InstanceID().String())
	return nil
}

// Screen returns the screen attached to containerID.
func (h *Host) Screen(containerID ContainerID) (*Screen, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.screens[containerID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrContainerNotFound, containerID)
	}
	return s, nil
}

// Dismiss detaches the screen in containerID.
func (h *Host) Dismiss(containerID ContainerID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.screens[containerID]; !ok {
		return fmt.Errorf("%w: %d", ErrContainerNotFound, containerID)
	}
	delete(h.screens, containerID)
	h.logger.Debug("Settings screen dismissed", "container", containerID)
	return nil
}

// Containers lists occupied containers in ascending order.
func (h *Host) Containers() []ContainerID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ContainerID, 0, len(h.screens))
	for id := range h.screens {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
