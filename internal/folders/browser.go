// Package folders implements a lazily loaded folder tree for picking
// upload destinations. Nodes live in an id-addressed arena rather than a
// recursive structure, so lookups and cross-branch updates are flat map
// operations.
package folders

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/practica/practica-link/internal/logging"
	"github.com/practica/practica-link/internal/models"
	"github.com/practica/practica-link/internal/session"
)

// FolderAPI lists folders on the platform. parentID is empty for roots.
type FolderAPI interface {
	BrowseFolders(ctx context.Context, parentID string) ([]models.Folder, error)
}

var (
	ErrUnknownFolder   = errors.New("unknown folder id")
	ErrNothingSelected = errors.New("no folder selected")
)

type node struct {
	id       string
	name     string
	parent   string
	children []string
	// loaded is true once children were fetched, even when the fetch
	// returned none. A loaded node with no children is a leaf and is
	// never fetched again.
	loaded bool
}

// Browser holds the folder tree state. Children of a folder are fetched at
// most once, on first expansion; collapsing keeps them cached.
type Browser struct {
	mu       sync.Mutex
	api      FolderAPI
	log      *logging.Logger
	nodes    map[string]*node
	roots    []string
	expanded map[string]bool
	selected string
}

// NewBrowser creates an empty browser. Call LoadRoots before expanding.
func NewBrowser(api FolderAPI, log *logging.Logger) *Browser {
	if log == nil {
		log = logging.NewDefaultLogger()
	}
	return &Browser{
		api:      api,
		log:      log,
		nodes:    make(map[string]*node),
		expanded: make(map[string]bool),
	}
}

// LoadRoots fetches the top-level folders, replacing any existing tree.
func (b *Browser) LoadRoots(ctx context.Context) error {
	folders, err := b.api.BrowseFolders(ctx, "")
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nodes = make(map[string]*node)
	b.roots = b.roots[:0]
	b.expanded = make(map[string]bool)
	b.selected = ""

	for _, f := range folders {
		b.nodes[f.ID] = &node{id: f.ID, name: f.Name}
		b.roots = append(b.roots, f.ID)
	}
	return nil
}

// Expand marks a folder open, fetching its children on first expansion.
// A failed fetch leaves the node unloaded and collapsed so a later expand
// retries.
func (b *Browser) Expand(ctx context.Context, id string) error {
	b.mu.Lock()
	n, ok := b.nodes[id]
	if !ok {
		b.mu.Unlock()
		return ErrUnknownFolder
	}
	if n.loaded {
		b.expanded[id] = true
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	children, err := b.api.BrowseFolders(ctx, id)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// The tree may have been reloaded while the fetch was in flight.
	n, ok = b.nodes[id]
	if !ok {
		return ErrUnknownFolder
	}
	if !n.loaded {
		for _, f := range children {
			b.nodes[f.ID] = &node{id: f.ID, name: f.Name, parent: id}
			n.children = append(n.children, f.ID)
		}
		n.loaded = true
	}
	b.expanded[id] = true
	return nil
}

// Collapse marks a folder closed. Its fetched children stay cached.
func (b *Browser) Collapse(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.expanded, id)
}

// ToggleExpand expands a collapsed folder and collapses an expanded one.
func (b *Browser) ToggleExpand(ctx context.Context, id string) error {
	b.mu.Lock()
	open := b.expanded[id]
	b.mu.Unlock()

	if open {
		b.Collapse(id)
		return nil
	}
	return b.Expand(ctx, id)
}

// Roots returns the top-level folders in their listing order.
func (b *Browser) Roots() []models.Folder {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.folderList(b.roots)
}

// Children returns the cached children of a folder. A loaded folder with
// no children is a leaf.
func (b *Browser) Children(id string) ([]models.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.nodes[id]
	if !ok {
		return nil, ErrUnknownFolder
	}
	return b.folderList(n.children), nil
}

func (b *Browser) folderList(ids []string) []models.Folder {
	out := make([]models.Folder, 0, len(ids))
	for _, id := range ids {
		if n, ok := b.nodes[id]; ok {
			out = append(out, models.Folder{ID: n.id, Name: n.name})
		}
	}
	return out
}

// IsExpanded reports whether a folder is currently open.
func (b *Browser) IsExpanded(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expanded[id]
}

// IsLoaded reports whether a folder's children have been fetched.
func (b *Browser) IsLoaded(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[id]
	return ok && n.loaded
}

// IsLeaf reports whether a loaded folder has no children.
func (b *Browser) IsLeaf(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[id]
	return ok && n.loaded && len(n.children) == 0
}

// Path returns the breadcrumb from the root to the folder, for example
// "Clients / Acme Corp / 2025".
func (b *Browser) Path(id string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var parts []string
	for id != "" {
		n, ok := b.nodes[id]
		if !ok {
			return "", ErrUnknownFolder
		}
		parts = append(parts, n.name)
		id = n.parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " / "), nil
}

// Parent returns the parent folder id, or the empty string for a root.
func (b *Browser) Parent(id string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.nodes[id]
	if !ok {
		return "", ErrUnknownFolder
	}
	return n.parent, nil
}

// Select records a folder as the chosen destination.
func (b *Browser) Select(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.nodes[id]; !ok {
		return ErrUnknownFolder
	}
	b.selected = id
	return nil
}

// SelectedID returns the selected folder id, or the empty string.
func (b *Browser) SelectedID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// AssignTo writes the selected folder onto a session file record.
func (b *Browser) AssignTo(sess *session.Session, index int) error {
	b.mu.Lock()
	selected := b.selected
	b.mu.Unlock()

	if selected == "" {
		return ErrNothingSelected
	}
	path, err := b.Path(selected)
	if err != nil {
		return err
	}
	return sess.AssignDestination(index, selected, path)
}
