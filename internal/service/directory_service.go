package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/MaxonPy/kanban/internal/client"
	"github.com/MaxonPy/kanban/internal/models"
)

// DirectoryService caches the group and user reference data the board needs
// for display-name and group-name resolution. Lookups never fail; a miss is
// reported so the caller can substitute a sentinel.
type DirectoryService struct {
	groupAPI client.GroupAPI
	userAPI  client.UserAPI

	mu     sync.RWMutex
	groups []models.Group
	users  map[int]models.User
}

func NewDirectoryService(groupAPI client.GroupAPI, userAPI client.UserAPI) *DirectoryService {
	return &DirectoryService{
		groupAPI: groupAPI,
		userAPI:  userAPI,
		users:    make(map[int]models.User),
	}
}

// Refresh re-fetches both directories. The previous snapshot stays in place
// when either fetch fails.
func (d *DirectoryService) Refresh(ctx context.Context) error {
	groups, err := d.groupAPI.GetGroups(ctx)
	if err != nil {
		return fmt.Errorf("refresh group directory: %w", err)
	}

	users, err := d.userAPI.GetUsers(ctx)
	if err != nil {
		return fmt.Errorf("refresh user directory: %w", err)
	}

	byID := make(map[int]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	d.mu.Lock()
	d.groups = groups
	d.users = byID
	d.mu.Unlock()
	return nil
}

func (d *DirectoryService) Groups() []models.Group {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.Group, len(d.groups))
	copy(out, d.groups)
	return out
}

func (d *DirectoryService) Group(id int) (models.Group, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, g := range d.groups {
		if g.ID == id {
			return g, true
		}
	}
	return models.Group{}, false
}

func (d *DirectoryService) UserName(id int) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[id]
	if !ok {
		return "", false
	}
	return u.Name, true
}
