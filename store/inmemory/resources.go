package inmemory

import "github.com/stbcloud/smarthome-auth/resources"

type resourceRepo struct{ s *Store }

var _ resources.Repo = (*resourceRepo)(nil)

// Upsert stores a resource identity after validating its device manifest.
func (r *resourceRepo) Upsert(resource *resources.Resource) error {
	if err := resource.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.resourcesByName[resource.Username] = *resource
	return nil
}

func (r *resourceRepo) Get(username string) (*resources.Resource, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	resource, ok := r.s.resourcesByName[username]
	if !ok {
		return nil, resources.ErrResourceNotFound
	}
	return &resource, nil
}
