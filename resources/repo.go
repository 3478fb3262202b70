package resources

// Repo is the resource-identity store query interface. Resource identities
// are pre-provisioned; Upsert exists for seeding, not for the API surface.
type Repo interface {
	Upsert(resource *Resource) error
	Get(username string) (*Resource, error)
}
