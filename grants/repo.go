package grants

// Repo stores authorization grants keyed by code.
//
// Consume must be atomic: of any number of concurrent Consume calls for the
// same code, at most one succeeds and the rest observe ErrInvalidGrant.
// Deleting a grant never affects already-issued tokens.
type Repo interface {
	Upsert(grant *Grant) error
	Consume(clientID, code string) (*Grant, error)
}
