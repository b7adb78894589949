package assets

import "context"

// AuthorizationStatus is the app's access level to a media library.
type AuthorizationStatus int

const (
	StatusNotDetermined AuthorizationStatus = iota
	StatusAuthorized
	StatusLimited
	StatusDenied
	StatusRestricted
)

func (s AuthorizationStatus) String() string {
	switch s {
	case StatusAuthorized:
		return "authorized"
	case StatusLimited:
		return "limited"
	case StatusDenied:
		return "denied"
	case StatusRestricted:
		return "restricted"
	default:
		return "not determined"
	}
}

// Granted reports whether assets may be fetched.
func (s AuthorizationStatus) Granted() bool {
	return s == StatusAuthorized || s == StatusLimited
}

// Source lists the media items of a library.
type Source interface {
	AuthorizationStatus() AuthorizationStatus
	RequestAuthorization(ctx context.Context) (AuthorizationStatus, error)
	FetchAssets(ctx context.Context) ([]Asset, error)
}

// FetchSnapshot fetches the assets of src into a new Snapshot.
func FetchSnapshot(ctx context.Context, src Source) (*Snapshot, error) {
	if !src.AuthorizationStatus().Granted() {
		return nil, ErrNotAuthorized
	}
	items, err := src.FetchAssets(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(items)
}
