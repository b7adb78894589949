package catalog

import (
	"context"
	"errors"

	"github.com/alexballas/xmediagrid/assets"
)

// Source serves a library from the catalog. Access was granted when the
// library was scanned, so a library that is present is authorized.
type Source struct {
	cat     *Catalog
	library string
}

// NewSource serves library from cat.
func NewSource(cat *Catalog, library string) *Source {
	return &Source{cat: cat, library: library}
}

func (s *Source) AuthorizationStatus() assets.AuthorizationStatus {
	if _, err := s.cat.Library(context.Background(), s.library); err != nil {
		if errors.Is(err, ErrNotFound) {
			return assets.StatusNotDetermined
		}
		return assets.StatusRestricted
	}
	return assets.StatusAuthorized
}

// RequestAuthorization cannot grant anything new: a missing library must be
// scanned first.
func (s *Source) RequestAuthorization(ctx context.Context) (assets.AuthorizationStatus, error) {
	return s.AuthorizationStatus(), nil
}

func (s *Source) FetchAssets(ctx context.Context) ([]assets.Asset, error) {
	return s.cat.Assets(ctx, s.library)
}

// Library returns the library key served.
func (s *Source) Library() string {
	return s.library
}

var _ assets.Source = (*Source)(nil)
