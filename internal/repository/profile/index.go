package profile

import (
	"github.com/kailas-cloud/matchcraft/internal/db"
	"github.com/kailas-cloud/matchcraft/internal/domain"
	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
)

// Index returns the FT index over user hashes. searchTerms is a TAG field
// with a separator that never appears in user text; gender and age back the
// admin listing filters.
func Index() *db.IndexDefinition {
	return db.NewIndex(domain.UsersIndex).
		Prefix(domain.UserKeyPrefix).
		TagWithOpts(domprofile.FieldSearchTerms, domprofile.TermSeparator, false).
		Tag(domprofile.FieldGender).
		Numeric(domprofile.FieldAge).
		Numeric(domprofile.FieldCreatedAt).Sortable().
		MustBuild()
}
