package okr

import (
	"fmt"

	"okrproject/errs"
	"okrproject/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const OwnersTruncatedNotice = "Individual OKRs can only have one owner. Additional owners have been removed."

// CanEdit reports whether p may edit or delete o: the creator always may,
// even when no longer listed as an owner.
func CanEdit(p *models.Principal, o *models.Objective) bool {
	if p == nil || o == nil {
		return false
	}
	return p.ID == o.CreatedBy || o.HasOwner(p.ID)
}

func AuthorizeEdit(p *models.Principal, o *models.Objective) error {
	if !CanEdit(p, o) {
		return fmt.Errorf("only the creator or an owner can modify this OKR: %w", errs.ErrForbidden)
	}
	return nil
}

// ValidateOwnerSet enforces the ownership cardinality of category.
func ValidateOwnerSet(category string, owners []primitive.ObjectID) error {
	seen := make(map[primitive.ObjectID]bool, len(owners))
	for _, id := range owners {
		if id.IsZero() {
			return errs.Validation("owners", "owner id is required")
		}
		if seen[id] {
			return errs.Validation("owners", "owner %s is listed more than once", id.Hex())
		}
		seen[id] = true
	}

	switch category {
	case models.CategoryIndividual:
		if len(owners) > 1 {
			return errs.Validation("owners", "Individual OKRs can only have one owner")
		}
		if len(owners) == 0 {
			return errs.Validation("owners", "Individual OKRs must have exactly one owner")
		}
	case models.CategoryTeam:
		if len(owners) < 2 {
			return errs.Validation("owners", "Team OKRs must have at least two owners")
		}
	default:
		return errs.Validation("category", "unknown category %q", category)
	}
	return nil
}

// TruncateOwners keeps only the first owner when category is Individual and
// more than one owner is present. The returned notice is empty when nothing
// was dropped.
func TruncateOwners(category string, owners []primitive.ObjectID) ([]primitive.ObjectID, string) {
	if category != models.CategoryIndividual || len(owners) <= 1 {
		return owners, ""
	}
	return []primitive.ObjectID{owners[0]}, OwnersTruncatedNotice
}

func RequireAdmin(p *models.Principal) error {
	if p == nil || p.Role != models.RoleAdmin {
		return fmt.Errorf("admin role required: %w", errs.ErrForbidden)
	}
	return nil
}

// RequireNotSelf blocks management operations that target the actor's own account.
func RequireNotSelf(p *models.Principal, target primitive.ObjectID) error {
	if p != nil && p.ID == target {
		return fmt.Errorf("cannot change role of or delete your own account: %w", errs.ErrForbidden)
	}
	return nil
}
