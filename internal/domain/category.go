package domain

import "time"

// Category classifies income and expense transactions.
type Category struct {
	ID        string
	OwnerID   string
	Name      string
	Type      TransactionType
	CreatedAt time.Time
}

// CheckUsableFor checks that the category may be attached to a transaction of type t.
func (c *Category) CheckUsableFor(ownerID string, t TransactionType) error {
	if c.OwnerID != ownerID {
		return &CategoryInvalidError{CategoryID: c.ID, Reason: "not owned"}
	}

	if c.Type != t {
		return &CategoryInvalidError{CategoryID: c.ID, Reason: "type " + string(c.Type) + " does not match " + string(t)}
	}

	return nil
}
