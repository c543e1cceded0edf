// Package domain contains the entities exchanged with the mix backend and the
// small closed vocabularies (roles, request types, tabs) the client reasons about.
package domain

// Category is fixed taxonomy reference data. It is read-only to the client.
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Emoji        string `json:"emoji"`
	TasteProfile string `json:"taste_profile"`
}

// Label returns the category name prefixed with its emoji.
func (c Category) Label() string {
	if c.Emoji == "" {
		return c.Name
	}
	return c.Emoji + " " + c.Name
}
