package subject

import "errors"

var ErrNotFound = errors.New("subject not found")

type Subject struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

const (
	CategorySTEM       = "STEM"
	CategoryHumanities = "Humanities"
	CategoryLanguages  = "Languages"
	CategoryArts       = "Arts"
	CategoryHealthPE   = "Health & PE"
	CategoryVocational = "Vocational"
)

// Catalog is the fixed subject list every school gets seeded with. Seeding is
// an upsert on (school_id, name, category) so re-listing subjects is
// idempotent.
var Catalog = []Subject{
	{Name: "English", Category: CategoryHumanities},
	{Name: "Maths", Category: CategorySTEM},
	{Name: "Physics", Category: CategorySTEM},
	{Name: "Chemistry", Category: CategorySTEM},
	{Name: "Biology", Category: CategorySTEM},
	{Name: "French", Category: CategoryLanguages},
	{Name: "Latin", Category: CategoryLanguages},
	{Name: "Japanese", Category: CategoryLanguages},
	{Name: "German", Category: CategoryLanguages},
	{Name: "Software Engineering", Category: CategoryVocational},
	{Name: "Enterprise Computing", Category: CategoryVocational},
	{Name: "Legal Studies", Category: CategoryHumanities},
	{Name: "Commerce", Category: CategoryHumanities},
	{Name: "Economics", Category: CategoryHumanities},
}
