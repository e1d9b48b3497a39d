package domain

// Category represents the kind of worldbuilding element
type Category string

const (
	CategoryCharacter    Category = "character"
	CategoryLocation     Category = "location"
	CategoryItem         Category = "item"
	CategoryEvent        Category = "event"
	CategoryOrganization Category = "organization"
	CategoryConcept      Category = "concept"
	CategoryCreature     Category = "creature"
	CategoryCustom       Category = "custom"
)

// CategoryAll is the wildcard used by browse filters, not a storable category
const CategoryAll = "all"

// AllCategories lists every valid element category
func AllCategories() []Category {
	return []Category{
		CategoryCharacter,
		CategoryLocation,
		CategoryItem,
		CategoryEvent,
		CategoryOrganization,
		CategoryConcept,
		CategoryCreature,
		CategoryCustom,
	}
}

// IsValid checks if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryCharacter, CategoryLocation, CategoryItem, CategoryEvent,
		CategoryOrganization, CategoryConcept, CategoryCreature, CategoryCustom:
		return true
	default:
		return false
	}
}

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}
