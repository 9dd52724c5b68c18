package models

// Store collection names.
const (
	CollectionUsers        = "users"
	CollectionClassTypes   = "class_types"
	CollectionClasses      = "classes"
	CollectionAvailability = "availability"
)
